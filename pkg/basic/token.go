/*
   BasTap - ZX Spectrum BASIC tokenizer & tape tools
   Copyright (c) 2026, the BasTap authors

   This file is part of BasTap.

   BasTap is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   BasTap is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with BasTap. If not, see <http://www.gnu.org/licenses/>.
*/

package basic

import (
	"sort"
	"strings"
)

// TokenBase is the lowest keyword token code. The table below uses the
// real-hardware token scheme of the 128K ROM (0xA3 SPECTRUM through
// 0xFF COPY), so tokenized output loads on genuine and emulated machines.
const TokenBase = 0xA3

// tokens referenced by name in the scanner
const (
	TokBin      = 0xC4
	TokThen     = 0xCB
	TokDefFn    = 0xCE
	TokRem      = 0xEA
	TokGoTo     = 0xEC
	TokGoSub    = 0xED
	TokLet      = 0xF1
	TokPrint    = 0xF5
	TokOpenHash = 0xD3
)

// NumberMarker precedes the 5-byte binary form of a numeric literal.
const NumberMarker = 0x0E

// TabMarker replaces tab characters in tokenized output.
const TabMarker = 0x06

// LineTerminator ends every tokenized line.
const LineTerminator = 0x0D

// spellings holds the canonical keyword spelling for each token code,
// indexed by code - TokenBase.
var spellings = [0x100 - TokenBase]string{
	"SPECTRUM", "PLAY", "RND", "INKEY$", "PI", "FN", "POINT", "SCREEN$",
	"ATTR", "AT", "TAB", "VAL$", "CODE", "VAL", "LEN", "SIN", "COS", "TAN",
	"ASN", "ACS", "ATN", "LN", "EXP", "INT", "SQR", "SGN", "ABS", "PEEK",
	"IN", "USR", "STR$", "CHR$", "NOT", "BIN", "OR", "AND", "<=", ">=",
	"<>", "LINE", "THEN", "TO", "STEP", "DEF FN", "CAT", "FORMAT", "MOVE",
	"ERASE", "OPEN #", "CLOSE #", "MERGE", "VERIFY", "BEEP", "CIRCLE",
	"INK", "PAPER", "FLASH", "BRIGHT", "INVERSE", "OVER", "OUT", "LPRINT",
	"LLIST", "STOP", "READ", "DATA", "RESTORE", "NEW", "BORDER", "CONTINUE",
	"DIM", "REM", "FOR", "GO TO", "GO SUB", "INPUT", "LOAD", "LIST", "LET",
	"PAUSE", "NEXT", "POKE", "PRINT", "PLOT", "RUN", "SAVE", "RANDOMIZE",
	"IF", "CLS", "DRAW", "CLEAR", "RETURN", "COPY",
}

// alternate spellings accepted on input; they all map to the same codes
// as their canonical counterparts
var alternates = map[string]byte{
	"GOTO":   TokGoTo,
	"GOSUB":  TokGoSub,
	"DEFFN":  TokDefFn,
	"OPEN#":  TokOpenHash,
	"CLOSE#": 0xD4,
}

// lastExpressionToken bounds the restricted match set used outside
// statement-start positions: functions, operators, and the clause words
// THEN/TO/STEP/LINE. Statement keywords sit above this code.
const lastExpressionToken = 0xCD

//
type keyword struct {
	spelling string
	code     byte
}

// matching candidates, longest spelling first
var keywords []keyword

//
func init() {

	for ix, s := range spellings {
		keywords = append(keywords, keyword{s, byte(TokenBase + ix)})
	}
	for s, c := range alternates {
		keywords = append(keywords, keyword{s, c})
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return len(keywords[i].spelling) > len(keywords[j].spelling)
	})
}

// Spelling returns the keyword spelling for a token code, or an empty
// string if the code is not a keyword token.
func Spelling(code byte) string {
	if code < TokenBase {
		return ""
	}
	return spellings[int(code)-TokenBase]
}

// IsKeywordCode reports whether code maps to a keyword. All of printable
// ASCII, punctuation included, sits below TokenBase, so no literal
// character can be mistaken for a keyword code.
func IsKeywordCode(code byte) bool {
	return code >= TokenBase
}

/*
	matchKeyword attempts to match a keyword at position pos in line. When
	statement is false, only the restricted expression set (functions,
	operators, clause words) is considered, so a statement keyword spelling
	inside an expression stays a variable name. Matching is longest first.
	A candidate whose spelling ends in a letter is vetoed when the next
	source character is a letter, so keywords never swallow the head of a
	longer identifier.
*/
func matchKeyword(line string, pos int, statement bool) (byte, int, bool) {

	rest := line[pos:]

	for _, kw := range keywords {

		if !statement && kw.code > lastExpressionToken {
			continue
		}
		if len(rest) < len(kw.spelling) {
			continue
		}
		if !strings.EqualFold(rest[:len(kw.spelling)], kw.spelling) {
			continue
		}

		last := kw.spelling[len(kw.spelling)-1]
		if isLetter(last) && len(rest) > len(kw.spelling) &&
			isLetter(rest[len(kw.spelling)]) {
			continue
		}

		return kw.code, len(kw.spelling), true
	}

	return 0, 0, false
}

//
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

//
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
