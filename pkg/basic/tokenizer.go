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
	"fmt"
	"strconv"
	"strings"
)

// scanState is the mode of the line scanner. String and REM contents pass
// through verbatim; everything else is scanned in code mode. A scanner is
// never in more than one mode, the auxiliary DEF FN flags only apply in
// code mode.
type scanState int

const (
	scanCode scanState = iota
	scanString
	scanRem
)

//
type scanner struct {
	line    string
	lineNum int
	fold    bool // uppercase letters outside strings and REM
	//
	pos   int
	out   []byte
	state scanState
	//
	statementStart bool
	spacePending   bool
	defFnPending   bool // DEF FN seen, waiting for the parameter list
	defFnParams    bool // inside the parameter list
}

/*
	TokenizeLine converts one statement line, with the line number prefix
	already stripped, into its token byte sequence. The 0x0D terminator is
	not appended here, that is the caller's job. lineNum is only used in
	error messages.
*/
func TokenizeLine(line string, lineNum int, caseInsensitive bool) (
	[]byte, error) {

	s := &scanner{
		line:           line,
		lineNum:        lineNum,
		fold:           caseInsensitive,
		statementStart: true,
	}

	for s.pos < len(s.line) {

		switch s.state {

		case scanString:
			ch := s.line[s.pos]
			s.out = append(s.out, ch)
			s.pos++
			if ch == '"' {
				s.state = scanCode
			}

		case scanRem:
			s.out = append(s.out, s.line[s.pos:]...)
			s.pos = len(s.line)

		case scanCode:
			if err := s.scanCode(); err != nil {
				return nil, err
			}
		}
	}

	if s.state == scanString {
		return nil, fmt.Errorf("line %d: unterminated string", s.lineNum)
	}

	return s.out, nil
}

//
func (s *scanner) scanCode() error {

	ch := s.line[s.pos]

	switch {

	case ch == ' ':
		if len(s.out) > 0 {
			s.spacePending = true
		}
		s.pos++
		return nil

	case ch == '\t':
		s.emitToken(TabMarker)
		s.pos++
		return nil

	case ch == '"':
		s.emitLiteral('"')
		s.state = scanString
		s.statementStart = false
		s.pos++
		return nil

	case ch == ':':
		s.emitToken(':')
		s.statementStart = true
		s.defFnPending = false
		s.pos++
		return nil

	case ch == '(':
		s.emitLiteral('(')
		if s.defFnPending {
			s.defFnPending = false
			s.defFnParams = true
		}
		s.statementStart = false
		s.pos++
		return nil

	case ch == ')':
		if s.defFnParams {
			// reserve the unevaluated argument slot of the function
			s.out = append(s.out, NumberMarker, 0, 0, 0, 0, 0)
			s.defFnParams = false
		}
		s.emitLiteral(')')
		s.statementStart = false
		s.pos++
		return nil

	case isDigit(ch) || ch == '.' && s.digitAt(s.pos+1):
		return s.scanNumber()

	case ch == '-' && s.numberAt(s.pos+1) && s.minusStartsNumber():
		return s.scanNumber()

	case isLetter(ch):
		if code, length, ok := matchKeyword(
			s.line, s.pos, s.statementStart); ok {
			return s.scanKeyword(code, length)
		}
		s.emitLiteral(s.foldByte(ch))
		s.statementStart = false
		s.pos++
		return nil

	case 0x20 <= ch && ch <= 0x7e:
		// operator match for the multi-character comparisons
		if code, length, ok := matchKeyword(s.line, s.pos, false); ok {
			return s.scanKeyword(code, length)
		}
		s.emitLiteral(ch)
		s.statementStart = false
		s.pos++
		return nil
	}

	return fmt.Errorf("line %d: bad character 0x%02X", s.lineNum, ch)
}

//
func (s *scanner) scanKeyword(code byte, length int) error {

	s.emitToken(code)
	s.pos += length

	switch code {

	case TokRem:
		s.state = scanRem
		// one separating space belongs to the syntax, not the comment
		if s.pos < len(s.line) && s.line[s.pos] == ' ' {
			s.pos++
		}

	case TokThen:
		s.statementStart = true

	case TokDefFn:
		s.defFnPending = true
		s.statementStart = false

	case TokBin:
		return s.scanBinLiteral()

	default:
		s.statementStart = false
	}

	return nil
}

//
func (s *scanner) scanNumber() error {

	start := s.pos

	if s.line[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
		s.pos++
	}
	if s.pos < len(s.line) && s.line[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
			s.pos++
		}
	}
	if s.pos < len(s.line) &&
		(s.line[s.pos] == 'e' || s.line[s.pos] == 'E') {
		// exponent only if digits follow, otherwise it's an identifier
		probe := s.pos + 1
		if probe < len(s.line) &&
			(s.line[probe] == '+' || s.line[probe] == '-') {
			probe++
		}
		if probe < len(s.line) && isDigit(s.line[probe]) {
			s.pos = probe + 1
			for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
				s.pos++
			}
		}
	}

	lit := s.line[start:s.pos]

	value, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", s.lineNum, lit)
	}

	enc, err := EncodeNumber(value)
	if err != nil {
		return fmt.Errorf("line %d: %v", s.lineNum, err)
	}

	if s.fold {
		lit = strings.ToUpper(lit)
	}
	s.emitLiteral(lit[0])
	s.out = append(s.out, lit[1:]...)
	s.out = append(s.out, NumberMarker)
	s.out = append(s.out, enc[:]...)

	s.statementStart = false
	return nil
}

// scanBinLiteral handles the digit run after a BIN token: the ASCII digits
// are kept, but the 5-byte form holds the integer they denote.
func (s *scanner) scanBinLiteral() error {

	for s.pos < len(s.line) && s.line[s.pos] == ' ' {
		s.pos++
	}

	start := s.pos
	for s.pos < len(s.line) &&
		(s.line[s.pos] == '0' || s.line[s.pos] == '1') {
		s.pos++
	}

	digits := s.line[start:s.pos]
	if digits == "" {
		return fmt.Errorf(
			"line %d: BIN expects a run of binary digits", s.lineNum)
	}

	value, err := strconv.ParseUint(digits, 2, 64)
	if err != nil {
		return fmt.Errorf("line %d: %v", s.lineNum, err)
	}

	enc, err := EncodeNumber(float64(value))
	if err != nil {
		return fmt.Errorf("line %d: %v", s.lineNum, err)
	}

	s.out = append(s.out, digits...)
	s.out = append(s.out, NumberMarker)
	s.out = append(s.out, enc[:]...)

	s.statementStart = false
	return nil
}

// emitToken appends a token byte; any pending space is dropped since
// tokens carry their own spacing when listed.
func (s *scanner) emitToken(code byte) {
	s.spacePending = false
	s.out = append(s.out, code)
}

// emitLiteral appends a literal byte, preserving at most one space
// between two word-like literals.
func (s *scanner) emitLiteral(b byte) {
	if s.spacePending {
		s.spacePending = false
		if isWordy(s.lastByte()) && isWordy(b) {
			s.out = append(s.out, ' ')
		}
	}
	s.out = append(s.out, b)
}

//
func (s *scanner) lastByte() byte {
	if len(s.out) == 0 {
		return 0
	}
	return s.out[len(s.out)-1]
}

//
func (s *scanner) digitAt(pos int) bool {
	return pos < len(s.line) && isDigit(s.line[pos])
}

//
func (s *scanner) numberAt(pos int) bool {
	return s.digitAt(pos) ||
		pos < len(s.line) && s.line[pos] == '.' && s.digitAt(pos+1)
}

/*
	minusStartsNumber decides whether a minus ahead of digits opens a
	negative literal or is a binary operator. It opens a literal only when
	nothing emitted so far can terminate an operand: at line start, after
	punctuation that introduces a value, or after a keyword token other
	than the niladic value functions.
*/
func (s *scanner) minusStartsNumber() bool {

	last := s.lastByte()

	switch last {
	case 0, '(', '=', ',', ';', ':', '*', '/', '+', '-', '<', '>':
		return true
	}

	if last >= TokenBase {
		switch last {
		case 0xa5, 0xa6, 0xa7: // RND, INKEY$, PI
			return false
		}
		return true
	}

	return false
}

//
func (s *scanner) foldByte(ch byte) byte {
	if s.fold && 'a' <= ch && ch <= 'z' {
		return ch - 'a' + 'A'
	}
	return ch
}

// isWordy reports whether a byte belongs to an identifier or number, the
// only context where a separating space must survive collapsing.
func isWordy(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '$' || b == '.'
}
