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
	"strings"
)

/*
	Detokenize reconstructs BASIC source text from a flat token buffer.
	The ASCII spelling stored ahead of each 0x0E numeric marker is kept,
	the 5 binary bytes after the marker are skipped. Keyword tokens expand
	to their canonical spelling with a single separating space, unless a
	punctuation neighbor makes the space redundant.
*/
func Detokenize(buf []byte) (string, error) {

	var sb strings.Builder
	pos := 0

	for pos < len(buf) {

		if len(buf)-pos < 4 {
			return "", fmt.Errorf(
				"offset %d: truncated line header", pos)
		}

		num := int(buf[pos]) | int(buf[pos+1])<<8
		length := int(buf[pos+2]) | int(buf[pos+3])<<8
		pos += 4

		if length < 1 || pos+length > len(buf) {
			return "", fmt.Errorf(
				"offset %d: line %d declares %d payload bytes, "+
					"buffer has %d left", pos-2, num, length, len(buf)-pos)
		}

		payload := buf[pos : pos+length]
		if payload[length-1] != LineTerminator {
			return "", fmt.Errorf(
				"offset %d: line %d lacks its terminator", pos+length-1, num)
		}

		text, err := detokenizeLine(payload[:length-1])
		if err != nil {
			return "", fmt.Errorf("line %d: %v", num, err)
		}

		fmt.Fprintf(&sb, "%d %s\n", num, text)
		pos += length
	}

	return sb.String(), nil
}

//
func detokenizeLine(payload []byte) (string, error) {

	var sb strings.Builder

	inString := false
	afterRem := false
	needSpace := false

	for ix := 0; ix < len(payload); ix++ {

		b := payload[ix]

		if inString || afterRem {
			sb.WriteByte(b)
			if b == '"' {
				inString = false
			}
			continue
		}

		switch {

		case b == NumberMarker:
			if ix+5 >= len(payload) {
				return "", fmt.Errorf(
					"truncated numeric encoding at byte %d", ix)
			}
			ix += 5 // ASCII spelling already emitted, drop binary form

		case b == '"':
			if needSpace {
				sb.WriteByte(' ')
			}
			sb.WriteByte(b)
			inString = true
			needSpace = false

		case b == TabMarker:
			sb.WriteByte('\t')
			needSpace = false

		case IsKeywordCode(b):
			spelling := Spelling(b)
			wordy := isLetter(spelling[0])
			if wordy && sb.Len() > 0 && endsOperand(&sb) {
				sb.WriteByte(' ')
			}
			sb.WriteString(spelling)
			needSpace = wordy
			if b == TokRem {
				afterRem = true
				sb.WriteByte(' ')
			}

		default:
			if needSpace && isWordy(b) {
				sb.WriteByte(' ')
			}
			needSpace = false
			sb.WriteByte(b)
		}
	}

	return sb.String(), nil
}

// endsOperand reports whether the text so far ends in something a wordy
// keyword needs separating from: an identifier, number, closing quote,
// or closing parenthesis.
func endsOperand(sb *strings.Builder) bool {
	s := sb.String()
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return isWordy(last) || last == '"' || last == ')'
}
