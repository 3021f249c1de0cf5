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
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// MaxLineNumber is the highest usable BASIC line number.
const MaxLineNumber = 9999

// MaxProgramSize caps the flat program buffer; anything larger cannot be
// loaded into the BASIC workspace of a 48K machine.
const MaxProgramSize = 41500

// NoAutoStart is the option value for a program without an auto start
// line; it maps to the 0x8000 sentinel in container headers.
const NoAutoStart = -1

//
var lineNumberExp = regexp.MustCompile(`^\s*(\d+)`)

// Options configure a source-to-buffer conversion.
type Options struct {
	//
	Name      string
	AutoStart int
	//
	CaseInsensitive  bool
	SuppressWarnings bool
	// Strict turns recoverable source defects into errors
	Strict bool
}

// DefaultOptions returns the conversion defaults: case-insensitive, no
// auto start.
func DefaultOptions() Options {
	return Options{AutoStart: NoAutoStart, CaseInsensitive: true}
}

// Result is a successful conversion: the flat token buffer plus any
// warnings raised along the way.
type Result struct {
	Buffer   []byte
	Warnings []string
}

//
func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

/*
	Assemble converts full BASIC source text into the flat token buffer:
	per line a 4-byte header (line number and length, both little-endian),
	the tokenized payload, and a 0x0D terminator. Line numbers must be
	ascending; duplicates warn, descending numbers and out-of-range
	numbers fail. Lines without a number fail in strict mode and are
	skipped with a warning otherwise.
*/
func Assemble(src string, opts Options) (*Result, error) {

	res := &Result{}
	prev := 0

	src = strings.ReplaceAll(src, "\r\n", "\n")

	for ix, line := range strings.Split(src, "\n") {

		physical := ix + 1

		if strings.TrimSpace(line) == "" {
			continue
		}

		m := lineNumberExp.FindStringSubmatch(line)
		if m == nil {
			if opts.Strict {
				return nil, fmt.Errorf(
					"line %d: missing line number", physical)
			}
			res.warn("line %d: missing line number, skipped", physical)
			continue
		}

		num, err := strconv.Atoi(m[1])
		if err != nil || num < 1 || num > MaxLineNumber {
			return nil, fmt.Errorf(
				"line %d: line number %s out of range [1, %d]",
				physical, m[1], MaxLineNumber)
		}

		if num < prev {
			return nil, fmt.Errorf(
				"line %d: line number %d descends below %d",
				physical, num, prev)
		}
		if num == prev {
			res.warn("line %d: duplicate line number %d", physical, num)
		}
		prev = num

		stmt := strings.TrimLeft(line[len(m[0]):], " \t")

		payload, err := TokenizeLine(stmt, physical, opts.CaseInsensitive)
		if err != nil {
			return nil, err
		}

		length := len(payload) + 1 // terminator included
		if length > 0xffff {
			return nil, fmt.Errorf(
				"line %d: tokenized line too long", physical)
		}

		res.Buffer = append(res.Buffer,
			byte(num), byte(num>>8), byte(length), byte(length>>8))
		res.Buffer = append(res.Buffer, payload...)
		res.Buffer = append(res.Buffer, LineTerminator)

		if len(res.Buffer) > MaxProgramSize {
			return nil, fmt.Errorf("object file too large: %d bytes "+
				"exceed the %d byte limit", len(res.Buffer), MaxProgramSize)
		}
	}

	if !opts.SuppressWarnings {
		for _, w := range res.Warnings {
			log.Warn(w)
		}
	}

	return res, nil
}
