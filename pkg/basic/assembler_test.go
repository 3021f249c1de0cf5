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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
func quietOptions() Options {
	opts := DefaultOptions()
	opts.SuppressWarnings = true
	return opts
}

func TestAssembleSingleLine(t *testing.T) {

	res, err := Assemble("10 LET a=5\n", quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x0a, 0x00, // line number, little-endian
		0x0b, 0x00, // payload length including terminator
		TokLet, 'A', '=', '5', NumberMarker, 0, 0, 5, 0, 0,
		LineTerminator,
	}, res.Buffer)
	assert.Empty(t, res.Warnings)
}

func TestAssembleMultiLine(t *testing.T) {

	src := strings.Join([]string{
		"10 REM demo",
		"",
		"20 LET a=1",
		"9999 STOP",
	}, "\n")

	res, err := Assemble(src, quietOptions())
	require.NoError(t, err)

	// blank line skipped, three lines in the buffer
	assert.Equal(t, []byte{
		0x0a, 0x00, 0x06, 0x00,
		TokRem, 'd', 'e', 'm', 'o', LineTerminator,
		0x14, 0x00, 0x0b, 0x00,
		TokLet, 'A', '=', '1', NumberMarker, 0, 0, 1, 0, 0, LineTerminator,
		0x0f, 0x27, 0x02, 0x00,
		0xe2, LineTerminator,
	}, res.Buffer)
}

func TestAssembleCRLF(t *testing.T) {

	res, err := Assemble("10 STOP\r\n20 STOP\r\n", quietOptions())
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x0a, 0x00, 0x02, 0x00, 0xe2, LineTerminator,
		0x14, 0x00, 0x02, 0x00, 0xe2, LineTerminator,
	}, res.Buffer)
}

func TestAssembleLineNumberRange(t *testing.T) {

	for _, src := range []string{"0 STOP\n", "10000 STOP\n"} {
		_, err := Assemble(src, quietOptions())
		assert.Errorf(t, err, "line number in %q must be rejected", src)
	}

	for _, src := range []string{"1 STOP\n", "9999 STOP\n"} {
		_, err := Assemble(src, quietOptions())
		assert.NoErrorf(t, err, "line number in %q must be accepted", src)
	}
}

func TestAssembleLineOrder(t *testing.T) {

	// descending is fatal
	_, err := Assemble("20 STOP\n10 STOP\n", quietOptions())
	assert.Error(t, err)

	// duplicate is a warning
	res, err := Assemble("10 STOP\n10 STOP\n", quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "duplicate")
}

func TestAssembleMissingLineNumber(t *testing.T) {

	res, err := Assemble("10 STOP\nSTOP\n20 STOP\n", quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "missing line number")

	opts := quietOptions()
	opts.Strict = true
	_, err = Assemble("10 STOP\nSTOP\n", opts)
	assert.Error(t, err)
}

func TestAssembleSizeCap(t *testing.T) {

	var sb strings.Builder
	filler := strings.Repeat("x", 900)
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&sb, "%d REM %s\n", i*10, filler)
	}

	_, err := Assemble(sb.String(), quietOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
