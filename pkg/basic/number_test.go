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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeSmallInteger(t *testing.T) {

	tests := []struct {
		value float64
		want  [5]byte
	}{
		{0, [5]byte{0, 0, 0, 0, 0}},
		{5, [5]byte{0, 0, 5, 0, 0}},
		{10, [5]byte{0, 0, 10, 0, 0}},
		{256, [5]byte{0, 0, 0, 1, 0}},
		{9999, [5]byte{0, 0, 0x0f, 0x27, 0}},
		{-1, [5]byte{0, 0xff, 0xff, 0xff, 0}},
		{-65536, [5]byte{0, 0xff, 0, 0, 0}},
	}

	for _, tt := range tests {
		enc, err := EncodeNumber(tt.value)
		assert.NoError(t, err)
		assert.Equalf(t, tt.want, enc, "wrong encoding for %v", tt.value)
	}
}

func TestEncodeFloat(t *testing.T) {

	tests := []struct {
		value float64
		want  [5]byte
	}{
		{0.5, [5]byte{0x80, 0x00, 0x00, 0x00, 0x00}},
		{-0.5, [5]byte{0x80, 0x80, 0x00, 0x00, 0x00}},
		{1.5, [5]byte{0x81, 0x40, 0x00, 0x00, 0x00}},
		// 65535 is just outside the small integer range
		{65535, [5]byte{0x90, 0x7f, 0xff, 0x00, 0x00}},
	}

	for _, tt := range tests {
		enc, err := EncodeNumber(tt.value)
		assert.NoError(t, err)
		assert.Equalf(t, tt.want, enc, "wrong encoding for %v", tt.value)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {

	for _, v := range []float64{
		0, 1, -1, 5, 42, 255, 256, 9999, -65536, 65534,
		0.5, -0.5, 0.25, 1.5, 3.5, 65535, 70000, 1e10, -1e10,
	} {
		enc, err := EncodeNumber(v)
		assert.NoErrorf(t, err, "encoding %v failed", v)
		assert.Equalf(t, v, DecodeNumber(enc), "round trip of %v", v)
	}
}

func TestEncodeNumberTooBig(t *testing.T) {
	_, err := EncodeNumber(1e39)
	assert.Error(t, err, "exponent overflow must be rejected")
}
