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
	"math"
)

/*
	EncodeNumber produces the 5-byte calculator form the ROM stores after
	the ASCII spelling of every numeric literal.

	Whole numbers in [-65536, 65535) use the short integer form:

		00 | sign (00/FF) | value lo | value hi | 00

	with negative values stored as 65536+n. Everything else uses the
	floating point form: a biased exponent byte, then the top 7 mantissa
	bits with the sign in bit 7, then the remaining 3 mantissa bytes,
	most significant first.
*/
func EncodeNumber(value float64) ([5]byte, error) {

	var enc [5]byte

	if value == math.Trunc(value) && -65536 <= value && value < 65535 {
		n := int(value)
		if n < 0 {
			enc[1] = 0xff
			n += 65536
		}
		enc[2] = byte(n)
		enc[3] = byte(n >> 8)
		return enc, nil
	}

	sign := byte(0)
	v := value
	if v < 0 {
		sign = 0x80
		v = -v
	}

	frac, exp := math.Frexp(v) // v = frac * 2^exp, frac in [0.5, 1)

	mant := uint64(math.Round(frac * 4294967296)) // frac * 2^32
	if mant >= 1<<32 {
		mant >>= 1
		exp++
	}

	biased := exp + 0x80
	if biased < 1 || biased > 0xff {
		return enc, fmt.Errorf("number too big")
	}

	enc[0] = byte(biased)
	enc[1] = byte(mant>>24)&0x7f | sign
	enc[2] = byte(mant >> 16)
	enc[3] = byte(mant >> 8)
	enc[4] = byte(mant)

	return enc, nil
}

// DecodeNumber is the inverse of EncodeNumber.
func DecodeNumber(enc [5]byte) float64 {

	if enc[0] == 0 {
		n := int(enc[2]) | int(enc[3])<<8
		if enc[1] == 0xff {
			n -= 65536
		}
		return float64(n)
	}

	exp := int(enc[0]) - 0x80
	mant := uint32(enc[1]|0x80)<<24 | uint32(enc[2])<<16 |
		uint32(enc[3])<<8 | uint32(enc[4])

	v := math.Ldexp(float64(mant)/4294967296, exp)
	if enc[1]&0x80 != 0 {
		v = -v
	}
	return v
}
