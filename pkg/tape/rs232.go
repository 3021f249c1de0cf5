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

package tape

import (
	"fmt"
	"io"
)

/*
	RS232 is a reader/writer for the serial block stream understood by the
	Interface 1: the same header/data pairs as TAP, but without length
	prefixes, since a serial link has no random access. The receiver
	derives the data block size from the length field of the preceding
	header. Checksums are XOR, as on tape.
*/
type RS232 struct{}

//
func NewRS232() *RS232 {
	return &RS232{}
}

//
func (r *RS232) Write(out io.Writer, name string, autostart int,
	prog []byte) error {

	if _, err := out.Write(headerPayload(name, autostart,
		len(prog))); err != nil {
		return err
	}
	_, err := out.Write(dataPayload(prog))
	return err
}

//
func (r *RS232) Read(in io.Reader, strict bool) ([]*Program, error) {

	expect := -1 // data size announced by the last header, -1 = want header
	offset := 0

	return pairBlocks(func() ([]byte, int, error) {

		at := offset
		var blk []byte

		if expect < 0 {
			blk = make([]byte, headerBlockSize)
		} else {
			blk = make([]byte, expect+2) // flag + data + checksum
		}

		if _, err := io.ReadFull(in, blk); err != nil {
			if err == io.EOF {
				return nil, at, io.EOF
			}
			return nil, at, fmt.Errorf(
				"offset %d: truncated block: %v", at, err)
		}
		offset += len(blk)

		if expect < 0 {
			if blk[0] != FlagHeader {
				return nil, at, fmt.Errorf(
					"offset %d: expected header flag, got %#02x", at, blk[0])
			}
			expect = getUint16(blk[12:])
		} else {
			expect = -1
		}

		return blk, at, nil
	}, strict)
}
