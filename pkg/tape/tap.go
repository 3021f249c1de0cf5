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

// TAP is a reader/writer for the TAP tape image format: header and data
// blocks, each prefixed with a 2-byte little-endian length that excludes
// the length field itself.
type TAP struct{}

//
func NewTAP() *TAP {
	return &TAP{}
}

//
func (t *TAP) Write(out io.Writer, name string, autostart int,
	prog []byte) error {

	if err := writeTapBlock(out, headerPayload(name, autostart,
		len(prog))); err != nil {
		return err
	}
	return writeTapBlock(out, dataPayload(prog))
}

//
func (t *TAP) Read(in io.Reader, strict bool) ([]*Program, error) {
	offset := 0
	return pairBlocks(func() ([]byte, int, error) {
		blk, at, err := readTapBlock(in, &offset)
		return blk, at, err
	}, strict)
}

//
func writeTapBlock(out io.Writer, blk []byte) error {
	var length [2]byte
	putUint16(length[:], len(blk))
	if _, err := out.Write(length[:]); err != nil {
		return err
	}
	_, err := out.Write(blk)
	return err
}

// readTapBlock walks the length-prefix state machine once: ReadingLength,
// then ReadingPayload. Checksum verification happens in parseBlock.
func readTapBlock(in io.Reader, offset *int) ([]byte, int, error) {

	at := *offset

	var length [2]byte
	if _, err := io.ReadFull(in, length[:]); err != nil {
		if err == io.EOF {
			return nil, at, io.EOF
		}
		return nil, at, fmt.Errorf(
			"offset %d: truncated block length: %v", at, err)
	}

	blk := make([]byte, getUint16(length[:]))
	if _, err := io.ReadFull(in, blk); err != nil {
		return nil, at, fmt.Errorf(
			"offset %d: truncated block payload: %v", at, err)
	}

	*offset += 2 + len(blk)
	return blk, at, nil
}
