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

package microdrive

import (
	"encoding/hex"
	"fmt"
	"io"
)

//
const HeaderLength = 15

//
const headerFlag = 0x01

//
var headerIndex = map[string][2]int{
	"flags":    {0, 1},
	"number":   {1, 1},
	"spares":   {2, 2},
	"name":     {4, 10},
	"header":   {0, 14},
	"checksum": {14, 1},
}

// Header is the 15-byte sector header: flag byte, sector number, two
// spare bytes, 10-byte cartridge name, additive checksum.
type Header struct {
	block *block
}

//
func NewHeader(data []byte) (*Header, error) {

	if len(data) != HeaderLength {
		return nil, fmt.Errorf(
			"sector header needs %d bytes, got %d", HeaderLength, len(data))
	}

	d := make([]byte, len(data))
	copy(d, data)

	h := &Header{block: newBlock(headerIndex, d)}
	return h, h.Validate()
}

// NewHeaderFor builds a valid header for the given sector number and
// cartridge name.
func NewHeaderFor(sector int, cartName string) *Header {

	h := &Header{block: newBlock(headerIndex, make([]byte, HeaderLength))}

	h.block.setByte("flags", headerFlag)
	h.block.setByte("number", byte(sector))
	h.block.setName("name", cartName)
	h.FixChecksum()

	return h
}

//
func (h *Header) Data() []byte {
	return h.block.data
}

//
func (h *Header) Flags() byte {
	return h.block.getByte("flags")
}

//
func (h *Header) Index() int {
	return int(h.block.getByte("number"))
}

//
func (h *Header) Name() string {
	return h.block.getString("name")
}

//
func (h *Header) Checksum() byte {
	return h.block.getByte("checksum")
}

//
func (h *Header) FixChecksum() {
	h.block.setByte("checksum", h.block.checksum("header"))
}

//
func (h *Header) Validate() error {

	want := h.block.getByte("checksum")
	got := h.block.checksum("header")

	if want != got {
		return fmt.Errorf(
			"invalid sector header check sum, want %d, got %d", want, got)
	}
	return nil
}

//
func (h *Header) Emit(w io.Writer) {
	io.WriteString(w, fmt.Sprintf("\nHEADER: %+q - flag: %X, index: %d\n",
		h.Name(), h.Flags(), h.Index()))
	d := hex.Dumper(w)
	defer d.Close()
	d.Write(h.block.data)
}
