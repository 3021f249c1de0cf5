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

import "fmt"

//
func newBlock(index map[string][2]int, data []byte) *block {
	return &block{index: index, data: data}
}

// block gives named access to the fields of a fixed binary layout; the
// index maps a field name to its {offset, length}.
type block struct {
	index map[string][2]int
	data  []byte
}

//
func (b *block) getByte(key string) byte {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] < len(b.data) && ix[1] == 1 {
			return b.data[ix[0]]
		}
	}
	return 0
}

//
func (b *block) setByte(key string, v byte) {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] < len(b.data) && ix[1] == 1 {
			b.data[ix[0]] = v
		}
	}
}

//
func (b *block) getSlice(key string) []byte {
	if ix, ok := b.index[key]; ok {
		start := ix[0]
		end := start + ix[1]
		if 0 <= start && end <= len(b.data) {
			return b.data[start:end]
		}
	}
	return []byte{}
}

//
func (b *block) setSlice(key string, v []byte) {
	copy(b.getSlice(key), v)
}

//
func (b *block) getInt(key string) int {
	bytes := b.getSlice(key)
	if len(bytes) != 2 {
		return -1
	}
	return int(bytes[0]) | (int(bytes[1]) << 8)
}

//
func (b *block) setInt(key string, v int) {
	bytes := b.getSlice(key)
	if len(bytes) == 2 {
		bytes[0] = byte(v)
		bytes[1] = byte(v >> 8)
	}
}

//
func (b *block) getString(key string) string {
	return string(b.getSlice(key))
}

//
func (b *block) setName(key, name string) {
	b.setSlice(key, []byte(fmt.Sprintf("%-10s", name)))
}

//
func (b *block) sum(key string) int {
	sum := 0
	for _, s := range b.getSlice(key) {
		sum += int(s)
	}
	return sum
}

// checksum is the additive cartridge checksum: the byte sum of the field,
// modulo 255. Not the XOR used by the tape formats.
func (b *block) checksum(key string) byte {
	return byte(b.sum(key) % 255)
}
