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
const RecordLength = 528
const RecordDataLength = 512

// record flag bits
const (
	RecordFlagUsed = 0x04
	RecordFlagEOF  = 0x02
)

//
var recordIndex = map[string][2]int{
	"flags":        {0, 1},
	"number":       {1, 1},
	"length":       {2, 2},
	"name":         {4, 10},
	"header":       {0, 14},
	"checksum":     {14, 1},
	"data":         {15, 512},
	"dataChecksum": {527, 1},
}

/*
	Record is one 528-byte data record: a 15-byte descriptor (flag byte,
	sequence number within the file, used data length, 10-byte file name,
	additive checksum), 512 data bytes, and the additive checksum of the
	data. The length field counts how many of the 512 bytes are in use.
*/
type Record struct {
	block *block
}

//
func NewRecord(data []byte) (*Record, error) {

	if len(data) != RecordLength {
		return nil, fmt.Errorf(
			"record needs %d bytes, got %d", RecordLength, len(data))
	}

	d := make([]byte, len(data))
	copy(d, data)

	r := &Record{block: newBlock(recordIndex, d)}
	return r, r.Validate()
}

// NewRecordFor builds a valid record carrying one chunk of a file's data
// stream. sequence counts from 0, eof marks the file's last record.
func NewRecordFor(fileName string, sequence int, chunk []byte,
	eof bool) (*Record, error) {

	if len(chunk) > RecordDataLength {
		return nil, fmt.Errorf(
			"record data chunk too long: %d bytes", len(chunk))
	}

	r := &Record{block: newBlock(recordIndex, make([]byte, RecordLength))}

	flags := byte(RecordFlagUsed)
	if eof {
		flags |= RecordFlagEOF
	}

	r.block.setByte("flags", flags)
	r.block.setByte("number", byte(sequence))
	r.block.setInt("length", len(chunk))
	r.block.setName("name", fileName)
	r.block.setSlice("data", chunk)
	r.FixChecksums()

	return r, nil
}

// NewBlankRecord builds the record of an unused, formatted sector.
func NewBlankRecord() *Record {
	r := &Record{block: newBlock(recordIndex, make([]byte, RecordLength))}
	r.FixChecksums()
	return r
}

//
func (r *Record) Data() []byte {
	return r.block.data
}

//
func (r *Record) Flags() byte {
	return r.block.getByte("flags")
}

//
func (r *Record) Index() int {
	return int(r.block.getByte("number"))
}

//
func (r *Record) Length() int {
	return r.block.getInt("length")
}

//
func (r *Record) Name() string {
	return r.block.getString("name")
}

//
func (r *Record) Used() bool {
	return r.Flags()&RecordFlagUsed != 0 && r.Length() > 0
}

//
func (r *Record) EOF() bool {
	return r.Flags()&RecordFlagEOF != 0
}

// Chunk returns the used part of the record's data.
func (r *Record) Chunk() []byte {
	l := r.Length()
	if l < 0 || l > RecordDataLength {
		l = RecordDataLength
	}
	return r.block.getSlice("data")[:l]
}

//
func (r *Record) FixDescriptorChecksum() {
	r.block.setByte("checksum", r.block.checksum("header"))
}

//
func (r *Record) FixDataChecksum() {
	r.block.setByte("dataChecksum", r.block.checksum("data"))
}

//
func (r *Record) FixChecksums() {
	r.FixDescriptorChecksum()
	r.FixDataChecksum()
}

//
func (r *Record) Validate() error {

	want := r.block.getByte("checksum")
	got := r.block.checksum("header")

	if want != got {
		return fmt.Errorf(
			"invalid record descriptor check sum, want %d, got %d",
			want, got)
	}

	want = r.block.getByte("dataChecksum")
	got = r.block.checksum("data")

	if want != got {
		return fmt.Errorf(
			"invalid record data check sum, want %d, got %d", want, got)
	}

	return nil
}

//
func (r *Record) Emit(w io.Writer) {
	io.WriteString(w, fmt.Sprintf(
		"\nRECORD: %+q - flag: %X, index: %d, length: %d\n",
		r.Name(), r.Flags(), r.Index(), r.Length()))
	d := hex.Dumper(w)
	defer d.Close()
	d.Write(r.block.data)
}
