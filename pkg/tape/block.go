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
	"encoding/hex"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/tapeworks/bastap/pkg/basic"
)

// block flag bytes
const (
	FlagHeader = 0x00
	FlagData   = 0xff
)

// header payload field values
const (
	FileTypeProgram = 0x00
	NameLength      = 10
	headerBlockSize = 19 // flag + 17 header bytes + checksum
)

// AutoStartNone is the header sentinel for "no auto start line".
const AutoStartNone = 0x8000

// XorChecksum is the checksum used by TAP and RS232 blocks: XOR over all
// bytes from the flag byte through the last payload byte. Do not confuse
// with the additive sum used by Microdrive cartridges.
func XorChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// Header is the parsed 17-byte header carried by a type-0 block.
type Header struct {
	FileType  byte
	Name      string
	Length    int
	AutoStart int // basic.NoAutoStart when absent
	VarsOff   int
}

// Program is a header/data block pair extracted from a container.
type Program struct {
	Header Header
	Data   []byte
}

// Source detokenizes the program's data block.
func (p *Program) Source() (string, error) {
	return basic.Detokenize(p.Data)
}

//
func (p *Program) Emit(w io.Writer) {
	fmt.Fprintf(w, "\nPROGRAM: %s - type %d, %d bytes\n",
		p.Header.Name, p.Header.FileType, p.Header.Length)
	d := hex.Dumper(w)
	defer d.Close()
	d.Write(p.Data)
}

// headerPayload renders the checksummed header block content: flag byte,
// 17 header bytes, XOR checksum.
func headerPayload(name string, autostart int, progLen int) []byte {

	blk := make([]byte, headerBlockSize)
	blk[0] = FlagHeader
	blk[1] = FileTypeProgram

	if len(name) > NameLength {
		name = name[:NameLength]
	}
	copy(blk[2:12], []byte(fmt.Sprintf("%-*s", NameLength, name)))

	start := AutoStartNone
	if autostart != basic.NoAutoStart {
		start = autostart
	}

	putUint16(blk[12:], progLen)
	putUint16(blk[14:], start)
	putUint16(blk[16:], progLen) // variables sit right after the program

	blk[18] = XorChecksum(blk[:18])
	return blk
}

// dataPayload renders the checksummed data block content.
func dataPayload(prog []byte) []byte {
	blk := make([]byte, 0, len(prog)+2)
	blk = append(blk, FlagData)
	blk = append(blk, prog...)
	return append(blk, XorChecksum(blk))
}

/*
	parseBlock verifies a block's checksum and, for header blocks, decodes
	the header fields. It implements the tail of the generic container
	state machine (VerifyingChecksum); length and payload reading live
	with the individual formats, since TAP prefixes blocks with a length
	field while the RS232 stream does not.
*/
func parseBlock(blk []byte, offset int, strict bool) (*Header, []byte, error) {

	if len(blk) < 2 {
		return nil, nil, fmt.Errorf("offset %d: block too short", offset)
	}

	want := blk[len(blk)-1]
	got := XorChecksum(blk[:len(blk)-1])
	if want != got {
		if strict {
			return nil, nil, fmt.Errorf(
				"offset %d: block checksum mismatch, want %#02x, got %#02x",
				offset, want, got)
		}
		log.Warnf("offset %d: block checksum mismatch, want %#02x, got %#02x",
			offset, want, got)
	}

	body := blk[1 : len(blk)-1]

	switch blk[0] {

	case FlagHeader:
		if len(body) != 17 {
			return nil, nil, fmt.Errorf(
				"offset %d: header block has %d bytes, want 17",
				offset, len(body))
		}
		hd := &Header{
			FileType:  body[0],
			Name:      string(body[1:11]),
			Length:    getUint16(body[11:]),
			AutoStart: getUint16(body[13:]),
			VarsOff:   getUint16(body[15:]),
		}
		if hd.AutoStart >= AutoStartNone {
			hd.AutoStart = basic.NoAutoStart
		}
		return hd, nil, nil

	case FlagData:
		return nil, body, nil
	}

	return nil, nil, fmt.Errorf(
		"offset %d: unknown block flag %#02x", offset, blk[0])
}

// pairBlocks runs the AwaitingBlock half of the parse state machine over
// a sequence of already-extracted blocks, joining each header with the
// data block that follows it.
func pairBlocks(next func() ([]byte, int, error), strict bool) (
	[]*Program, error) {

	var programs []*Program
	var pending *Header

	for {

		blk, offset, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		hd, data, err := parseBlock(blk, offset, strict)
		if err != nil {
			return nil, err
		}

		if hd != nil {
			if pending != nil {
				log.Warnf("offset %d: header block without data", offset)
			}
			pending = hd
			continue
		}

		if pending == nil {
			log.Warnf("offset %d: headerless data block, skipping", offset)
			continue
		}

		if pending.Length != len(data) {
			log.Warnf("offset %d: header declares %d bytes, data block "+
				"carries %d", offset, pending.Length, len(data))
		}

		programs = append(programs, &Program{Header: *pending, Data: data})
		pending = nil
	}

	return programs, nil
}

//
func putUint16(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

//
func getUint16(b []byte) int {
	return int(b[0]) | int(b[1])<<8
}
