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
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/tapeworks/bastap/pkg/basic"
	"github.com/tapeworks/bastap/pkg/tape"
)

// FileLength is the exact size of an MDR cartridge image: 254 sectors of
// 543 bytes, plus the trailing write protection flag.
const FileLength = SectorCount*SectorLength + 1

// fileHeaderLength is the size of the file header stored ahead of a
// program's token buffer on cartridge: file type, program length, auto
// start line, variables offset, two spare bytes. All fields little-endian.
const fileHeaderLength = 9

// MDR is a reader/writer for MDR cartridge image files. MDR files hold
// the sectors in storage order, sector 254 first.
type MDR struct {
	policy RepairPolicy
}

//
func NewMDR() *MDR {
	return &MDR{}
}

// WithPolicy sets the repair policy applied to defective sectors while
// reading.
func (m *MDR) WithPolicy(p RepairPolicy) *MDR {
	m.policy = p
	return m
}

//
func (m *MDR) Read(in io.Reader, strict bool) (*Cartridge, error) {

	cart := NewCartridge()
	slot := 0

	for ; slot < cart.SectorCount(); slot++ {

		header := make([]byte, HeaderLength)

		read, err := io.ReadFull(in, header)
		if err != nil {
			if err == io.ErrUnexpectedEOF && read == 1 {
				// truncated image that still ends in the flag
				cart.SetWriteProtected(header[0] > 0)
				break
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				log.Warnf("image truncated after %d sectors", slot)
				break
			}
			return nil, err
		}

		record := make([]byte, RecordLength)
		if _, err := io.ReadFull(in, record); err != nil {
			return nil, fmt.Errorf("truncated sector %d: %v", slot, err)
		}

		hd, err := NewHeader(header)
		if err != nil && !m.policy.repairHeader(hd, err) {
			if strict {
				log.Errorf("defective header, discarding sector: %v", err)
				continue
			}
			log.Warnf("defective header: %v", err)
		}

		rec, err := NewRecord(record)
		if err != nil && !m.policy.repairRecord(rec, err) {
			if strict {
				log.Errorf("defective record, discarding sector: %v", err)
				continue
			}
			log.Warnf("defective record: %v", err)
		}

		cart.SetSectorAt(slot, NewSector(hd, rec))
	}

	if slot == cart.SectorCount() {
		flag := make([]byte, 1)
		if _, err := io.ReadFull(in, flag); err != nil {
			log.Warn("missing write protection flag")
		} else {
			cart.SetWriteProtected(flag[0] > 0)
		}
	}

	log.Debugf("%d sectors loaded", slot)
	cart.SetModified(false)

	return cart, nil
}

//
func (m *MDR) Write(cart *Cartridge, out io.Writer) error {

	blank := make([]byte, SectorLength)

	for ix := 0; ix < cart.SectorCount(); ix++ {

		sec := cart.SectorAt(ix)
		if sec == nil {
			// keep the image at its exact size
			if _, err := out.Write(blank); err != nil {
				return err
			}
			continue
		}

		if _, err := out.Write(sec.Header().Data()); err != nil {
			return err
		}
		if _, err := out.Write(sec.Record().Data()); err != nil {
			return err
		}
	}

	var wp byte = 0x00
	if cart.IsWriteProtected() {
		wp = 0xff
	}
	if _, err := out.Write([]byte{wp}); err != nil {
		return err
	}

	return nil
}

/*
	WriteProgram stores a tokenized program as a named file on the
	cartridge: a file header followed by the token buffer, split into
	512-byte records spread over free sectors, highest sector number
	first.
*/
func WriteProgram(cart *Cartridge, fileName string, autostart int,
	prog []byte) error {

	if len(fileName) > 10 {
		fileName = fileName[:10]
	}

	stream := make([]byte, fileHeaderLength, fileHeaderLength+len(prog))
	stream[0] = tape.FileTypeProgram
	stream[1] = byte(len(prog))
	stream[2] = byte(len(prog) >> 8)

	start := tape.AutoStartNone
	if autostart != basic.NoAutoStart {
		start = autostart
	}
	stream[3] = byte(start)
	stream[4] = byte(start >> 8)
	stream[5] = byte(len(prog)) // variables right after the program
	stream[6] = byte(len(prog) >> 8)

	stream = append(stream, prog...)

	free := cart.FreeSlots()
	needed := (len(stream) + RecordDataLength - 1) / RecordDataLength

	if needed > len(free) {
		return fmt.Errorf("cartridge full: %d records needed, %d free",
			needed, len(free))
	}

	for seq := 0; seq < needed; seq++ {

		from := seq * RecordDataLength
		to := from + RecordDataLength
		if to > len(stream) {
			to = len(stream)
		}

		rec, err := NewRecordFor(
			fileName, seq, stream[from:to], seq == needed-1)
		if err != nil {
			return err
		}

		cart.SectorAt(free[seq]).SetRecord(rec)
	}

	cart.SetModified(true)
	return nil
}

/*
	Programs reassembles all files stored on the cartridge and returns
	them as programs: records are collected per file name, ordered by
	their sequence number, and the concatenated stream is split into file
	header and token buffer.
*/
func Programs(cart *Cartridge) ([]*tape.Program, error) {

	files := make(map[string][]*Record)

	for ix := 0; ix < cart.SectorCount(); ix++ {
		sec := cart.SectorAt(ix)
		if sec == nil || sec.Record() == nil || !sec.Record().Used() {
			continue
		}
		rec := sec.Record()
		files[rec.Name()] = append(files[rec.Name()], rec)
	}

	var names []string
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	var programs []*tape.Program

	for _, n := range names {

		recs := files[n]
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].Index() < recs[j].Index()
		})

		var stream []byte
		for _, r := range recs {
			stream = append(stream, r.Chunk()...)
		}

		if len(stream) < fileHeaderLength {
			log.Warnf("file %q too short for its header, skipping", n)
			continue
		}

		hd := tape.Header{
			FileType:  stream[0],
			Name:      n,
			Length:    int(stream[1]) | int(stream[2])<<8,
			AutoStart: int(stream[3]) | int(stream[4])<<8,
			VarsOff:   int(stream[5]) | int(stream[6])<<8,
		}
		if hd.AutoStart >= tape.AutoStartNone {
			hd.AutoStart = basic.NoAutoStart
		}

		data := stream[fileHeaderLength:]
		if hd.Length > len(data) {
			log.Warnf("file %q declares %d bytes, %d stored",
				strings.TrimRight(n, " "), hd.Length, len(data))
		} else {
			data = data[:hd.Length]
		}

		programs = append(programs, &tape.Program{Header: hd, Data: data})
	}

	return programs, nil
}
