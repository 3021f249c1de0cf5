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
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	log "github.com/sirupsen/logrus"
)

//
var tzxSignature = []byte("ZXTape!\x1a")

const (
	tzxMajorVersion = 1
	tzxMinorVersion = 20
	//
	tzxStandardSpeed = 0x10
	tzxPauseMillis   = 1000
)

/*
	tzxBlockRules describes how to size the TZX blocks we do not decode:
	fixed is the constant byte count, lenAt/lenSize locate an embedded
	length field counting the bytes that follow it. Blocks absent from
	this table have no length rule, so an unknown id aborts the parse.
*/
type tzxBlockRule struct {
	fixed   int
	lenAt   int
	lenSize int
}

var tzxBlockRules = map[byte]tzxBlockRule{
	0x11: {lenAt: 15, lenSize: 3}, // turbo speed data
	0x12: {fixed: 4},              // pure tone
	0x13: {lenAt: 0, lenSize: 1},  // pulse sequence, count of 2-byte pulses
	0x14: {lenAt: 7, lenSize: 3},  // pure data
	0x20: {fixed: 2},              // pause / stop the tape
	0x21: {lenAt: 0, lenSize: 1},  // group start
	0x22: {fixed: 0},              // group end
	0x23: {fixed: 2},              // jump
	0x24: {fixed: 2},              // loop start
	0x25: {fixed: 0},              // loop end
	0x2a: {fixed: 4},              // stop the tape if in 48K mode
	0x30: {lenAt: 0, lenSize: 1},  // text description
	0x31: {lenAt: 1, lenSize: 1},  // message
	0x32: {lenAt: 0, lenSize: 2},  // archive info
	0x33: {lenAt: 0, lenSize: 1},  // hardware type, count of 3-byte entries
	0x35: {lenAt: 16, lenSize: 4}, // custom info, after the 16-byte id
	0x5a: {fixed: 9},              // glue
}

// entrySize maps the ids whose length field counts fixed-size entries
// rather than bytes.
var tzxEntrySize = map[byte]int{0x13: 2, 0x33: 3}

// TZX is a reader/writer for the TZX tape format. Writing emits standard
// speed data blocks only; reading extracts those and skips over the
// metadata blocks it can size.
type TZX struct{}

//
func NewTZX() *TZX {
	return &TZX{}
}

//
func (t *TZX) Write(out io.Writer, name string, autostart int,
	prog []byte) error {

	hd := append([]byte{}, tzxSignature...)
	hd = append(hd, tzxMajorVersion, tzxMinorVersion)
	if _, err := out.Write(hd); err != nil {
		return err
	}

	if err := writeTzxDataBlock(out, headerPayload(name, autostart,
		len(prog))); err != nil {
		return err
	}
	return writeTzxDataBlock(out, dataPayload(prog))
}

// writeTzxDataBlock wraps one complete TAP block content into a standard
// speed data block.
func writeTzxDataBlock(out io.Writer, blk []byte) error {

	head := make([]byte, 5)
	head[0] = tzxStandardSpeed
	putUint16(head[1:], tzxPauseMillis)
	putUint16(head[3:], len(blk))

	if _, err := out.Write(head); err != nil {
		return err
	}
	_, err := out.Write(blk)
	return err
}

//
func (t *TZX) Read(in io.Reader, strict bool) ([]*Program, error) {

	sig := make([]byte, len(tzxSignature)+2)
	if _, err := io.ReadFull(in, sig); err != nil {
		return nil, fmt.Errorf("truncated TZX signature: %v", err)
	}
	if !bytes.Equal(sig[:len(tzxSignature)], tzxSignature) {
		return nil, fmt.Errorf("not a TZX file: bad signature %q",
			sig[:len(tzxSignature)])
	}
	log.Debugf("TZX version %d.%d", sig[8], sig[9])

	offset := len(sig)

	return pairBlocks(func() ([]byte, int, error) {
		return nextTzxDataBlock(in, &offset)
	}, strict)
}

// nextTzxDataBlock advances to the next standard speed data block,
// skipping sizeable metadata blocks on the way.
func nextTzxDataBlock(in io.Reader, offset *int) ([]byte, int, error) {

	for {

		var id [1]byte
		if _, err := io.ReadFull(in, id[:]); err != nil {
			if err == io.EOF {
				return nil, *offset, io.EOF
			}
			return nil, *offset, fmt.Errorf(
				"offset %d: truncated block id: %v", *offset, err)
		}
		at := *offset
		*offset++

		if id[0] == tzxStandardSpeed {
			head := make([]byte, 4)
			if _, err := io.ReadFull(in, head); err != nil {
				return nil, at, fmt.Errorf(
					"offset %d: truncated data block header: %v", at, err)
			}
			blk := make([]byte, getUint16(head[2:]))
			if _, err := io.ReadFull(in, blk); err != nil {
				return nil, at, fmt.Errorf(
					"offset %d: truncated data block: %v", at, err)
			}
			*offset += 4 + len(blk)
			return blk, at, nil
		}

		rule, ok := tzxBlockRules[id[0]]
		if !ok {
			return nil, at, fmt.Errorf(
				"offset %d: unknown TZX block id %#02x with "+
					"undeterminable length", at, id[0])
		}
		log.Warnf("offset %d: skipping TZX block id %#02x", at, id[0])

		skip := rule.fixed

		if rule.lenSize > 0 {
			head := make([]byte, rule.lenAt+rule.lenSize)
			if _, err := io.ReadFull(in, head); err != nil {
				return nil, at, fmt.Errorf(
					"offset %d: truncated block header: %v", at, err)
			}
			*offset += len(head)

			length := 0
			for ix := rule.lenSize - 1; ix >= 0; ix-- {
				length = length<<8 | int(head[rule.lenAt+ix])
			}
			if es, ok := tzxEntrySize[id[0]]; ok {
				length *= es
			}
			skip = length
		}

		if skip > 0 {
			if _, err := io.CopyN(ioutil.Discard, in, int64(skip)); err != nil {
				return nil, at, fmt.Errorf(
					"offset %d: truncated block body: %v", at, err)
			}
			*offset += skip
		}
	}
}
