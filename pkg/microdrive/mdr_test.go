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
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapeworks/bastap/pkg/basic"
)

//
func assembleSource(t *testing.T, src string) []byte {
	opts := basic.DefaultOptions()
	opts.SuppressWarnings = true
	res, err := basic.Assemble(src, opts)
	require.NoError(t, err)
	return res.Buffer
}

// fiftyLines generates a program exercising REM, LET, PRINT, and GO SUB.
func fiftyLines() string {
	var sb strings.Builder
	sb.WriteString("10 REM mdr round trip\n")
	for i := 2; i <= 47; i++ {
		fmt.Fprintf(&sb, "%d LET a=%d\n", i*10, i)
	}
	sb.WriteString("480 PRINT a\n")
	sb.WriteString("490 GO SUB 500\n")
	sb.WriteString("500 RETURN\n")
	return sb.String()
}

func TestFileLength(t *testing.T) {
	assert.Equal(t, 137923, FileLength)
	assert.Equal(t, 543, SectorLength)
}

func TestFormatCartridge(t *testing.T) {

	cart := FormatCartridge("blank")

	assert.True(t, cart.IsFormatted())
	assert.Equal(t, SectorCount, cart.SectorCount())
	assert.Len(t, cart.FreeSlots(), SectorCount)

	// sector 254 sits in slot 0, sector 1 in the last slot
	assert.Equal(t, 254, cart.SectorAt(0).Index())
	assert.Equal(t, 1, cart.SectorAt(SectorCount-1).Index())
	assert.Equal(t, "blank     ", cart.SectorAt(0).Name())

	for ix := 0; ix < cart.SectorCount(); ix++ {
		sec := cart.SectorAt(ix)
		require.NotNil(t, sec)
		assert.NoError(t, sec.Header().Validate())
		assert.NoError(t, sec.Record().Validate())
	}
}

func TestMDRImageSize(t *testing.T) {

	cart := FormatCartridge("size")

	var out bytes.Buffer
	require.NoError(t, NewMDR().Write(cart, &out))
	assert.Equal(t, FileLength, out.Len())

	// unformatted slots are written as blank sectors
	cart.SetSectorAt(10, nil)
	out.Reset()
	require.NoError(t, NewMDR().Write(cart, &out))
	assert.Equal(t, FileLength, out.Len())
}

func TestMDRRoundTrip(t *testing.T) {

	src := fiftyLines()
	prog := assembleSource(t, src)

	cart := FormatCartridge("demo")
	require.NoError(t, WriteProgram(cart, "demo", 10, prog))

	var out bytes.Buffer
	require.NoError(t, NewMDR().Write(cart, &out))
	require.Equal(t, FileLength, out.Len())

	loaded, err := NewMDR().Read(&out, true)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name())

	programs, err := Programs(loaded)
	require.NoError(t, err)
	require.Len(t, programs, 1)

	p := programs[0]
	assert.Equal(t, prog, p.Data)
	assert.Equal(t, 10, p.Header.AutoStart)

	listing, err := p.Source()
	require.NoError(t, err)

	// the keywords come back in their original order
	last := -1
	for _, kw := range []string{"REM", "LET", "PRINT", "GO SUB"} {
		at := strings.Index(listing, kw)
		require.True(t, at >= 0, "keyword %s missing from listing", kw)
		assert.True(t, at > last, "keyword %s out of order", kw)
		last = at
	}
}

func TestMDRWriteProtect(t *testing.T) {

	cart := FormatCartridge("wp")
	cart.SetWriteProtected(true)

	var out bytes.Buffer
	require.NoError(t, NewMDR().Write(cart, &out))
	assert.Equal(t, byte(0xff), out.Bytes()[out.Len()-1])

	raw := out.Bytes()

	loaded, err := NewMDR().Read(bytes.NewReader(raw), true)
	require.NoError(t, err)
	assert.True(t, loaded.IsWriteProtected())
	assert.False(t, loaded.IsModified())

	// an unprotected image reads back unprotected
	raw[len(raw)-1] = 0x00
	loaded, err = NewMDR().Read(bytes.NewReader(raw), true)
	require.NoError(t, err)
	assert.False(t, loaded.IsWriteProtected())

	// an image cut off before the flag byte loads unprotected
	loaded, err = NewMDR().Read(bytes.NewReader(raw[:len(raw)-1]), true)
	require.NoError(t, err)
	assert.False(t, loaded.IsWriteProtected())
}

func TestWriteProgramSpansRecords(t *testing.T) {

	// more than one 512-byte record worth of program
	var sb strings.Builder
	for i := 1; i <= 60; i++ {
		fmt.Fprintf(&sb, "%d REM %s\n", i*10, strings.Repeat("x", 20))
	}
	prog := assembleSource(t, sb.String())
	require.True(t, len(prog) > RecordDataLength)

	cart := FormatCartridge("big")
	require.NoError(t, WriteProgram(cart, "big", basic.NoAutoStart, prog))

	needed := (len(prog) + fileHeaderLength + RecordDataLength - 1) /
		RecordDataLength
	assert.Len(t, cart.FreeSlots(), SectorCount-needed)

	programs, err := Programs(cart)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, prog, programs[0].Data)
	assert.Equal(t, basic.NoAutoStart, programs[0].Header.AutoStart)
}

func TestWriteProgramCartridgeFull(t *testing.T) {

	prog := assembleSource(t, "10 STOP\n")

	// an unformatted cartridge has no free records
	err := WriteProgram(NewCartridge(), "x", basic.NoAutoStart, prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cartridge full")
}

func TestMultipleFilesOnCartridge(t *testing.T) {

	alpha := assembleSource(t, "10 PRINT 1\n")
	beta := assembleSource(t, "10 PRINT 2\n")

	cart := FormatCartridge("multi")
	require.NoError(t, WriteProgram(cart, "beta", basic.NoAutoStart, beta))
	require.NoError(t, WriteProgram(cart, "alpha", basic.NoAutoStart, alpha))

	programs, err := Programs(cart)
	require.NoError(t, err)
	require.Len(t, programs, 2)

	// sorted by file name
	assert.Equal(t, "alpha     ", programs[0].Header.Name)
	assert.Equal(t, alpha, programs[0].Data)
	assert.Equal(t, "beta      ", programs[1].Header.Name)
	assert.Equal(t, beta, programs[1].Data)
}

func TestMDRRepairPolicies(t *testing.T) {

	prog := assembleSource(t, "10 STOP\n")
	cart := FormatCartridge("fix")
	require.NoError(t, WriteProgram(cart, "fix", basic.NoAutoStart, prog))

	var out bytes.Buffer
	require.NoError(t, NewMDR().Write(cart, &out))
	raw := out.Bytes()

	// corrupt the first sector's header checksum
	raw[HeaderLength-1] ^= 0x55

	// strict without a policy discards the sector
	loaded, err := NewMDR().Read(bytes.NewReader(raw), true)
	require.NoError(t, err)
	assert.Nil(t, loaded.SectorAt(0))

	// FixHeader recomputes the checksum and keeps the sector
	loaded, err = NewMDR().WithPolicy(FixHeader).Read(
		bytes.NewReader(raw), true)
	require.NoError(t, err)
	sec := loaded.SectorAt(0)
	require.NotNil(t, sec)
	assert.NoError(t, sec.Header().Validate())

	// AcceptErrors keeps the sector with the bad checksum in place
	loaded, err = NewMDR().WithPolicy(AcceptErrors).Read(
		bytes.NewReader(raw), true)
	require.NoError(t, err)
	sec = loaded.SectorAt(0)
	require.NotNil(t, sec)
	assert.Error(t, sec.Header().Validate())
}

func TestRecordChecksumsAdditive(t *testing.T) {

	rec, err := NewRecordFor("file", 0, []byte{1, 2, 3}, true)
	require.NoError(t, err)

	// additive mod 255, not XOR
	sum := 0
	for _, b := range rec.Data()[:14] {
		sum += int(b)
	}
	assert.Equal(t, byte(sum%255), rec.Data()[14])

	sum = 0
	for _, b := range rec.Data()[15:527] {
		sum += int(b)
	}
	assert.Equal(t, byte(sum%255), rec.Data()[527])

	assert.True(t, rec.Used())
	assert.True(t, rec.EOF())
	assert.Equal(t, []byte{1, 2, 3}, rec.Chunk())
	assert.Equal(t, "file      ", rec.Name())
}
