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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapeworks/bastap/pkg/basic"
)

func TestTZXWriteLayout(t *testing.T) {

	prog := assembleSource(t, "10 STOP\n")

	var out bytes.Buffer
	require.NoError(t, NewTZX().Write(&out, "x", basic.NoAutoStart, prog))

	raw := out.Bytes()
	require.True(t, len(raw) > 15)

	assert.Equal(t, []byte("ZXTape!\x1a"), raw[0:8])
	assert.Equal(t, byte(1), raw[8])
	assert.Equal(t, byte(20), raw[9])

	// first block: standard speed data carrying the 19-byte header block
	assert.Equal(t, byte(0x10), raw[10])
	assert.Equal(t, 1000, getUint16(raw[11:]))
	assert.Equal(t, 19, getUint16(raw[13:]))
	assert.Equal(t, byte(FlagHeader), raw[15])
}

func TestTZXRoundTrip(t *testing.T) {

	prog := assembleSource(t, "10 LET a=1\n20 PRINT a\n")

	var out bytes.Buffer
	require.NoError(t, NewTZX().Write(&out, "demo", basic.NoAutoStart, prog))

	programs, err := NewTZX().Read(&out, true)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, prog, programs[0].Data)
	assert.Equal(t, "demo      ", programs[0].Header.Name)
}

// scenario: a TZX without the signature must fail structurally, not come
// back as an empty program list
func TestTZXBadSignature(t *testing.T) {

	_, err := NewTZX().Read(bytes.NewReader([]byte("NotATape!\x1a....")), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad signature")

	_, err = NewTZX().Read(bytes.NewReader([]byte("ZX")), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestTZXSkipsMetadataBlocks(t *testing.T) {

	prog := assembleSource(t, "10 STOP\n")

	var full bytes.Buffer
	require.NoError(t, NewTZX().Write(&full, "x", basic.NoAutoStart, prog))
	blocks := full.Bytes()[10:] // strip signature and version

	var in bytes.Buffer
	in.Write([]byte("ZXTape!\x1a"))
	in.Write([]byte{1, 20})
	// text description block
	in.Write([]byte{0x30, 5})
	in.Write([]byte("hello"))
	// pause block
	in.Write([]byte{0x20, 0xe8, 0x03})
	// pulse sequence: 2 pulses of 2 bytes each
	in.Write([]byte{0x13, 2, 0x78, 0x02, 0x8b, 0x02})
	in.Write(blocks)
	// loop end after the data, no body
	in.Write([]byte{0x25})

	programs, err := NewTZX().Read(&in, true)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, prog, programs[0].Data)
}

func TestTZXUnknownBlockAborts(t *testing.T) {

	var in bytes.Buffer
	in.Write([]byte("ZXTape!\x1a"))
	in.Write([]byte{1, 20})
	in.Write([]byte{0x19, 1, 2, 3}) // generalized data, not supported

	_, err := NewTZX().Read(&in, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown TZX block")
}
