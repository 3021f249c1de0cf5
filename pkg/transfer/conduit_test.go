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

package transfer

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort stands in for the serial device: Read blocks until data
// arrives or the port is closed, like a port opened with
// MinimumReadSize 1.
type fakePort struct {
	incoming chan []byte
	closed   chan struct{}
	once     sync.Once
	mu       sync.Mutex
	writes   [][]byte
}

//
func newFakePort() *fakePort {
	return &fakePort{
		incoming: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

//
func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case chunk := <-p.incoming:
		return copy(b, chunk), nil
	case <-p.closed:
		return 0, io.EOF
	}
}

//
func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, append([]byte(nil), b...))
	return len(b), nil
}

//
func (p *fakePort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

// scenario: once the line goes quiet, Receive has to shut its reader
// down before handing the buffer back to the caller
func TestReceiveStopsReaderOnIdle(t *testing.T) {

	port := newFakePort()
	c := &Conduit{device: "fake", port: port}

	port.incoming <- []byte("HELLO")
	port.incoming <- []byte("WORLD")

	var buf bytes.Buffer
	n, err := c.Receive(&buf, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "HELLOWORLD", buf.String())

	// the reader was unblocked by closing the port
	select {
	case <-port.closed:
	default:
		t.Fatal("port still open after idle return")
	}

	// the caller's deferred Close must tolerate the early close
	assert.NoError(t, c.Close())
}

func TestReceivePortClosedBeforeData(t *testing.T) {

	port := newFakePort()
	c := &Conduit{device: "fake", port: port}

	require.NoError(t, port.Close())

	var buf bytes.Buffer
	n, err := c.Receive(&buf, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, buf.Len())
}

func TestSendChunking(t *testing.T) {

	port := newFakePort()
	c := &Conduit{device: "fake", port: port}

	data := bytes.Repeat([]byte{0xaa}, 150)
	require.NoError(t, c.Send(data))

	port.mu.Lock()
	defer port.mu.Unlock()
	require.Len(t, port.writes, 3)
	assert.Len(t, port.writes[0], sendChunkSize)
	assert.Len(t, port.writes[1], sendChunkSize)
	assert.Len(t, port.writes[2], 150-2*sendChunkSize)
	assert.Equal(t, data, bytes.Join(port.writes, nil))
}
