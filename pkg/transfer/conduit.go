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
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

// DefaultBaudRate matches the Interface 1 RS232 link setting the ROM
// uses out of the box.
const DefaultBaudRate = 19200

// chunking for paced sends; the Interface 1 has no receive buffer worth
// mentioning, so pushing a whole program at once overruns it
const (
	sendChunkSize  = 64
	sendChunkPause = 50 * time.Millisecond
)

//
type Conduit struct {
	device    string
	port      io.ReadWriteCloser
	closeOnce sync.Once
	closeErr  error
}

// NewConduit opens the serial device with Interface 1 framing: 8 data
// bits, 1 stop bit, no parity.
func NewConduit(device string, baud uint) (*Conduit, error) {

	if baud == 0 {
		baud = DefaultBaudRate
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:        device,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %v", device, err)
	}

	log.WithFields(log.Fields{
		"device": device,
		"baud":   baud,
	}).Info("serial port open")

	return &Conduit{device: device, port: port}, nil
}

// Close is safe to call more than once; Receive closes the port itself
// to unblock its reader.
func (c *Conduit) Close() error {
	c.closeOnce.Do(func() { c.closeErr = c.port.Close() })
	return c.closeErr
}

// Send streams data to the Spectrum in small paced chunks.
func (c *Conduit) Send(data []byte) error {

	for from := 0; from < len(data); from += sendChunkSize {

		to := from + sendChunkSize
		if to > len(data) {
			to = len(data)
		}

		if _, err := c.port.Write(data[from:to]); err != nil {
			return fmt.Errorf("error sending block: %v", err)
		}

		log.Tracef("sent %d of %d bytes", to, len(data))
		time.Sleep(sendChunkPause)
	}

	return nil
}

/*
	Receive captures incoming bytes into w until the line has been idle
	for the given duration. The port is opened with MinimumReadSize 1, so
	Read blocks until at least one byte arrives; when the line goes quiet,
	the port is closed to unblock the reader, and Receive returns only
	after the reader has exited, so w is not touched afterwards.
*/
func (c *Conduit) Receive(w io.Writer, idle time.Duration) (int, error) {

	var total int64
	buf := make([]byte, 256)

	done := make(chan error, 1)
	go func() {
		for {
			n, err := c.port.Read(buf)
			if n > 0 {
				if _, werr := w.Write(buf[:n]); werr != nil {
					done <- werr
					return
				}
				atomic.AddInt64(&total, int64(n))
			}
			if err != nil {
				done <- err
				return
			}
		}
	}()

	seen := int64(0)

	for {
		select {
		case err := <-done:
			if err == io.EOF {
				err = nil
			}
			return int(atomic.LoadInt64(&total)), err
		case <-time.After(idle):
			now := atomic.LoadInt64(&total)
			if now > 0 && now == seen {
				c.Close()
				<-done
				now = atomic.LoadInt64(&total)
				log.Debugf("line idle, captured %d bytes", now)
				return int(now), nil
			}
			seen = now
		}
	}
}
