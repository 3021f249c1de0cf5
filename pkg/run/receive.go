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

package run

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tapeworks/bastap/pkg/transfer"
)

//
func NewReceive() *Receive {

	r := &Receive{}
	r.Runner = *NewRunner(
		`receive -o|--output {file} -d|--device {device} [-b|--baud {rate}]
      [--idle {seconds}] [-f|--force]`,
		"receive a program from the Spectrum over RS232",
		`
Use the receive command to capture a program sent by a Spectrum with
Interface 1 over a serial link, e.g. with SAVE *"b". The capture ends once
the line has been idle for the given number of seconds. The received block
stream is saved as an rs232 container file.`,
		runnerHelpEpilogue, r.Run)

	r.AddSetting(&r.File, "output", "o", "", nil, "output file", true)
	r.AddSetting(&r.Device, "device", "d", "BASTAP_DEVICE", nil,
		"serial port device", true)
	r.AddSetting(&r.Baud, "baud", "b", "BASTAP_BAUD",
		transfer.DefaultBaudRate, "baud rate", false)
	r.AddSetting(&r.Idle, "idle", "", "", 3,
		"seconds of line silence that end the capture", false)
	r.AddSetting(&r.Force, "force", "f", "", false,
		"overwrite output file without asking", false)

	return r
}

//
type Receive struct {
	//
	Runner
	//
	File   string
	Device string
	Baud   int
	Idle   int
	Force  bool
}

//
func (r *Receive) Run() error {

	r.ParseSettings()

	conduit, err := transfer.NewConduit(r.Device, uint(r.Baud))
	if err != nil {
		return err
	}
	defer conduit.Close()

	fmt.Printf("waiting for data on %s...\n", r.Device)

	var buf bytes.Buffer
	total, err := conduit.Receive(&buf, time.Duration(r.Idle)*time.Second)
	if err != nil {
		return err
	}

	if err := writeFile(r.File, buf.Bytes(), r.Force); err != nil {
		return err
	}

	fmt.Printf("received %d bytes into %s\n", total, r.File)
	return nil
}
