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
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/tapeworks/bastap/pkg/basic"
	"github.com/tapeworks/bastap/pkg/tape"
	"github.com/tapeworks/bastap/pkg/transfer"
)

//
func NewSend() *Send {

	s := &Send{}
	s.Runner = *NewRunner(
		`send -i|--input {file} -d|--device {device} [-b|--baud {rate}]
      [-n|--name {name}] [-s|--start {line}]`,
		"send a program to the Spectrum over RS232",
		`
Use the send command to transfer a program over a serial link to a Spectrum
with Interface 1. A BASIC source file is tokenized and framed as an RS232
block stream on the fly; any other file is sent as is. On the Spectrum,
receive with LOAD *"b".`,
		runnerHelpEpilogue, s.Run)

	s.AddSetting(&s.File, "input", "i", "", nil,
		"BASIC source or container file to send", true)
	s.AddSetting(&s.Device, "device", "d", "BASTAP_DEVICE", nil,
		"serial port device", true)
	s.AddSetting(&s.Baud, "baud", "b", "BASTAP_BAUD",
		transfer.DefaultBaudRate, "baud rate", false)
	s.AddSetting(&s.Name, "name", "n", "", nil,
		"program name, at most 10 characters; defaults to the input file name",
		false)
	s.AddSetting(&s.Start, "start", "s", "", basic.NoAutoStart,
		"auto start line", false)

	return s
}

//
type Send struct {
	//
	Runner
	//
	File   string
	Device string
	Baud   int
	Name   string
	Start  int
}

//
func (s *Send) Run() error {

	s.ParseSettings()

	data, err := ioutil.ReadFile(s.File)
	if err != nil {
		return err
	}

	if getExtension(s.File) == "bas" {

		opts := basic.DefaultOptions()
		opts.AutoStart = s.Start
		opts.Name = s.Name
		if opts.Name == "" {
			base := filepath.Base(s.File)
			opts.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}

		res, err := basic.Assemble(string(data), opts)
		if err != nil {
			return err
		}

		var out bytes.Buffer
		form, _ := tape.NewFormat("rs232")
		if err := form.Write(
			&out, opts.Name, opts.AutoStart, res.Buffer); err != nil {
			return err
		}
		data = out.Bytes()
	}

	conduit, err := transfer.NewConduit(s.Device, uint(s.Baud))
	if err != nil {
		return err
	}
	defer conduit.Close()

	if err := conduit.Send(data); err != nil {
		return err
	}

	fmt.Printf("sent %d bytes to %s\n", len(data), s.Device)
	return nil
}
