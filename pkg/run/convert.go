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
	"github.com/tapeworks/bastap/pkg/microdrive"
	"github.com/tapeworks/bastap/pkg/tape"
)

//
func NewConvert() *Convert {

	c := &Convert{}
	c.Runner = *NewRunner(
		`convert -i|--input {file} [-o|--output {file}] [--format {format}]
      [-n|--name {name}] [-s|--start {line}] [--strict] [-q|--quiet] [-f|--force]`,
		"convert BASIC source into a tokenized container file",
		`
Use the convert command to tokenize a ZX Spectrum BASIC source file and wrap
the result into a tape or cartridge container. Supported formats are tap, tzx,
mdr, rs232, and raw.`,
		runnerHelpEpilogue, c.Run)

	c.AddSetting(&c.File, "input", "i", "", nil, "BASIC source file", true)
	c.AddSetting(&c.Output, "output", "o", "", nil,
		"output file; defaults to the input name with the format's extension",
		false)
	c.AddSetting(&c.Format, "format", "", "BASTAP_FORMAT", "tap",
		"container format: tap|tzx|mdr|rs232|raw", false)
	c.AddSetting(&c.Name, "name", "n", "", nil,
		"program name, at most 10 characters; defaults to the input file name",
		false)
	c.AddSetting(&c.Start, "start", "s", "", basic.NoAutoStart,
		"auto start line", false)
	c.AddSetting(&c.Strict, "strict", "", "", false,
		"turn recoverable source defects into errors", false)
	c.AddSetting(&c.Quiet, "quiet", "q", "", false,
		"suppress warnings", false)
	c.AddSetting(&c.Force, "force", "f", "", false,
		"overwrite output file without asking", false)

	return c
}

//
type Convert struct {
	//
	Runner
	//
	File   string
	Output string
	Format string
	Name   string
	Start  int
	Strict bool
	Quiet  bool
	Force  bool
}

//
func (c *Convert) Run() error {

	c.ParseSettings()

	src, err := ioutil.ReadFile(c.File)
	if err != nil {
		return err
	}

	opts := basic.DefaultOptions()
	opts.AutoStart = c.Start
	opts.Strict = c.Strict
	opts.SuppressWarnings = c.Quiet

	opts.Name = c.Name
	if opts.Name == "" {
		base := filepath.Base(c.File)
		opts.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	res, err := basic.Assemble(string(src), opts)
	if err != nil {
		return err
	}

	var out bytes.Buffer

	if c.Format == "mdr" {
		cart := microdrive.FormatCartridge(opts.Name)
		if err = microdrive.WriteProgram(
			cart, opts.Name, opts.AutoStart, res.Buffer); err == nil {
			err = microdrive.NewMDR().Write(cart, &out)
		}
	} else {
		var form tape.Writer
		if form, err = tape.NewFormat(c.Format); err == nil {
			err = form.Write(&out, opts.Name, opts.AutoStart, res.Buffer)
		}
	}
	if err != nil {
		return err
	}

	output := c.Output
	if output == "" {
		ext := c.Format
		if ext == "raw" {
			ext = "bin"
		}
		output = strings.TrimSuffix(c.File, filepath.Ext(c.File)) + "." + ext
	}

	if err := writeFile(output, out.Bytes(), c.Force); err != nil {
		return err
	}

	if !c.Quiet {
		fmt.Printf("%s: %d BASIC bytes, %d container bytes\n",
			output, len(res.Buffer), out.Len())
	}
	return nil
}
