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
	"bufio"
	"fmt"
	"os"

	"github.com/tapeworks/bastap/pkg/microdrive"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		`dump -i|--input {file} [--format {format}] [-b|--basic]
      [-r|--repair {policies}] [--strict]`,
		"dump a container file",
		`
Use the dump command to output a hex dump of the programs in a container
file, or, with the basic flag, the detokenized BASIC source. For Microdrive
cartridges, the hex dump covers all sectors, and defective sectors can be
repaired on the fly: repair policies are a comma separated list of header,
record, data (recompute the respective checksum), and accept (keep sectors
with remaining defects).`,
		runnerHelpEpilogue, d.Run)

	d.AddSetting(&d.File, "input", "i", "", nil, "container file", true)
	d.AddSetting(&d.Format, "format", "", "BASTAP_FORMAT", "",
		"container format: tap|tzx|mdr|rs232|raw", false)
	d.AddSetting(&d.Basic, "basic", "b", "", false,
		"print BASIC source instead of a hex dump", false)
	d.AddSetting(&d.Repair, "repair", "r", "", nil,
		"sector repair policies, mdr only", false)
	d.AddSetting(&d.Strict, "strict", "", "", false,
		"turn recoverable container defects into errors", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	File   string
	Format string
	Basic  bool
	Repair string
	Strict bool
}

//
func (d *Dump) Run() error {

	d.ParseSettings()

	format := d.Format
	if format == "" {
		format = getExtension(d.File)
	}

	if format == "mdr" {
		return d.dumpCartridge()
	}

	programs, err := readPrograms(d.File, format, d.Strict)
	if err != nil {
		return err
	}

	for _, p := range programs {
		if d.Basic {
			src, err := p.Source()
			if err != nil {
				return err
			}
			fmt.Print(src)
		} else {
			p.Emit(os.Stdout)
		}
	}
	fmt.Println()

	return nil
}

//
func (d *Dump) dumpCartridge() error {

	policy, err := microdrive.ParsePolicy(d.Repair)
	if err != nil {
		return err
	}

	f, err := os.Open(d.File)
	if err != nil {
		return err
	}
	defer f.Close()

	cart, err := microdrive.NewMDR().WithPolicy(policy).Read(
		bufio.NewReader(f), d.Strict)
	if err != nil {
		return err
	}

	if d.Basic {
		programs, err := microdrive.Programs(cart)
		if err != nil {
			return err
		}
		for _, p := range programs {
			src, err := p.Source()
			if err != nil {
				return err
			}
			fmt.Print(src)
		}
	} else {
		cart.Emit(os.Stdout)
		fmt.Println()
	}

	return nil
}
