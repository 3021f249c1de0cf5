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
	"strconv"

	"github.com/tapeworks/bastap/pkg/microdrive"
)

//
func NewList() *List {

	l := &List{}
	l.Runner = *NewRunner(
		"ls -i|--input {file} [--format {format}] [--strict]",
		"list the programs in a container file",
		`
Use the ls command to list the programs stored in a tape or cartridge
container file. For Microdrive cartridges, the cartridge directory is
shown as well. When the format flag is omitted, the format is derived
from the file extension.`,
		runnerHelpEpilogue, l.Run)

	l.AddSetting(&l.File, "input", "i", "", nil, "container file", true)
	l.AddSetting(&l.Format, "format", "", "BASTAP_FORMAT", "",
		"container format: tap|tzx|mdr|rs232|raw", false)
	l.AddSetting(&l.Strict, "strict", "", "", false,
		"turn recoverable container defects into errors", false)

	return l
}

//
type List struct {
	//
	Runner
	//
	File   string
	Format string
	Strict bool
}

//
func (l *List) Run() error {

	l.ParseSettings()

	format := l.Format
	if format == "" {
		format = getExtension(l.File)
	}

	if format == "mdr" {
		f, err := os.Open(l.File)
		if err != nil {
			return err
		}
		defer f.Close()

		cart, err := microdrive.NewMDR().Read(bufio.NewReader(f), l.Strict)
		if err != nil {
			return err
		}
		cart.List(os.Stdout)
		return nil
	}

	programs, err := readPrograms(l.File, format, l.Strict)
	if err != nil {
		return err
	}

	fmt.Printf("\n%-10s  %-7s  %6s  %s\n", "NAME", "TYPE", "BYTES", "START")
	for _, p := range programs {
		start := "-"
		if p.Header.AutoStart >= 0 {
			start = strconv.Itoa(p.Header.AutoStart)
		}
		fmt.Printf("%-10s  %-7d  %6d  %s\n",
			p.Header.Name, p.Header.FileType, p.Header.Length, start)
	}
	fmt.Println()

	return nil
}
