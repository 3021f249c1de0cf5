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

package main

import (
	"fmt"
	"os"

	"github.com/tapeworks/bastap/pkg/run"
)

//
var BasTapVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: bastap {convert|ls|dump|send|receive|serve|version} ...

run 'bastap {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nBasTap %s\n\n", BasTapVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "convert":
		run.DieOnError(run.NewConvert().Execute(args))

	case "ls":
		run.DieOnError(run.NewList().Execute(args))

	case "dump":
		run.DieOnError(run.NewDump().Execute(args))

	case "send":
		run.DieOnError(run.NewSend().Execute(args))

	case "receive":
		run.DieOnError(run.NewReceive().Execute(args))

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
