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
	"path/filepath"
	"strings"

	"github.com/tapeworks/bastap/pkg/microdrive"
	"github.com/tapeworks/bastap/pkg/tape"
)

//
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified, overrides an environment variable.
`

/*
	NewRunner creates a base runner for commands to use. The parameters
	are passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(use, short, long, helpEpilogue, exec),
	}
}

//
type Runner struct {
	Command
}

//
func getExtension(file string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
}

// readPrograms parses any supported container file into its programs.
func readPrograms(file, format string, strict bool) ([]*tape.Program, error) {

	if format == "" {
		format = getExtension(file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in := bufio.NewReader(f)

	if format == "mdr" {
		cart, err := microdrive.NewMDR().Read(in, strict)
		if err != nil {
			return nil, err
		}
		return microdrive.Programs(cart)
	}

	form, err := tape.NewFormat(format)
	if err != nil {
		return nil, err
	}
	return form.Read(in, strict)
}

// writeFile writes data to file, asking for confirmation before
// overwriting unless force is set.
func writeFile(file string, data []byte, force bool) error {

	if !force {
		if _, err := os.Stat(file); err == nil {
			if !GetUserConfirmation(
				fmt.Sprintf("%s exists, overwrite?", file)) {
				return fmt.Errorf("aborted")
			}
		}
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}
