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
	"io"
	"io/ioutil"

	"github.com/tapeworks/bastap/pkg/basic"
)

// Raw passes the flat token buffer through without container framing.
// Reading yields a single nameless program.
type Raw struct{}

//
func NewRaw() *Raw {
	return &Raw{}
}

//
func (r *Raw) Write(out io.Writer, name string, autostart int,
	prog []byte) error {
	_, err := out.Write(prog)
	return err
}

//
func (r *Raw) Read(in io.Reader, strict bool) ([]*Program, error) {

	data, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, err
	}

	return []*Program{{
		Header: Header{
			FileType:  FileTypeProgram,
			Length:    len(data),
			AutoStart: basic.NoAutoStart,
			VarsOff:   len(data),
		},
		Data: data,
	}}, nil
}
