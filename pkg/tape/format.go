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
	"fmt"
	"io"
)

// Writer interface for wrapping a flat program buffer into a container
type Writer interface {
	Write(out io.Writer, name string, autostart int, prog []byte) error
}

// Reader interface for extracting programs from a container; when strict
// is set, checksum mismatches fail the parse instead of warning
type Reader interface {
	Read(in io.Reader, strict bool) ([]*Program, error)
}

// ReaderWriter interface for both directions of a container format
type ReaderWriter interface {
	Reader
	Writer
}

//
func NewFormat(typ string) (ReaderWriter, error) {

	switch typ {

	case "tap":
		return NewTAP(), nil

	case "tzx":
		return NewTZX(), nil

	case "rs232":
		return NewRS232(), nil

	case "raw", "bin":
		return NewRaw(), nil

	default:
		return nil, fmt.Errorf("unsupported tape format: %s", typ)
	}
}
