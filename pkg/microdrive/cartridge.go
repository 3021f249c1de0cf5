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

package microdrive

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// sector numbers range from 1 through 254; sector 254 is stored first
const SectorCount = 254

/*
	Cartridge is a full Microdrive cartridge: 254 sectors in storage
	order, i.e. slot 0 holds sector 254 and the last slot sector 1, plus
	the write protection flag. Unformatted slots are nil.
*/
type Cartridge struct {
	name           string
	sectors        []*Sector
	writeProtected bool
	modified       bool
}

//
func NewCartridge() *Cartridge {
	return &Cartridge{sectors: make([]*Sector, SectorCount)}
}

// FormatCartridge creates a cartridge with all sectors formatted blank
// under the given cartridge name.
func FormatCartridge(name string) *Cartridge {

	c := NewCartridge()
	c.name = name

	for slot := 0; slot < SectorCount; slot++ {
		c.sectors[slot] = NewSector(
			NewHeaderFor(sectorFor(slot), name), NewBlankRecord())
	}

	c.modified = true
	return c
}

//
func (c *Cartridge) Name() string {
	return c.name
}

//
func (c *Cartridge) SectorCount() int {
	return len(c.sectors)
}

// SectorAt returns the sector in storage slot ix, nil when the slot is
// not formatted.
func (c *Cartridge) SectorAt(ix int) *Sector {
	if 0 <= ix && ix < len(c.sectors) {
		return c.sectors[ix]
	}
	return nil
}

//
func (c *Cartridge) SetSectorAt(ix int, s *Sector) {
	if 0 <= ix && ix < len(c.sectors) {
		c.sectors[ix] = s
		if s != nil && strings.TrimSpace(s.Name()) != "" {
			c.name = strings.TrimRight(s.Name(), " ")
		}
		c.modified = true
	}
}

// sectorFor maps a storage slot to its sector number (254..1); the
// mapping is its own inverse.
func sectorFor(slot int) int {
	return SectorCount - slot
}

//
func (c *Cartridge) IsFormatted() bool {
	for _, s := range c.sectors {
		if s != nil {
			return true
		}
	}
	return false
}

//
func (c *Cartridge) IsWriteProtected() bool {
	return c.writeProtected
}

//
func (c *Cartridge) SetWriteProtected(p bool) {
	c.writeProtected = p
}

//
func (c *Cartridge) IsModified() bool {
	return c.modified
}

//
func (c *Cartridge) SetModified(m bool) {
	c.modified = m
}

// FreeSlots lists the storage slots whose records are unused, in storage
// order.
func (c *Cartridge) FreeSlots() []int {
	var free []int
	for ix, s := range c.sectors {
		if s != nil && s.Record() != nil && !s.Record().Used() {
			free = append(free, ix)
		}
	}
	return free
}

// List writes a directory of the cartridge's files with their sizes.
func (c *Cartridge) List(w io.Writer) {

	fmt.Fprintf(w, "\n%s\n\n", c.Name())

	dir := make(map[string]int)
	used := 0

	for _, sec := range c.sectors {
		if sec == nil || sec.Record() == nil || !sec.Record().Used() {
			continue
		}
		used++
		name := strings.TrimRight(sec.Record().Name(), " ")
		if name == "" {
			continue
		}
		dir[name] += sec.Record().Length()
	}

	var files []string
	for f := range dir {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		fmt.Fprintf(w, "%-16s%d\n", f, dir[f])
	}

	fmt.Fprintf(w, "\n%d of %d sectors used (%dkb free)\n\n",
		used, c.SectorCount(), (c.SectorCount()-used)/2)
}

//
func (c *Cartridge) Emit(w io.Writer) {
	for _, sec := range c.sectors {
		if sec != nil {
			sec.Emit(w)
		}
	}
}
