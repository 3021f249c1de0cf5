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
	"strings"

	log "github.com/sirupsen/logrus"
)

/*
	RepairPolicy selects what to do with sectors whose checksums do not
	verify: the Fix policies recompute and overwrite the respective
	checksum, AcceptErrors keeps the sector untouched despite the
	mismatch. Without a policy, defective sectors are discarded (strict)
	or kept with a warning.
*/
type RepairPolicy int

const (
	RepairNone RepairPolicy = 0

	FixHeader RepairPolicy = 1 << iota
	FixRecord
	FixData
	AcceptErrors
)

// ParsePolicy turns a comma separated policy list, e.g. "header,data",
// into a repair policy.
func ParsePolicy(policies string) (RepairPolicy, error) {

	policy := RepairNone

	for _, s := range strings.Split(policies, ",") {

		switch strings.TrimSpace(strings.ToLower(s)) {
		case "":
		case "header":
			policy |= FixHeader
		case "record":
			policy |= FixRecord
		case "data":
			policy |= FixData
		case "accept":
			policy |= AcceptErrors
		default:
			return RepairNone, fmt.Errorf("unknown repair policy: %s", s)
		}
	}

	return policy, nil
}

//
func (p RepairPolicy) has(flag RepairPolicy) bool {
	return p&flag != 0
}

// repairHeader tries to resolve a header validation failure under the
// policy; it reports whether the sector may be kept.
func (p RepairPolicy) repairHeader(h *Header, err error) bool {

	if p.has(FixHeader) {
		log.Debugf("fixing header checksum: %v", err)
		h.FixChecksum()
		return true
	}
	return p.has(AcceptErrors)
}

// repairRecord tries to resolve a record validation failure under the
// policy; it reports whether the sector may be kept.
func (p RepairPolicy) repairRecord(r *Record, err error) bool {

	fixed := false

	if p.has(FixRecord) {
		log.Debugf("fixing record descriptor checksum: %v", err)
		r.FixDescriptorChecksum()
		fixed = true
	}
	if p.has(FixData) {
		log.Debugf("fixing record data checksum: %v", err)
		r.FixDataChecksum()
		fixed = true
	}

	if fixed {
		return r.Validate() == nil || p.has(AcceptErrors)
	}
	return p.has(AcceptErrors)
}
