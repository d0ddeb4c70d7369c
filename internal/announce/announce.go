// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package announce decides whether a resolved address is announced and which of its components
// are spoken.
package announce

import (
	"github.com/wneessen/motoguide/internal/address"
	"github.com/wneessen/motoguide/internal/vartype"
)

// Settings controls which components are repeated when they did not change since the last
// announcement.
type Settings struct {
	RepeatStreet             bool
	RepeatTown               bool
	RepeatCounty             bool
	RepeatAdministrativeArea bool
}

// Inclusion returns the repeat flags as an inclusion set.
func (s Settings) Inclusion() address.Inclusion {
	return address.Inclusion{
		Street:             s.RepeatStreet,
		Town:               s.RepeatTown,
		County:             s.RepeatCounty,
		AdministrativeArea: s.RepeatAdministrativeArea,
	}
}

// Decision is the outcome of Detector.Evaluate.
type Decision struct {
	Announce  bool
	Inclusion address.Inclusion
}

// Detector remembers the last announced address. It is not safe for concurrent use.
type Detector struct {
	previous vartype.Variable[address.Address]
}

// Evaluate compares current with the previously announced address. Components whose repeat flag
// is off are still included when they changed. Without a previous address only the repeat flags
// apply. An address equal to the previous one is not announced and leaves the detector
// untouched, any other address becomes the new previous address.
func (d *Detector) Evaluate(current address.Address, settings Settings) Decision {
	inc := settings.Inclusion()
	previous, ok := d.previous.Get()
	if ok {
		inc.Street = inc.Street || previous.Street != current.Street
		inc.Town = inc.Town || previous.Town != current.Town
		inc.County = inc.County || previous.County != current.County
		inc.AdministrativeArea = inc.AdministrativeArea || previous.AdministrativeArea != current.AdministrativeArea
	}

	if ok && previous == current {
		return Decision{Inclusion: inc}
	}
	d.previous.Set(current)
	return Decision{Announce: true, Inclusion: inc}
}

// Previous returns the last announced address, if any.
func (d *Detector) Previous() (address.Address, bool) {
	return d.previous.Get()
}

// Reset forgets the last announced address.
func (d *Detector) Reset() {
	d.previous.Reset()
}
