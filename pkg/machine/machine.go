// Copyright The ChipMap Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package machine describes the static topology resources are allocated
// from: chips with their processors and SDRAM, grouped into boards by
// their nearest Ethernet-connected chip.
package machine

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidMachine is returned for inconsistent machine descriptions.
	ErrInvalidMachine = fmt.Errorf("machine: invalid machine")
)

// Machine is an immutable set of chips. Chips keep the order they were
// registered in.
type Machine struct {
	chips    []*Chip
	byID     map[ChipID]*Chip
	boards   map[string]*Chip
	ethernet []*Chip
}

// New creates a machine of the given chips, checking their consistency.
func New(chips ...*Chip) (*Machine, error) {
	m := &Machine{
		byID:   make(map[ChipID]*Chip, len(chips)),
		boards: make(map[string]*Chip),
	}

	var errs *multierror.Error

	for _, c := range chips {
		if c == nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: nil chip", ErrInvalidMachine))
			continue
		}
		if _, ok := m.byID[c.id]; ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: duplicate chip %s", ErrInvalidMachine, c.id))
			continue
		}
		if err := c.validate(); err != nil {
			errs = multierror.Append(errs, err)
		}

		m.chips = append(m.chips, c)
		m.byID[c.id] = c

		if c.IsEthernet() {
			if other, ok := m.boards[c.ipAddress]; ok {
				errs = multierror.Append(errs, fmt.Errorf("%w: chips %s and %s share IP address %s",
					ErrInvalidMachine, other.id, c.id, c.ipAddress))
				continue
			}
			m.boards[c.ipAddress] = c
			m.ethernet = append(m.ethernet, c)
		}
	}

	for _, c := range m.chips {
		eth, ok := m.byID[c.ethernet]
		switch {
		case !ok:
			errs = multierror.Append(errs, fmt.Errorf("%w: chip %s has unknown Ethernet chip %s",
				ErrInvalidMachine, c.id, c.ethernet))
		case !eth.IsEthernet():
			errs = multierror.Append(errs, fmt.Errorf("%w: Ethernet chip %s of chip %s has no IP address",
				ErrInvalidMachine, eth.id, c.id))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return m, nil
}

func (c *Chip) validate() error {
	if c.sdram < 0 {
		return fmt.Errorf("%w: chip %s has negative SDRAM %d", ErrInvalidMachine, c.id, c.sdram)
	}
	seen := map[int]struct{}{}
	for _, p := range c.processors {
		if _, ok := seen[p.ID]; ok || p.ID < 0 {
			return fmt.Errorf("%w: chip %s has invalid or duplicate processor %d",
				ErrInvalidMachine, c.id, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Chips returns all chips in registration order.
func (m *Machine) Chips() []*Chip {
	return slices.Clone(m.chips)
}

// Len returns the number of chips.
func (m *Machine) Len() int {
	return len(m.chips)
}

// Chip returns the chip with the given coordinates.
func (m *Machine) Chip(id ChipID) (*Chip, bool) {
	c, ok := m.byID[id]
	return c, ok
}

// ChipAt returns the chip at (x,y).
func (m *Machine) ChipAt(x, y int) (*Chip, bool) {
	return m.Chip(ChipID{X: x, Y: y})
}

// EthernetChips returns the Ethernet-connected chips in registration order.
func (m *Machine) EthernetChips() []*Chip {
	return slices.Clone(m.ethernet)
}

// Boards returns the IP addresses of all boards in registration order.
func (m *Machine) Boards() []string {
	boards := make([]string, 0, len(m.ethernet))
	for _, c := range m.ethernet {
		boards = append(boards, c.ipAddress)
	}
	return boards
}

// BoardChip returns the Ethernet chip of the board with the given address.
func (m *Machine) BoardChip(ip string) (*Chip, bool) {
	c, ok := m.boards[ip]
	return c, ok
}

// BoardAddress returns the IP address of the board of the given chip.
func (m *Machine) BoardAddress(id ChipID) (string, bool) {
	c, ok := m.byID[id]
	if !ok {
		return "", false
	}
	return m.byID[c.ethernet].ipAddress, true
}

// ForeachChip calls fn for each chip in registration order until fn
// returns false.
func (m *Machine) ForeachChip(fn func(*Chip) bool) {
	for _, c := range m.chips {
		if !fn(c) {
			return
		}
	}
}

// Distance returns the number of hops between two chips of a hexagonal
// mesh with links along x, along y, and diagonally along x=y.
func Distance(a, b ChipID) int {
	dx, dy := b.X-a.X, b.Y-a.Y
	if (dx >= 0) == (dy >= 0) || dx == 0 || dy == 0 {
		return max(abs(dx), abs(dy))
	}
	return abs(dx) + abs(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
