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

package tracker

import (
	"fmt"

	"github.com/chipmap/chipmap/pkg/machine"
)

// Constraint restricts where a unit can be placed. It is one of
// ChipAndCore, Board or RadialFromChip.
type Constraint interface {
	fmt.Stringer
	isConstraint()
}

// ChipAndCore pins a unit to a chip, and optionally to a processor.
type ChipAndCore struct {
	X         int
	Y         int
	Processor *int
}

// Board pins a unit to the board with the given IP address.
type Board struct {
	Address string
}

// RadialFromChip makes chips closer to the given chip preferred.
type RadialFromChip struct {
	X int
	Y int
}

// OnChip returns a constraint pinning a unit to chip (x,y).
func OnChip(x, y int) ChipAndCore {
	return ChipAndCore{X: x, Y: y}
}

// OnCore returns a constraint pinning a unit to processor p of chip (x,y).
func OnCore(x, y, p int) ChipAndCore {
	return ChipAndCore{X: x, Y: y, Processor: &p}
}

func (ChipAndCore) isConstraint()    {}
func (Board) isConstraint()          {}
func (RadialFromChip) isConstraint() {}

func (c ChipAndCore) String() string {
	if c.Processor == nil {
		return fmt.Sprintf("chip (%d,%d)", c.X, c.Y)
	}
	return fmt.Sprintf("core (%d,%d)/%d", c.X, c.Y, *c.Processor)
}

func (c Board) String() string {
	return "board " + c.Address
}

func (c RadialFromChip) String() string {
	return fmt.Sprintf("radial from (%d,%d)", c.X, c.Y)
}

// pins are the merged placement constraints of a request.
type pins struct {
	chip      *machine.ChipID
	processor *int
	board     string
	radial    *machine.ChipID
	chips     []machine.ChipID
	hasChips  bool
}

// add merges a constraint. The first constraint of each kind wins and
// any later one of the same kind must agree with it.
func (p *pins) add(c Constraint) error {
	switch c := c.(type) {
	case ChipAndCore:
		id := machine.ChipID{X: c.X, Y: c.Y}
		if err := p.setChip(id); err != nil {
			return err
		}
		if c.Processor != nil {
			return p.setProcessor(*c.Processor)
		}
	case Board:
		return p.setBoard(c.Address)
	case RadialFromChip:
		return p.setRadial(machine.ChipID{X: c.X, Y: c.Y})
	case nil:
		return invalidConstraint("nil constraint")
	default:
		return invalidConstraint("unknown constraint %T", c)
	}
	return nil
}

func (p *pins) setChip(id machine.ChipID) error {
	if p.chip != nil && *p.chip != id {
		return invalidConstraint("conflicting chips %s and %s", *p.chip, id)
	}
	p.chip = &id
	return nil
}

func (p *pins) setProcessor(id int) error {
	if p.processor != nil && *p.processor != id {
		return invalidConstraint("conflicting processors %d and %d", *p.processor, id)
	}
	p.processor = &id
	return nil
}

func (p *pins) setRadial(id machine.ChipID) error {
	if p.radial != nil && *p.radial != id {
		return invalidConstraint("conflicting radial constraints %s and %s", *p.radial, id)
	}
	p.radial = &id
	return nil
}

func (p *pins) setBoard(address string) error {
	if p.board != "" && p.board != address {
		return invalidConstraint("conflicting boards %s and %s", p.board, address)
	}
	p.board = address
	return nil
}

// mergeGroup merges the chip, board and radial pins of a group member
// into the pins of the whole group.
func (p *pins) mergeGroup(m *pins) error {
	if m.chip != nil {
		if err := p.setChip(*m.chip); err != nil {
			return err
		}
	}
	if m.board != "" {
		if err := p.setBoard(m.board); err != nil {
			return err
		}
	}
	if m.radial != nil {
		return p.setRadial(*m.radial)
	}
	return nil
}

func (p *pins) String() string {
	s := ""
	if p.chip != nil {
		s += " chip " + p.chip.String()
	}
	if p.processor != nil {
		s += fmt.Sprintf(" processor %d", *p.processor)
	}
	if p.board != "" {
		s += " board " + p.board
	}
	if p.radial != nil {
		s += " near " + p.radial.String()
	}
	if s == "" {
		return "unconstrained"
	}
	return s[1:]
}

// AllocOption is an option for an allocation or a query.
type AllocOption func(*pins) error

// WithChips restricts candidate chips to the given ones, tried in the
// given order.
func WithChips(ids ...machine.ChipID) AllocOption {
	return func(p *pins) error {
		p.chips = append(p.chips, ids...)
		p.hasChips = true
		return nil
	}
}

// WithProcessor pins the allocation to the given processor id.
func WithProcessor(id int) AllocOption {
	return func(p *pins) error {
		return p.setProcessor(id)
	}
}

// WithBoard pins the allocation to the board with the given IP address.
func WithBoard(address string) AllocOption {
	return func(p *pins) error {
		return p.setBoard(address)
	}
}

func mergePins(constraints []Constraint, options []AllocOption) (*pins, error) {
	p := &pins{}
	for _, c := range constraints {
		if err := p.add(c); err != nil {
			return nil, err
		}
	}
	for _, o := range options {
		if err := o(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}
