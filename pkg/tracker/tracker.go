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
	"slices"

	"github.com/hashicorp/go-multierror"
	idset "github.com/intel/goresctrl/pkg/utils"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/tracker"
	logger "github.com/chipmap/chipmap/pkg/log"
	"github.com/chipmap/chipmap/pkg/machine"
	"github.com/chipmap/chipmap/pkg/utils/cpuset"
)

var (
	log     = logger.Get("tracker")
	details = logger.Get("tracker-details")
)

const (
	// ForeachDone as a return value terminates iteration by a Foreach* function.
	ForeachDone = false
	// ForeachMore as a return value continues iteration by a Foreach* function.
	ForeachMore = !ForeachDone
)

// Tracker tracks the resources of a machine during a placement run.
type Tracker struct {
	machine      *machine.Machine
	horizon      int64
	prealloc     *Preallocated
	chips        []*chipState
	byID         map[machine.ChipID]*chipState
	available    map[machine.ChipID]struct{}
	pools        map[string]idset.IDSet
	ipTags       map[tagKey]*PhysicalTag
	byTraffic    map[trafficKey][]*PhysicalTag
	reverseTags  map[tagKey]*reverseTag
	reversePorts map[portKey]struct{}
}

// Preallocated is an inventory of resources reserved before tracking
// starts. These are never handed out nor given back by allocation.
type Preallocated struct {
	// SDRAM is reserved on every chip.
	SDRAM int64
	// Cores is the number of processors reserved on every chip.
	Cores int
	// Chips lists reservations on single chips.
	Chips []PreallocatedChip
	// Tags lists reserved board tags.
	Tags []TagBinding
}

// PreallocatedChip describes resources reserved on a single chip.
type PreallocatedChip struct {
	Chip       machine.ChipID
	SDRAM      int64
	Cores      int
	Processors []int
}

// Option is an opaque option for a Tracker.
type Option func(*Tracker) error

// WithHorizon sets the number of timesteps per-timestep SDRAM demand is
// planned for.
func WithHorizon(horizon int64) Option {
	return func(t *Tracker) error {
		if horizon < 0 {
			return fmt.Errorf("negative horizon %d", horizon)
		}
		t.horizon = horizon
		return nil
	}
}

// WithPreallocated sets the inventory of preallocated resources.
func WithPreallocated(p *Preallocated) Option {
	return func(t *Tracker) error {
		if p == nil {
			p = &Preallocated{}
		}
		t.prealloc = p
		return nil
	}
}

// WithConfig applies the given tracker configuration.
func WithConfig(cfg *cfgapi.Config) Option {
	return func(t *Tracker) error {
		if cfg == nil {
			return nil
		}
		if err := WithHorizon(cfg.Horizon)(t); err != nil {
			return err
		}
		if cfg.Preallocated == nil {
			return nil
		}

		pc := cfg.Preallocated
		p := &Preallocated{
			Cores: pc.CoresAllChips,
		}
		if pc.SDRAMAllChips != nil {
			p.SDRAM = pc.SDRAMAllChips.Value()
		}
		for _, c := range pc.Chips {
			pre := PreallocatedChip{
				Chip:       machine.ChipID{X: c.X, Y: c.Y},
				Cores:      c.Cores,
				Processors: slices.Clone(c.Processors),
			}
			if c.SDRAM != nil {
				pre.SDRAM = c.SDRAM.Value()
			}
			p.Chips = append(p.Chips, pre)
		}
		for _, tag := range pc.Tags {
			p.Tags = append(p.Tags, TagBinding{Board: tag.Board, Tag: tag.Tag})
		}

		return WithPreallocated(p)(t)
	}
}

// New creates a tracker for the given machine.
func New(m *machine.Machine, options ...Option) (*Tracker, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil machine", ErrFailedOption)
	}

	t := &Tracker{
		machine:      m,
		prealloc:     &Preallocated{},
		byID:         make(map[machine.ChipID]*chipState, m.Len()),
		available:    make(map[machine.ChipID]struct{}, m.Len()),
		pools:        make(map[string]idset.IDSet),
		ipTags:       make(map[tagKey]*PhysicalTag),
		byTraffic:    make(map[trafficKey][]*PhysicalTag),
		reverseTags:  make(map[tagKey]*reverseTag),
		reversePorts: make(map[portKey]struct{}),
	}

	for _, o := range options {
		if err := o(t); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedOption, err)
		}
	}

	for _, chip := range m.Chips() {
		board, _ := m.BoardAddress(chip.ID())
		cs := newChipState(chip, board)
		t.chips = append(t.chips, cs)
		t.byID[chip.ID()] = cs
	}

	if err := t.applyPreallocated(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOption, err)
	}

	for _, cs := range t.chips {
		if cs.freeCores() > 0 {
			t.available[cs.id()] = struct{}{}
		}
	}

	log.Info("tracking %d chips (%d available), horizon %d", len(t.chips), len(t.available), t.horizon)
	t.DumpState()

	return t, nil
}

// applyPreallocated validates the preallocated inventory and applies it,
// reporting every problem found.
func (t *Tracker) applyPreallocated() error {
	var (
		p    = t.prealloc
		errs *multierror.Error
	)

	if p.SDRAM < 0 || p.Cores < 0 {
		errs = multierror.Append(errs, fmt.Errorf("negative preallocation on all chips"))
	}

	for _, cs := range t.chips {
		cs.sdramPre += p.SDRAM
		cs.reserved += p.Cores
	}

	for _, pc := range p.Chips {
		cs, ok := t.byID[pc.Chip]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("preallocation on unknown chip %s", pc.Chip))
			continue
		}
		if pc.SDRAM < 0 || pc.Cores < 0 {
			errs = multierror.Append(errs, fmt.Errorf("negative preallocation on chip %s", pc.Chip))
			continue
		}
		cs.sdramPre += pc.SDRAM
		cs.reserved += pc.Cores
		for _, id := range pc.Processors {
			if !cs.free.Contains(id) {
				errs = multierror.Append(errs, fmt.Errorf("can't preallocate processor %d of chip %s",
					id, pc.Chip))
				continue
			}
			cs.free = cs.free.Difference(cpuset.New(id))
			cs.preallocated = cs.preallocated.Union(cpuset.New(id))
		}
	}

	for _, cs := range t.chips {
		if cs.freeCores() < 0 {
			errs = multierror.Append(errs, fmt.Errorf("chip %s has only %d user processors, %d preallocated",
				cs.id(), cs.free.Size()+cs.preallocated.Size(), cs.reserved+cs.preallocated.Size()))
		}
		if cs.freeSDRAM() < 0 {
			errs = multierror.Append(errs, fmt.Errorf("chip %s has only %s SDRAM, %s preallocated",
				cs.id(), prettySize(cs.chip.SDRAM()), prettySize(cs.sdramPre)))
		}
	}

	for _, b := range p.Tags {
		chip, ok := t.machine.BoardChip(b.Board)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("tag preallocation on unknown board %s", b.Board))
			continue
		}
		if !slices.Contains(chip.TagIDs(), b.Tag) {
			errs = multierror.Append(errs, fmt.Errorf("board %s has no tag %d", b.Board, b.Tag))
		}
	}

	return errs.ErrorOrNil()
}

// Machine returns the machine of the tracker.
func (t *Tracker) Machine() *machine.Machine {
	return t.machine
}

// Horizon returns the number of timesteps SDRAM is planned for.
func (t *Tracker) Horizon() int64 {
	return t.horizon
}

// Clone returns an independent copy of the tracker. Allocations made
// before cloning can be unallocated from either copy.
func (t *Tracker) Clone() *Tracker {
	c := &Tracker{
		machine:      t.machine,
		horizon:      t.horizon,
		prealloc:     t.prealloc,
		byID:         make(map[machine.ChipID]*chipState, len(t.byID)),
		available:    make(map[machine.ChipID]struct{}, len(t.available)),
		pools:        make(map[string]idset.IDSet, len(t.pools)),
		ipTags:       make(map[tagKey]*PhysicalTag, len(t.ipTags)),
		byTraffic:    make(map[trafficKey][]*PhysicalTag, len(t.byTraffic)),
		reverseTags:  make(map[tagKey]*reverseTag, len(t.reverseTags)),
		reversePorts: make(map[portKey]struct{}, len(t.reversePorts)),
	}

	for _, cs := range t.chips {
		cc := cs.clone()
		c.chips = append(c.chips, cc)
		c.byID[cc.id()] = cc
	}
	for id := range t.available {
		c.available[id] = struct{}{}
	}
	for board, ids := range t.pools {
		c.pools[board] = ids.Clone()
	}
	for tk, tags := range t.byTraffic {
		for _, p := range tags {
			cp := p.clone()
			c.ipTags[tagKey{cp.Board, cp.Tag}] = cp
			c.byTraffic[tk] = append(c.byTraffic[tk], cp)
		}
	}
	for key, rt := range t.reverseTags {
		c.reverseTags[key] = rt
	}
	for key := range t.reversePorts {
		c.reversePorts[key] = struct{}{}
	}

	return c
}

// ForeachChip calls fn with the id of each chip, in registration order,
// until fn returns ForeachDone.
func (t *Tracker) ForeachChip(fn func(machine.ChipID) bool) {
	for _, cs := range t.chips {
		if fn(cs.id()) == ForeachDone {
			return
		}
	}
}
