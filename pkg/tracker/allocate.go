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
	"sort"

	"github.com/chipmap/chipmap/pkg/machine"
)

// member is a single request of an allocation.
type member struct {
	req       *Resources
	processor *int
	sdram     int64
}

// plan is a feasible allocation of every member of a request on a chip.
// Planning does not modify the tracker, committing a plan does.
type plan struct {
	chip    *chipState
	procs   []int
	ipTags  [][]plannedTag
	revTags [][]TagBinding
}

// plannedTag is a tag for an IP tag request. Fresh tags get registered
// on commit. A non-nil narrow is the port a shared portless tag adopts.
type plannedTag struct {
	tag    *PhysicalTag
	fresh  bool
	narrow *int
}

// AllocateResources allocates resources for a single unit on the first
// candidate chip which can provide them.
func (t *Tracker) AllocateResources(req *Resources, options ...AllocOption) (*Allocation, error) {
	return t.AllocateConstrainedResources(req, nil, options...)
}

// AllocateConstrainedResources allocates resources for a single unit,
// honoring the given placement constraints.
func (t *Tracker) AllocateConstrainedResources(req *Resources, constraints []Constraint, options ...AllocOption) (*Allocation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	p, err := mergePins(constraints, options)
	if err != nil {
		return nil, err
	}

	members := []*member{
		{
			req:       req,
			processor: p.processor,
			sdram:     req.SDRAM.Total(t.horizon),
		},
	}

	allocs, err := t.allocate(members, p)
	if err != nil {
		return nil, err
	}

	return allocs[0], nil
}

// AllocateGroupResources allocates resources for a group of units which
// must all be placed on the same chip. Either every unit gets allocated
// or, on failure, nothing is. Constraints, if given, must hold a list of
// constraints for every request.
func (t *Tracker) AllocateGroupResources(reqs []*Resources, constraints [][]Constraint, options ...AllocOption) ([]*Allocation, error) {
	if len(reqs) == 0 {
		return nil, invalidRequest("empty group")
	}
	if constraints != nil && len(constraints) != len(reqs) {
		return nil, invalidRequest("%d constraint lists for %d requests", len(constraints), len(reqs))
	}

	group, err := mergePins(nil, options)
	if err != nil {
		return nil, err
	}
	if group.processor != nil {
		return nil, invalidRequest("processor option for a group")
	}

	members := make([]*member, 0, len(reqs))
	for i, req := range reqs {
		if err := req.validate(); err != nil {
			return nil, fmt.Errorf("group member #%d: %w", i, err)
		}

		var c []Constraint
		if constraints != nil {
			c = constraints[i]
		}
		p, err := mergePins(c, nil)
		if err != nil {
			return nil, fmt.Errorf("group member #%d: %w", i, err)
		}
		if err := group.mergeGroup(p); err != nil {
			return nil, fmt.Errorf("group member #%d: %w", i, err)
		}

		members = append(members, &member{
			req:       req,
			processor: p.processor,
			sdram:     req.SDRAM.Total(t.horizon),
		})
	}

	return t.allocate(members, group)
}

// allocate finds the first candidate chip which can host every member,
// then commits the allocation.
func (t *Tracker) allocate(members []*member, p *pins) ([]*Allocation, error) {
	candidates, err := t.candidates(p)
	if err != nil {
		return nil, err
	}

	log.Debug("allocating %d request(s), %s, %d candidate chips", len(members), p, len(candidates))

	rejected := map[string]int{}
	for _, cs := range candidates {
		if _, ok := t.available[cs.id()]; !ok {
			continue
		}

		pl, reason := t.plan(cs, members, p.board)
		if pl == nil {
			details.Debug("  - rejected %s: %s", cs.id(), reason)
			rejected[reason]++
			continue
		}

		allocs := t.commit(pl, members)
		for _, a := range allocs {
			log.Debug("  => allocated %s", a)
		}
		t.DumpState("after allocation: ")
		return allocs, nil
	}

	err = &UnavailableError{
		Members:    len(members),
		Rejected:   rejected,
		Candidates: t.diagnose(candidates),
		Machine:    t.diagnose(t.chips),
	}
	log.Debug("  => %v", err)

	return nil, err
}

// candidates returns the chips matching the pins in the order they
// should be tried.
func (t *Tracker) candidates(p *pins) ([]*chipState, error) {
	if p.board != "" {
		if _, ok := t.machine.BoardChip(p.board); !ok {
			return nil, invalidConstraint("unknown board %s", p.board)
		}
	}

	var chips []*chipState
	if p.hasChips {
		for _, id := range p.chips {
			cs, ok := t.byID[id]
			if !ok {
				return nil, invalidConstraint("unknown candidate chip %s", id)
			}
			chips = append(chips, cs)
		}
	} else {
		chips = t.chips
	}

	if p.chip != nil {
		cs, ok := t.byID[*p.chip]
		if !ok {
			return nil, invalidConstraint("unknown chip %s", *p.chip)
		}
		if p.board != "" && cs.board != p.board {
			return nil, invalidConstraint("chip %s is not on board %s", cs.id(), p.board)
		}
		for _, c := range chips {
			if c == cs {
				return []*chipState{cs}, nil
			}
		}
		return []*chipState{}, nil
	}

	filtered := make([]*chipState, 0, len(chips))
	for _, cs := range chips {
		if p.board == "" || cs.board == p.board {
			filtered = append(filtered, cs)
		}
	}

	if p.radial != nil {
		center := *p.radial
		sort.SliceStable(filtered, func(i, j int) bool {
			return machine.Distance(center, filtered[i].id()) < machine.Distance(center, filtered[j].id())
		})
	}

	return filtered, nil
}

// plan checks if every member fits on the chip together. It returns a
// plan if they do or the reason of rejection if they don't.
func (t *Tracker) plan(cs *chipState, members []*member, pinnedBoard string) (*plan, string) {
	pinned := make([]*int, 0, len(members))
	sdram := int64(0)
	for _, m := range members {
		pinned = append(pinned, m.processor)
		sdram += m.sdram
	}

	procs, reason := cs.pickProcessors(pinned)
	if procs == nil {
		return nil, reason
	}

	if sdram > cs.freeSDRAM() {
		return nil, "insufficient SDRAM"
	}

	var (
		ov = newTagOverlay()
		pl = &plan{
			chip:    cs,
			procs:   procs,
			ipTags:  make([][]plannedTag, len(members)),
			revTags: make([][]TagBinding, len(members)),
		}
	)

	for i, m := range members {
		for _, req := range m.req.IPTags {
			pt, ok := t.planIPTag(cs.board, pinnedBoard, req, ov)
			if !ok {
				return nil, "no free IP tag"
			}
			pl.ipTags[i] = append(pl.ipTags[i], pt)
		}
		for _, req := range m.req.ReverseIPTags {
			b, reason := t.planReverseIPTag(cs.board, req, ov)
			if reason != "" {
				return nil, reason
			}
			pl.revTags[i] = append(pl.revTags[i], b)
		}
	}

	return pl, ""
}

// commit applies a plan, turning it into allocations.
func (t *Tracker) commit(pl *plan, members []*member) []*Allocation {
	cs := pl.chip
	allocs := make([]*Allocation, 0, len(members))

	for i, m := range members {
		a := &Allocation{
			Chip:      cs.id(),
			Processor: pl.procs[i],
			SDRAM:     m.sdram,
		}

		cs.allocate(a.Processor, a.SDRAM)

		for _, pt := range pl.ipTags[i] {
			if pt.fresh {
				t.addIPTag(pt.tag)
			}
			if pt.narrow != nil && pt.tag.Port == nil {
				port := *pt.narrow
				pt.tag.Port = &port
				log.Debug("  IP tag %s narrowed to port %d", pt.tag.binding(), port)
			}
			pt.tag.acquire()
			a.IPTags = append(a.IPTags, pt.tag.binding())
		}
		for j, b := range pl.revTags[i] {
			t.addReverseIPTag(b, m.req.ReverseIPTags[j])
			a.ReverseIPTags = append(a.ReverseIPTags, b)
		}

		allocs = append(allocs, a)
	}

	if cs.freeCores() == 0 {
		delete(t.available, cs.id())
		log.Debug("chip %s is full", cs.id())
	}

	return allocs
}
