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
	"github.com/chipmap/chipmap/pkg/machine"
)

// Headroom is the largest amount of each resource attainable by a single
// unit on any one candidate chip. The maxima of different resources may
// come from different chips.
type Headroom struct {
	SDRAM     int64
	DTCM      int64
	CPUCycles int64
	Cores     int
}

// GetMaximumResourcesAvailable returns the headroom of the candidate
// chips. If req is given, only chips which can also provide its tags are
// considered. The SDRAM demand of req is ignored.
func (t *Tracker) GetMaximumResourcesAvailable(req *Resources, options ...AllocOption) (*Headroom, error) {
	return t.GetMaximumConstrainedResourcesAvailable(req, nil, options...)
}

// GetMaximumConstrainedResourcesAvailable returns the headroom of the
// candidate chips matching the given constraints.
func (t *Tracker) GetMaximumConstrainedResourcesAvailable(req *Resources, constraints []Constraint, options ...AllocOption) (*Headroom, error) {
	if req == nil {
		req = &Resources{}
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	p, err := mergePins(constraints, options)
	if err != nil {
		return nil, err
	}

	candidates, err := t.candidates(p)
	if err != nil {
		return nil, err
	}

	var (
		h        = &Headroom{}
		found    = false
		members  = []*member{{req: req, processor: p.processor}}
		rejected = map[string]int{}
	)

	for _, cs := range candidates {
		if _, ok := t.available[cs.id()]; !ok {
			continue
		}
		if pl, reason := t.plan(cs, members, p.board); pl == nil {
			rejected[reason]++
			continue
		}

		found = true
		h.SDRAM = max(h.SDRAM, cs.freeSDRAM())
		h.Cores = max(h.Cores, cs.freeCores())

		ids := cs.free.List()
		if p.processor != nil {
			ids = []int{*p.processor}
		}
		for _, id := range ids {
			if proc, ok := cs.chip.Processor(id); ok {
				h.DTCM = max(h.DTCM, proc.DTCM)
				h.CPUCycles = max(h.CPUCycles, proc.CPUCycles)
			}
		}
	}

	if !found {
		return nil, &UnavailableError{
			Members:    1,
			Rejected:   rejected,
			Candidates: t.diagnose(candidates),
			Machine:    t.diagnose(t.chips),
		}
	}

	return h, nil
}

// IsChipAvailable returns true if the chip has a free processor.
func (t *Tracker) IsChipAvailable(id machine.ChipID) bool {
	_, ok := t.available[id]
	return ok
}

// ChipsUsed returns the chips with at least one allocated processor, in
// registration order.
func (t *Tracker) ChipsUsed() []machine.ChipID {
	var used []machine.ChipID
	for _, cs := range t.chips {
		if !cs.allocated.IsEmpty() {
			used = append(used, cs.id())
		}
	}
	return used
}

// CoreUsage returns the processor usage of a chip.
func (t *Tracker) CoreUsage(id machine.ChipID) (CoreUsage, bool) {
	cs, ok := t.byID[id]
	if !ok {
		return CoreUsage{}, false
	}
	return cs.coreUsage(), true
}

// SDRAMUsage returns the SDRAM usage of a chip.
func (t *Tracker) SDRAMUsage(id machine.ChipID) (SDRAMUsage, bool) {
	cs, ok := t.byID[id]
	if !ok {
		return SDRAMUsage{}, false
	}
	return cs.sdramUsage(), true
}

// PhysicalTag returns a copy of the IP tag bound to the given board tag.
func (t *Tracker) PhysicalTag(board string, tag int) (PhysicalTag, bool) {
	p, ok := t.ipTags[tagKey{board, tag}]
	if !ok {
		return PhysicalTag{}, false
	}
	return *p.clone(), true
}

// IPTagsFor returns copies of the IP tags currently bound to the given
// IP address and traffic identifier.
func (t *Tracker) IPTagsFor(ipAddress, trafficIdentifier string) []PhysicalTag {
	key := IPTag{IPAddress: ipAddress, TrafficIdentifier: trafficIdentifier}.trafficKey()
	tags := make([]PhysicalTag, 0, len(t.byTraffic[key]))
	for _, p := range t.byTraffic[key] {
		tags = append(tags, *p.clone())
	}
	return tags
}

// FreeTags returns the sorted free tag ids of a board.
func (t *Tracker) FreeTags(board string) []int {
	return t.freeTagIDs(board).SortedMembers()
}

// MaxCoresAvailableOnAChip returns the largest number of free processors
// on any chip.
func (t *Tracker) MaxCoresAvailableOnAChip() int {
	n := 0
	for _, cs := range t.chips {
		n = max(n, cs.freeCores())
	}
	return n
}

// Diagnostics summarizes the resources left on the whole machine.
func (t *Tracker) Diagnostics() Diagnostics {
	return t.diagnose(t.chips)
}

func (t *Tracker) diagnose(chips []*chipState) Diagnostics {
	var (
		d      = Diagnostics{}
		boards = map[string]struct{}{}
	)

	for _, cs := range chips {
		if _, ok := t.available[cs.id()]; !ok {
			continue
		}
		d.Chips++
		d.FreeCores += cs.freeCores()
		d.MaxFreeSDRAM = max(d.MaxFreeSDRAM, cs.freeSDRAM())
		if _, ok := boards[cs.board]; !ok {
			boards[cs.board] = struct{}{}
			d.FreeTags += t.freeTagIDs(cs.board).Size()
		}
	}

	return d
}
