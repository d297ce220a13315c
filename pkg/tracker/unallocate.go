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

// UnallocateResources releases resources allocated earlier for a unit on
// the given chip and processor. The IP tag and reverse IP tag bindings
// must be the ones returned by the allocation. The binding is checked
// as a whole before anything is released. If any part of it is not
// currently allocated, ErrInvariantViolation is returned and the tracker
// is left unchanged.
func (t *Tracker) UnallocateResources(chip machine.ChipID, processor int, req *Resources, ipTags, reverseIPTags []TagBinding) error {
	if req == nil {
		return invalidRequest("nil resources")
	}
	return t.unallocate(chip, processor, req.SDRAM.Total(t.horizon), ipTags, reverseIPTags)
}

// Unallocate releases the resources of the given allocation.
func (t *Tracker) Unallocate(a *Allocation) error {
	if a == nil {
		return invalidRequest("nil allocation")
	}
	return t.unallocate(a.Chip, a.Processor, a.SDRAM, a.IPTags, a.ReverseIPTags)
}

func (t *Tracker) unallocate(chip machine.ChipID, processor int, sdram int64, ipTags, reverseIPTags []TagBinding) error {
	cs, ok := t.byID[chip]
	if !ok {
		return invariantViolation("unknown chip %s", chip)
	}
	if !cs.allocated.Contains(processor) {
		return invariantViolation("processor %d of chip %s is not allocated", processor, chip)
	}
	if sdram < 0 || sdram > cs.sdramUsed {
		return invariantViolation("releasing %s SDRAM of chip %s with %s in use",
			prettySize(sdram), chip, prettySize(cs.sdramUsed))
	}

	refs := map[tagKey]int{}
	for _, b := range ipTags {
		key := tagKey{b.Board, b.Tag}
		p, ok := t.ipTags[key]
		if !ok {
			return invariantViolation("IP tag %s is not allocated", b)
		}
		refs[key]++
		if refs[key] > p.refs {
			return invariantViolation("IP tag %s released more times than acquired", b)
		}
	}

	seen := map[tagKey]struct{}{}
	for _, b := range reverseIPTags {
		key := tagKey{b.Board, b.Tag}
		if _, ok := t.reverseTags[key]; !ok {
			return invariantViolation("reverse IP tag %s is not allocated", b)
		}
		if _, ok := seen[key]; ok {
			return invariantViolation("reverse IP tag %s released twice", b)
		}
		seen[key] = struct{}{}
	}

	cs.release(processor, sdram)
	if cs.freeCores() > 0 {
		t.available[chip] = struct{}{}
	}

	for _, b := range ipTags {
		p := t.ipTags[tagKey{b.Board, b.Tag}]
		if p.release() {
			t.delIPTag(p)
			log.Debug("  released IP tag %s", b)
		}
	}
	for _, b := range reverseIPTags {
		t.delReverseIPTag(b)
		log.Debug("  released reverse IP tag %s", b)
	}

	log.Debug("unallocated %s/%d, SDRAM %s", chip, processor, prettySize(sdram))
	t.DumpState("after unallocation: ")

	return nil
}
