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

// Package intervals implements bookkeeping of reserved ranges in a 1-D
// address space, for instance a fixed-width routing key space. The
// Allocator does not pick addresses itself. Callers compute candidate
// ranges and the Allocator checks and books them. Reservations are
// permanent: there is no release and free runs are never merged back.
package intervals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	logger "github.com/chipmap/chipmap/pkg/log"
)

var (
	log = logger.Get("intervals")

	// ErrAllocationConflict is returned when a range is not fully free.
	ErrAllocationConflict = fmt.Errorf("intervals: allocation conflict")
	// ErrInvalidRange is returned for empty or overflowing ranges.
	ErrInvalidRange = fmt.Errorf("intervals: invalid range")
)

// Run is a half-open range [Start, Start+Size) of free addresses.
type Run struct {
	Start uint64
	Size  uint64
}

// End returns the first address after the run.
func (r Run) End() uint64 {
	return r.Start + r.Size
}

// String returns a string representation of the run.
func (r Run) String() string {
	return fmt.Sprintf("[0x%x, 0x%x)", r.Start, r.End())
}

// Allocator tracks the free runs of a single address range. Runs are
// kept sorted by start address and never overlap. The sum of free run
// sizes and reserved sizes always equals the size of the range.
type Allocator struct {
	base     uint64
	size     uint64
	reserved uint64
	runs     []Run
}

// New returns an allocator tracking [base, base+size).
func New(base, size uint64) (*Allocator, error) {
	if size == 0 || base > math.MaxUint64-size {
		return nil, fmt.Errorf("%w: extent [0x%x, +0x%x)", ErrInvalidRange, base, size)
	}

	return &Allocator{
		base: base,
		size: size,
		runs: []Run{{Start: base, Size: size}},
	}, nil
}

// Reserve books the range [base, base+n). The range must lie entirely
// within a single free run, otherwise ErrAllocationConflict is returned
// and the allocator is left unchanged.
func (a *Allocator) Reserve(base, n uint64) error {
	if n == 0 || base > math.MaxUint64-n {
		return fmt.Errorf("%w: [0x%x, +0x%x)", ErrInvalidRange, base, n)
	}

	idx := a.find(base)
	if idx < 0 {
		return fmt.Errorf("%w: 0x%x is not in a free run", ErrAllocationConflict, base)
	}

	var (
		run = a.runs[idx]
		end = base + n
	)

	if end > run.End() {
		return fmt.Errorf("%w: [0x%x, 0x%x) crosses end of free run %s",
			ErrAllocationConflict, base, end, run)
	}

	switch {
	case base == run.Start && end == run.End():
		a.runs = append(a.runs[:idx], a.runs[idx+1:]...)
	case base == run.Start:
		a.runs[idx] = Run{Start: end, Size: run.End() - end}
	case end == run.End():
		a.runs[idx] = Run{Start: run.Start, Size: base - run.Start}
	default:
		before := Run{Start: run.Start, Size: base - run.Start}
		after := Run{Start: end, Size: run.End() - end}
		a.runs = append(a.runs, Run{})
		copy(a.runs[idx+2:], a.runs[idx+1:])
		a.runs[idx] = before
		a.runs[idx+1] = after
	}

	a.reserved += n

	log.Debug("reserved [0x%x, 0x%x), %d free runs left", base, end, len(a.runs))

	return nil
}

// IsFree returns true if [base, base+n) could be reserved.
func (a *Allocator) IsFree(base, n uint64) bool {
	if n == 0 || base > math.MaxUint64-n {
		return false
	}
	idx := a.find(base)
	return idx >= 0 && base+n <= a.runs[idx].End()
}

// find returns the index of the free run containing addr, or -1.
func (a *Allocator) find(addr uint64) int {
	// first run starting after addr, the one before it is our candidate
	idx := sort.Search(len(a.runs), func(i int) bool {
		return a.runs[i].Start > addr
	}) - 1

	if idx < 0 || addr >= a.runs[idx].End() {
		return -1
	}

	return idx
}

// Extent returns the tracked range as a single run.
func (a *Allocator) Extent() Run {
	return Run{Start: a.base, Size: a.size}
}

// Free returns the total number of unreserved addresses.
func (a *Allocator) Free() uint64 {
	free := uint64(0)
	for _, r := range a.runs {
		free += r.Size
	}
	return free
}

// Reserved returns the total number of reserved addresses.
func (a *Allocator) Reserved() uint64 {
	return a.reserved
}

// Runs returns a copy of the current free runs in address order.
func (a *Allocator) Runs() []Run {
	runs := make([]Run, len(a.runs))
	copy(runs, a.runs)
	return runs
}

// String returns a string representation of the free runs.
func (a *Allocator) String() string {
	runs := make([]string, 0, len(a.runs))
	for _, r := range a.runs {
		runs = append(runs, r.String())
	}
	return "free{" + strings.Join(runs, ",") + "}"
}
