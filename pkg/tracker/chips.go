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
	"github.com/chipmap/chipmap/pkg/utils/cpuset"
)

// chipState tracks the processors and SDRAM of a single chip. Free holds
// every user processor which is neither allocated nor preallocated by id.
// Reserved of those are preallocated by count, so the number of cores
// which can actually be allocated is the size of free minus reserved.
type chipState struct {
	chip         *machine.Chip
	board        string
	free         cpuset.CPUSet
	allocated    cpuset.CPUSet
	preallocated cpuset.CPUSet
	reserved     int
	sdramPre     int64
	sdramUsed    int64
}

// CoreUsage describes the use of the user processors of a chip.
type CoreUsage struct {
	Allocated    int
	Free         int
	Preallocated int
}

// Total returns the number of user processors.
func (u CoreUsage) Total() int {
	return u.Allocated + u.Free + u.Preallocated
}

// SDRAMUsage describes the use of the SDRAM of a chip.
type SDRAMUsage struct {
	Capacity     int64
	Preallocated int64
	Used         int64
}

// Free returns the amount of SDRAM left for allocation.
func (u SDRAMUsage) Free() int64 {
	return u.Capacity - u.Preallocated - u.Used
}

func newChipState(chip *machine.Chip, board string) *chipState {
	return &chipState{
		chip:         chip,
		board:        board,
		free:         chip.UserProcessors(),
		allocated:    cpuset.New(),
		preallocated: cpuset.New(),
	}
}

func (c *chipState) id() machine.ChipID {
	return c.chip.ID()
}

func (c *chipState) freeCores() int {
	return c.free.Size() - c.reserved
}

func (c *chipState) freeSDRAM() int64 {
	return c.chip.SDRAM() - c.sdramPre - c.sdramUsed
}

func (c *chipState) coreUsage() CoreUsage {
	return CoreUsage{
		Allocated:    c.allocated.Size(),
		Free:         c.freeCores(),
		Preallocated: c.preallocated.Size() + c.reserved,
	}
}

func (c *chipState) sdramUsage() SDRAMUsage {
	return SDRAMUsage{
		Capacity:     c.chip.SDRAM(),
		Preallocated: c.sdramPre,
		Used:         c.sdramUsed,
	}
}

// pickProcessors picks a processor for each of the given pins, using the
// pinned processor where one is set and the lowest free ones otherwise.
// It returns a reason if the chip cannot provide the processors.
func (c *chipState) pickProcessors(pinned []*int) ([]int, string) {
	if len(pinned) > c.freeCores() {
		return nil, "not enough free cores"
	}

	var (
		avail    = c.free
		procs    = make([]int, len(pinned))
		unpinned = 0
	)

	for i, p := range pinned {
		if p == nil {
			unpinned++
			continue
		}
		if !avail.Contains(*p) {
			return nil, fmt.Sprintf("processor %d unavailable", *p)
		}
		procs[i] = *p
		avail = avail.Difference(cpuset.New(*p))
	}

	taken, _, ok := cpuset.TakeFirst(avail, unpinned)
	if !ok {
		return nil, "not enough free cores"
	}

	ids := taken.List()
	for i, p := range pinned {
		if p == nil {
			procs[i], ids = ids[0], ids[1:]
		}
	}

	return procs, ""
}

func (c *chipState) allocate(proc int, sdram int64) {
	c.free = c.free.Difference(cpuset.New(proc))
	c.allocated = c.allocated.Union(cpuset.New(proc))
	c.sdramUsed += sdram
}

func (c *chipState) release(proc int, sdram int64) {
	c.allocated = c.allocated.Difference(cpuset.New(proc))
	c.free = c.free.Union(cpuset.New(proc))
	c.sdramUsed -= sdram
}

func (c *chipState) clone() *chipState {
	cs := *c
	return &cs
}

func (c *chipState) String() string {
	return fmt.Sprintf("%s: cores allocated %s, free %s (%d reserved), preallocated %s; SDRAM %s",
		c.id(), c.allocated, c.free, c.reserved, c.preallocated, c.sdramString())
}

func (c *chipState) sdramString() string {
	u := c.sdramUsage()
	return fmt.Sprintf("used %s, preallocated %s, free %s of %s",
		prettySize(u.Used), prettySize(u.Preallocated), prettySize(u.Free()), prettySize(u.Capacity))
}
