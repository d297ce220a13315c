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

package machine

import (
	"fmt"
	"slices"

	"github.com/chipmap/chipmap/pkg/utils/cpuset"
)

const (
	// DefaultDTCM is the default amount of data memory per processor.
	DefaultDTCM = 64 * 1024
	// DefaultCPUCycles is the default number of processor cycles per tick.
	DefaultCPUCycles = 200000
	// DefaultProcessors is the default number of processors on a chip.
	DefaultProcessors = 18
)

// DefaultTagIDs returns the default tag ids of an Ethernet chip. Tag 0 is
// reserved for the system.
func DefaultTagIDs() []int {
	return []int{1, 2, 3, 4, 5, 6, 7}
}

// ChipID identifies a chip by its coordinates.
type ChipID struct {
	X int
	Y int
}

// String returns the chip coordinates as "(x,y)".
func (id ChipID) String() string {
	return fmt.Sprintf("(%d,%d)", id.X, id.Y)
}

// Processor describes a single processor of a chip.
type Processor struct {
	ID        int
	Monitor   bool
	DTCM      int64
	CPUCycles int64
}

// NewProcessors returns n processors with default attributes, marking the
// ones with the given ids as monitors.
func NewProcessors(n int, monitors ...int) []Processor {
	procs := make([]Processor, 0, n)
	for id := 0; id < n; id++ {
		procs = append(procs, Processor{
			ID:        id,
			Monitor:   slices.Contains(monitors, id),
			DTCM:      DefaultDTCM,
			CPUCycles: DefaultCPUCycles,
		})
	}
	return procs
}

// Chip is a compute node with a fixed set of processors and SDRAM.
type Chip struct {
	id         ChipID
	processors []Processor
	sdram      int64
	ethernet   ChipID
	ipAddress  string
	tagIDs     []int
}

// ChipOption is an option for a chip.
type ChipOption func(*Chip)

// WithIPAddress marks the chip Ethernet-connected with the given address.
func WithIPAddress(ip string) ChipOption {
	return func(c *Chip) {
		c.ipAddress = ip
	}
}

// WithTagIDs sets the tag ids available on an Ethernet chip.
func WithTagIDs(ids ...int) ChipOption {
	return func(c *Chip) {
		c.tagIDs = slices.Clone(ids)
	}
}

// NewChip creates a chip at (x,y) with the given SDRAM capacity, processors
// and nearest Ethernet chip.
func NewChip(x, y int, sdram int64, processors []Processor, ethernet ChipID, options ...ChipOption) *Chip {
	c := &Chip{
		id:         ChipID{X: x, Y: y},
		processors: slices.Clone(processors),
		sdram:      sdram,
		ethernet:   ethernet,
	}
	for _, o := range options {
		o(c)
	}
	if c.ipAddress != "" && c.tagIDs == nil {
		c.tagIDs = DefaultTagIDs()
	}
	return c
}

// ID returns the coordinates of the chip.
func (c *Chip) ID() ChipID {
	return c.id
}

// X returns the horizontal coordinate of the chip.
func (c *Chip) X() int {
	return c.id.X
}

// Y returns the vertical coordinate of the chip.
func (c *Chip) Y() int {
	return c.id.Y
}

// Processors returns the processors of the chip.
func (c *Chip) Processors() []Processor {
	return slices.Clone(c.processors)
}

// Processor returns the processor with the given id.
func (c *Chip) Processor(id int) (Processor, bool) {
	for _, p := range c.processors {
		if p.ID == id {
			return p, true
		}
	}
	return Processor{}, false
}

// UserProcessors returns the ids of all non-monitor processors.
func (c *Chip) UserProcessors() cpuset.CPUSet {
	ids := make([]int, 0, len(c.processors))
	for _, p := range c.processors {
		if !p.Monitor {
			ids = append(ids, p.ID)
		}
	}
	return cpuset.New(ids...)
}

// MonitorProcessors returns the ids of all monitor processors.
func (c *Chip) MonitorProcessors() cpuset.CPUSet {
	ids := []int{}
	for _, p := range c.processors {
		if p.Monitor {
			ids = append(ids, p.ID)
		}
	}
	return cpuset.New(ids...)
}

// MaxUserDTCM returns the largest DTCM of any non-monitor processor.
func (c *Chip) MaxUserDTCM() int64 {
	best := int64(0)
	for _, p := range c.processors {
		if !p.Monitor && p.DTCM > best {
			best = p.DTCM
		}
	}
	return best
}

// MaxUserCPUCycles returns the largest cycle count of any non-monitor processor.
func (c *Chip) MaxUserCPUCycles() int64 {
	best := int64(0)
	for _, p := range c.processors {
		if !p.Monitor && p.CPUCycles > best {
			best = p.CPUCycles
		}
	}
	return best
}

// SDRAM returns the SDRAM capacity of the chip in bytes.
func (c *Chip) SDRAM() int64 {
	return c.sdram
}

// NearestEthernet returns the coordinates of the nearest Ethernet chip.
func (c *Chip) NearestEthernet() ChipID {
	return c.ethernet
}

// IsEthernet returns true if the chip has an Ethernet connection.
func (c *Chip) IsEthernet() bool {
	return c.ipAddress != ""
}

// IPAddress returns the IP address of an Ethernet chip.
func (c *Chip) IPAddress() string {
	return c.ipAddress
}

// TagIDs returns the tag ids of an Ethernet chip.
func (c *Chip) TagIDs() []int {
	return slices.Clone(c.tagIDs)
}

// String returns a string representation of the chip.
func (c *Chip) String() string {
	s := fmt.Sprintf("chip %s{user:%s, sdram:%d}", c.id, c.UserProcessors(), c.sdram)
	if c.ipAddress != "" {
		s += "@" + c.ipAddress
	}
	return s
}
