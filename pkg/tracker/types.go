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
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/chipmap/chipmap/pkg/machine"
)

// DefaultTrafficIdentifier is the traffic identifier of IP tags which
// do not set one.
const DefaultTrafficIdentifier = "default"

// SDRAM is the SDRAM demand of a unit. Its total for a run is the fixed
// part plus the per-timestep part times the planned horizon.
type SDRAM struct {
	Fixed       int64
	PerTimestep int64
}

// Total returns the SDRAM demand for the given number of timesteps.
func (s SDRAM) Total(horizon int64) int64 {
	return s.Fixed + s.PerTimestep*horizon
}

// String returns a string representation of the SDRAM demand.
func (s SDRAM) String() string {
	if s.PerTimestep == 0 {
		return prettySize(s.Fixed)
	}
	return prettySize(s.Fixed) + "+" + prettySize(s.PerTimestep) + "/step"
}

// IPTag is a request for an outbound tag, directing traffic from the
// machine to a host.
type IPTag struct {
	// IPAddress is the address of the receiving host.
	IPAddress string
	// Port is the port on the receiving host, or nil if not fixed.
	Port *int
	// StripSDP tells whether SDP headers are stripped from packets.
	StripSDP bool
	// Tag is the requested tag id, or nil for any tag.
	Tag *int
	// TrafficIdentifier names the kind of traffic using the tag.
	TrafficIdentifier string
}

// ReverseIPTag is a request for an inbound tag, directing traffic from a
// host to a processor.
type ReverseIPTag struct {
	// Port is the port listened on by the board, or nil if not fixed.
	Port *int
	// SDPPort is the SDP port traffic is delivered to.
	SDPPort int
	// Tag is the requested tag id, or nil for any tag.
	Tag *int
}

// Resources describes the resources needed by a single unit besides the
// processor running it.
type Resources struct {
	SDRAM         SDRAM
	IPTags        []IPTag
	ReverseIPTags []ReverseIPTag
}

// TagBinding is a tag of a board.
type TagBinding struct {
	// Board is the IP address of the board.
	Board string
	// Tag is the tag id on the board.
	Tag int
}

// String returns the binding as board/tag.
func (b TagBinding) String() string {
	return fmt.Sprintf("%s/%d", b.Board, b.Tag)
}

// Allocation binds a unit to the resources allocated for it.
type Allocation struct {
	// Chip is the chip the unit is placed on.
	Chip machine.ChipID
	// Processor is the processor running the unit.
	Processor int
	// SDRAM is the amount of SDRAM allocated on the chip.
	SDRAM int64
	// IPTags are the tags bound to the IP tag requests, in request order.
	IPTags []TagBinding
	// ReverseIPTags are the tags bound to the reverse IP tag requests, in
	// request order.
	ReverseIPTags []TagBinding
}

// String returns a string representation of the allocation.
func (a *Allocation) String() string {
	s := fmt.Sprintf("%s/%d, SDRAM %s", a.Chip, a.Processor, prettySize(a.SDRAM))
	if len(a.IPTags) > 0 {
		s += ", IP tags " + bindingsString(a.IPTags)
	}
	if len(a.ReverseIPTags) > 0 {
		s += ", reverse IP tags " + bindingsString(a.ReverseIPTags)
	}
	return s
}

func (r *Resources) validate() error {
	if r == nil {
		return invalidRequest("nil resources")
	}
	if r.SDRAM.Fixed < 0 || r.SDRAM.PerTimestep < 0 {
		return invalidRequest("negative SDRAM demand %s", r.SDRAM)
	}
	for _, tag := range r.IPTags {
		if tag.IPAddress == "" {
			return invalidRequest("IP tag without IP address")
		}
		if tag.Tag != nil && *tag.Tag < 0 {
			return invalidRequest("negative IP tag id %d", *tag.Tag)
		}
	}
	for _, tag := range r.ReverseIPTags {
		if tag.Tag != nil && *tag.Tag < 0 {
			return invalidRequest("negative reverse IP tag id %d", *tag.Tag)
		}
	}
	return nil
}

func (t IPTag) trafficKey() trafficKey {
	traffic := t.TrafficIdentifier
	if traffic == "" {
		traffic = DefaultTrafficIdentifier
	}
	return trafficKey{ip: t.IPAddress, traffic: traffic}
}

func bindingsString(bindings []TagBinding) string {
	s := make([]string, 0, len(bindings))
	for _, b := range bindings {
		s = append(s, b.String())
	}
	return strings.Join(s, ",")
}

func prettySize(v int64) string {
	return resource.NewQuantity(v, resource.BinarySI).String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
