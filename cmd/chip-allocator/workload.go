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

package main

import (
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/resource"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1"
	"github.com/chipmap/chipmap/pkg/tracker"
)

// placeWorkload places every placement of the workload in order, writing
// one line per allocated unit. It stops at the first failure.
func placeWorkload(trk *tracker.Tracker, w *cfgapi.Workload, out io.Writer) error {
	for _, p := range w.Placements {
		reqs := make([]*tracker.Resources, 0, len(p.Units))
		constraints := make([][]tracker.Constraint, 0, len(p.Units))
		for _, u := range p.Units {
			reqs = append(reqs, unitResources(&u))
			constraints = append(constraints, unitConstraints(&u))
		}

		var (
			allocs []*tracker.Allocation
			err    error
		)

		if len(reqs) == 1 {
			var a *tracker.Allocation
			a, err = trk.AllocateConstrainedResources(reqs[0], constraints[0])
			allocs = []*tracker.Allocation{a}
		} else {
			allocs, err = trk.AllocateGroupResources(reqs, constraints)
		}
		if err != nil {
			return fmt.Errorf("failed to place %q: %w", p.Name, err)
		}

		for i, a := range allocs {
			fmt.Fprintf(out, "%s: %s\n", unitName(&p, i), a)
		}
	}

	return nil
}

func unitName(p *cfgapi.Placement, idx int) string {
	if len(p.Units) == 1 && p.Units[idx].Name == "" {
		return p.Name
	}
	if name := p.Units[idx].Name; name != "" {
		return p.Name + "/" + name
	}
	return fmt.Sprintf("%s/#%d", p.Name, idx)
}

func unitResources(u *cfgapi.Unit) *tracker.Resources {
	r := &tracker.Resources{
		SDRAM: tracker.SDRAM{
			Fixed:       value(u.SDRAM),
			PerTimestep: value(u.SDRAMPerTimestep),
		},
	}

	for _, t := range u.IPTags {
		r.IPTags = append(r.IPTags, tracker.IPTag{
			IPAddress:         t.IPAddress,
			Port:              t.Port,
			StripSDP:          t.StripSDP,
			Tag:               t.Tag,
			TrafficIdentifier: t.TrafficIdentifier,
		})
	}
	for _, t := range u.ReverseIPTags {
		r.ReverseIPTags = append(r.ReverseIPTags, tracker.ReverseIPTag{
			Port:    t.Port,
			SDPPort: t.SDPPort,
			Tag:     t.Tag,
		})
	}

	return r
}

func unitConstraints(u *cfgapi.Unit) []tracker.Constraint {
	var c []tracker.Constraint

	if u.Chip != nil {
		c = append(c, tracker.ChipAndCore{X: u.Chip.X, Y: u.Chip.Y, Processor: u.Chip.Processor})
	}
	if u.Board != "" {
		c = append(c, tracker.Board{Address: u.Board})
	}
	if u.Near != nil {
		c = append(c, tracker.RadialFromChip{X: u.Near.X, Y: u.Near.Y})
	}

	return c
}

func value(q *resource.Quantity) int64 {
	if q == nil {
		return 0
	}
	return q.Value()
}
