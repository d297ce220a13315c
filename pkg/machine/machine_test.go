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

package machine_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/machine"
	. "github.com/chipmap/chipmap/pkg/machine"
	"github.com/chipmap/chipmap/pkg/utils/cpuset"
)

func TestNewProcessors(t *testing.T) {
	procs := NewProcessors(4, 0)
	require.Len(t, procs, 4)
	require.True(t, procs[0].Monitor)
	for _, p := range procs[1:] {
		require.False(t, p.Monitor)
		require.Equal(t, int64(DefaultDTCM), p.DTCM)
		require.Equal(t, int64(DefaultCPUCycles), p.CPUCycles)
	}

	c := NewChip(0, 0, 100, procs, ChipID{}, WithIPAddress("10.0.0.1"))
	require.Equal(t, cpuset.New(1, 2, 3), c.UserProcessors())
	require.Equal(t, cpuset.New(0), c.MonitorProcessors())
	require.Equal(t, DefaultTagIDs(), c.TagIDs())
	require.True(t, c.IsEthernet())
}

func TestNew(t *testing.T) {
	procs := NewProcessors(18, 0)

	type testCase struct {
		name   string
		chips  []*Chip
		errors []string
	}

	for _, tc := range []*testCase{
		{
			name: "single board",
			chips: []*Chip{
				NewChip(0, 0, 100, procs, ChipID{}, WithIPAddress("10.0.0.1")),
				NewChip(1, 0, 100, procs, ChipID{}),
				NewChip(0, 1, 100, procs, ChipID{}),
			},
		},
		{
			name: "duplicate chip",
			chips: []*Chip{
				NewChip(0, 0, 100, procs, ChipID{}, WithIPAddress("10.0.0.1")),
				NewChip(0, 0, 100, procs, ChipID{}),
			},
			errors: []string{"duplicate chip (0,0)"},
		},
		{
			name: "multiple problems",
			chips: []*Chip{
				NewChip(0, 0, 100, procs, ChipID{}, WithIPAddress("10.0.0.1")),
				NewChip(1, 0, 100, procs, ChipID{X: 1}, WithIPAddress("10.0.0.1")),
				NewChip(2, 0, 100, procs, ChipID{X: 9}),
				NewChip(3, 0, 100, procs, ChipID{X: 2}),
				NewChip(4, 0, -1, procs, ChipID{}),
			},
			errors: []string{
				"share IP address 10.0.0.1",
				"unknown Ethernet chip (9,0)",
				"Ethernet chip (2,0) of chip (3,0) has no IP address",
				"negative SDRAM",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.chips...)
			if len(tc.errors) == 0 {
				require.NoError(t, err)
				require.Equal(t, len(tc.chips), m.Len())
				return
			}
			require.ErrorIs(t, err, ErrInvalidMachine)
			for _, msg := range tc.errors {
				require.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestBoards(t *testing.T) {
	procs := NewProcessors(18, 0)
	m, err := New(
		NewChip(0, 0, 100, procs, ChipID{}, WithIPAddress("10.0.0.1")),
		NewChip(1, 0, 100, procs, ChipID{}),
		NewChip(4, 4, 100, procs, ChipID{X: 4, Y: 4}, WithIPAddress("10.0.0.2"), WithTagIDs(1, 2)),
		NewChip(5, 4, 100, procs, ChipID{X: 4, Y: 4}),
	)
	require.NoError(t, err)

	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, m.Boards())
	require.Len(t, m.EthernetChips(), 2)

	ip, ok := m.BoardAddress(ChipID{X: 5, Y: 4})
	require.True(t, ok)
	require.Equal(t, "10.0.0.2", ip)

	_, ok = m.BoardAddress(ChipID{X: 7, Y: 7})
	require.False(t, ok)

	eth, ok := m.BoardChip("10.0.0.2")
	require.True(t, ok)
	require.Equal(t, []int{1, 2}, eth.TagIDs())

	var ids []ChipID
	m.ForeachChip(func(c *Chip) bool {
		ids = append(ids, c.ID())
		return len(ids) < 3
	})
	require.Equal(t, []ChipID{{0, 0}, {1, 0}, {4, 4}}, ids)
}

func TestDistance(t *testing.T) {
	type testCase struct {
		a, b     ChipID
		distance int
	}

	for _, tc := range []*testCase{
		{a: ChipID{0, 0}, b: ChipID{0, 0}, distance: 0},
		{a: ChipID{0, 0}, b: ChipID{1, 1}, distance: 1},
		{a: ChipID{0, 0}, b: ChipID{0, 3}, distance: 3},
		{a: ChipID{0, 0}, b: ChipID{2, 1}, distance: 2},
		{a: ChipID{0, 0}, b: ChipID{1, -1}, distance: 2},
		{a: ChipID{0, 0}, b: ChipID{-1, 2}, distance: 3},
		{a: ChipID{3, 3}, b: ChipID{0, 0}, distance: 3},
	} {
		t.Run(tc.a.String()+"-"+tc.b.String(), func(t *testing.T) {
			require.Equal(t, tc.distance, Distance(tc.a, tc.b))
			require.Equal(t, tc.distance, Distance(tc.b, tc.a))
		})
	}
}

func TestFromConfig(t *testing.T) {
	var (
		four   = 4
		sdram  = resource.MustParse("1Mi")
		dtcm   = resource.MustParse("32Ki")
		cycles = int64(100)
	)

	m, err := FromConfig(&cfgapi.Config{
		Defaults: cfgapi.ChipDefaults{
			Processors: &four,
			SDRAM:      &sdram,
			TagIDs:     []int{1, 2, 3},
		},
		Chips: []cfgapi.Chip{
			{X: 0, Y: 0, IPAddress: "10.0.0.1"},
			{X: 1, Y: 0, Ethernet: &cfgapi.ChipRef{}, DTCM: &dtcm, CPUCycles: &cycles, Monitors: []int{}},
		},
	})
	require.NoError(t, err)

	c, ok := m.ChipAt(0, 0)
	require.True(t, ok)
	require.Equal(t, int64(1<<20), c.SDRAM())
	require.Equal(t, cpuset.New(1, 2, 3), c.UserProcessors())
	require.Equal(t, []int{1, 2, 3}, c.TagIDs())
	require.Equal(t, int64(DefaultDTCM), c.MaxUserDTCM())

	c, ok = m.ChipAt(1, 0)
	require.True(t, ok)
	require.Equal(t, cpuset.New(0, 1, 2, 3), c.UserProcessors())
	require.Equal(t, int64(32*1024), c.MaxUserDTCM())
	require.Equal(t, int64(100), c.MaxUserCPUCycles())
	require.False(t, c.IsEthernet())

	_, err = FromConfig(&cfgapi.Config{
		Chips: []cfgapi.Chip{
			{X: 0, Y: 0},
			{X: 1, Y: 0, IPAddress: "10.0.0.1", Monitors: []int{20}},
		},
	})
	require.ErrorIs(t, err, ErrInvalidMachine)
	require.Contains(t, err.Error(), "no IP address or Ethernet chip")
	require.Contains(t, err.Error(), "no monitor processor 20")
}
