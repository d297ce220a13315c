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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chipmap/chipmap/pkg/machine"
)

func TestMergePins(t *testing.T) {
	type testCase struct {
		name        string
		constraints []Constraint
		options     []AllocOption
		chip        *machine.ChipID
		processor   *int
		board       string
		radial      *machine.ChipID
		fail        bool
	}

	chip := func(x, y int) *machine.ChipID { return &machine.ChipID{X: x, Y: y} }
	proc := func(p int) *int { return &p }

	for _, tc := range []*testCase{
		{
			name: "no constraints",
		},
		{
			name:        "chip then core",
			constraints: []Constraint{OnChip(1, 2), OnCore(1, 2, 3)},
			chip:        chip(1, 2),
			processor:   proc(3),
		},
		{
			name:        "core then chip",
			constraints: []Constraint{OnCore(1, 2, 3), OnChip(1, 2)},
			chip:        chip(1, 2),
			processor:   proc(3),
		},
		{
			name:        "agreeing duplicates",
			constraints: []Constraint{Board{Address: "a"}, RadialFromChip{X: 1}, Board{Address: "a"}, RadialFromChip{X: 1}},
			board:       "a",
			radial:      chip(1, 0),
		},
		{
			name:        "options",
			constraints: []Constraint{OnChip(0, 0)},
			options:     []AllocOption{WithProcessor(4), WithBoard("b")},
			chip:        chip(0, 0),
			processor:   proc(4),
			board:       "b",
		},
		{
			name:        "conflicting chips",
			constraints: []Constraint{OnChip(0, 0), OnCore(0, 1, 1)},
			fail:        true,
		},
		{
			name:        "conflicting cores",
			constraints: []Constraint{OnCore(0, 0, 1), OnCore(0, 0, 2)},
			fail:        true,
		},
		{
			name:        "conflicting boards",
			constraints: []Constraint{Board{Address: "a"}, Board{Address: "b"}},
			fail:        true,
		},
		{
			name:        "conflicting radials",
			constraints: []Constraint{RadialFromChip{X: 1}, RadialFromChip{Y: 1}},
			fail:        true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := mergePins(tc.constraints, tc.options)
			if tc.fail {
				require.True(t, errors.Is(err, ErrInvalidConstraint))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.chip, p.chip)
			require.Equal(t, tc.processor, p.processor)
			require.Equal(t, tc.board, p.board)
			require.Equal(t, tc.radial, p.radial)
		})
	}
}

func TestMergeGroupPins(t *testing.T) {
	group := &pins{}

	m1, err := mergePins([]Constraint{OnCore(1, 1, 5), RadialFromChip{X: 2, Y: 2}}, nil)
	require.NoError(t, err)
	require.NoError(t, group.mergeGroup(m1))

	m2, err := mergePins([]Constraint{OnChip(1, 1), RadialFromChip{X: 2, Y: 2}}, nil)
	require.NoError(t, err)
	require.NoError(t, group.mergeGroup(m2))

	require.Equal(t, &machine.ChipID{X: 1, Y: 1}, group.chip)
	require.Nil(t, group.processor)
	require.Equal(t, &machine.ChipID{X: 2, Y: 2}, group.radial)

	m3, err := mergePins([]Constraint{OnChip(2, 1)}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, group.mergeGroup(m3), ErrInvalidConstraint)

	m4, err := mergePins([]Constraint{RadialFromChip{X: 3, Y: 3}}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, group.mergeGroup(m4), ErrInvalidConstraint)
	require.Equal(t, &machine.ChipID{X: 2, Y: 2}, group.radial)
}
