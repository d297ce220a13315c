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


package cpuset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTakeFirst(t *testing.T) {
	type testCase struct {
		name  string
		set   CPUSet
		n     int
		taken []int
		rest  []int
		ok    bool
	}

	for _, tc := range []*testCase{
		{
			name:  "take none",
			set:   New(3, 1, 2),
			taken: []int{},
			rest:  []int{1, 2, 3},
			ok:    true,
		},
		{
			name:  "take lowest",
			set:   New(5, 1, 9, 3),
			n:     2,
			taken: []int{1, 3},
			rest:  []int{5, 9},
			ok:    true,
		},
		{
			name:  "take all",
			set:   New(4, 2),
			n:     2,
			taken: []int{2, 4},
			rest:  []int{},
			ok:    true,
		},
		{
			name: "too many",
			set:  New(1),
			n:    2,
			rest: []int{1},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			taken, rest, ok := TakeFirst(tc.set, tc.n)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.taken, taken.List())
			} else {
				require.True(t, taken.IsEmpty())
			}
			require.Equal(t, tc.rest, rest.List())
		})
	}
}
