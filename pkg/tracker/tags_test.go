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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhysicalTagRefs(t *testing.T) {
	p := &PhysicalTag{Board: "192.168.0.1", Tag: 1, IPAddress: "10.0.0.1"}
	require.Equal(t, 0, p.Refs())

	for i := 0; i < 3; i++ {
		p.acquire()
	}
	require.Equal(t, 3, p.Refs())

	require.False(t, p.release())
	require.False(t, p.release())
	require.True(t, p.release())
	require.Equal(t, 0, p.Refs())

	// releasing an unreferenced tag never goes negative
	require.True(t, p.release())
	require.Equal(t, 0, p.Refs())
}

func TestPhysicalTagSharable(t *testing.T) {
	port := func(v int) *int { return &v }

	tag := &PhysicalTag{
		Board:             "192.168.0.1",
		Tag:               3,
		IPAddress:         "10.0.0.1",
		TrafficIdentifier: DefaultTrafficIdentifier,
		Port:              port(9000),
	}

	type testCase struct {
		name     string
		req      IPTag
		board    string
		sharable bool
	}

	for _, tc := range []*testCase{
		{
			name:     "nothing set",
			sharable: true,
		},
		{
			name:     "same board",
			board:    "192.168.0.1",
			sharable: true,
		},
		{
			name:  "other board",
			board: "192.168.0.2",
		},
		{
			name:     "same tag",
			req:      IPTag{Tag: port(3)},
			sharable: true,
		},
		{
			name: "other tag",
			req:  IPTag{Tag: port(4)},
		},
		{
			name:     "same port",
			req:      IPTag{Port: port(9000)},
			sharable: true,
		},
		{
			name: "other port",
			req:  IPTag{Port: port(9001)},
		},
		{
			name: "strip SDP",
			req:  IPTag{StripSDP: true},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.sharable, tag.sharable(tc.req, tc.board))
		})
	}

	// an unset port on the tag side matches any port
	tag.Port = nil
	require.True(t, tag.sharable(IPTag{Port: port(1)}, ""))
}

func TestClonedTagIsIndependent(t *testing.T) {
	port := 9000
	p := &PhysicalTag{Board: "192.168.0.1", Tag: 1, Port: &port}
	p.acquire()

	c := p.clone()
	c.acquire()
	*c.Port = 9001

	require.Equal(t, 1, p.Refs())
	require.Equal(t, 2, c.Refs())
	require.Equal(t, 9000, *p.Port)
}
