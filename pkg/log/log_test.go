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

package log

import (
	"testing"

	"github.com/stretchr/testify/require"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/log"
)

func TestSrcmapParse(t *testing.T) {
	type testCase struct {
		name   string
		value  string
		result srcmap
		fail   bool
	}

	for _, tc := range []*testCase{
		{
			name:   "empty",
			value:  "",
			result: srcmap{},
		},
		{
			name:   "implicit on",
			value:  "tracker,intervals",
			result: srcmap{"tracker": true, "intervals": true},
		},
		{
			name:   "all",
			value:  "all",
			result: srcmap{"*": true},
		},
		{
			name:   "on and off",
			value:  "on:tracker,machine,off:intervals",
			result: srcmap{"tracker": true, "machine": true, "intervals": false},
		},
		{
			name:  "bad state",
			value: "maybe:tracker",
			fail:  true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := srcmap{}
			err := m.parse(tc.value)
			if tc.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.result, m)
		})
	}
}

func TestConfigureDebug(t *testing.T) {
	var (
		l1 = Get("test-source-1")
		l2 = Get("test-source-2")
	)

	require.NoError(t, Configure(&cfgapi.Config{Debug: []string{"on:test-source-1"}}))
	require.True(t, l1.DebugEnabled())
	require.False(t, l2.DebugEnabled())

	require.NoError(t, Configure(&cfgapi.Config{Debug: []string{"all"}}))
	require.True(t, l1.DebugEnabled())
	require.True(t, l2.DebugEnabled())

	require.NoError(t, Configure(&cfgapi.Config{}))
	require.False(t, l1.DebugEnabled())

	EnableDebug("test-source-2")
	require.True(t, l2.DebugEnabled())

	require.Error(t, Configure(&cfgapi.Config{Level: "loud"}))
	require.NoError(t, Configure(&cfgapi.Config{}))
}

func TestParseLevel(t *testing.T) {
	for value, level := range map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	} {
		l, err := ParseLevel(value)
		require.NoError(t, err, value)
		require.Equal(t, level, l, value)
	}
}
