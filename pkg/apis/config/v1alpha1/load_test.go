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

package v1alpha1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfig = `
apiVersion: config.chipmap.io/v1alpha1
kind: ChipAllocator
metadata:
  name: two-chips
spec:
  machine:
    defaults:
      processors: 18
      sdram: 100Mi
    chips:
      - x: 0
        y: 0
        ipAddress: 10.11.12.13
      - x: 1
        y: 0
        ethernet: {x: 0, y: 0}
  tracker:
    horizon: 10
    preallocated:
      coresAllChips: 1
      tags:
        - board: 10.11.12.13
          tag: 1
  log:
    debug:
      - tracker
  workload:
    placements:
      - name: source
        units:
          - sdram: 1Mi
            chip: {x: 0, y: 0, processor: 3}
            ipTags:
              - ipAddress: 10.0.0.1
                trafficIdentifier: default
      - name: pair
        units:
          - sdram: 2Mi
          - sdramPerTimestep: 1Ki
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(testConfig))
	require.NoError(t, err)

	require.Equal(t, ChipAllocatorKind, cfg.Kind)
	require.Equal(t, "two-chips", cfg.Name)

	spec := cfg.Spec
	require.Len(t, spec.Machine.Chips, 2)
	require.Equal(t, int64(100<<20), spec.Machine.Defaults.SDRAM.Value())
	require.Equal(t, "10.11.12.13", spec.Machine.Chips[0].IPAddress)
	require.NotNil(t, spec.Machine.Chips[1].Ethernet)
	require.Equal(t, int64(10), spec.Tracker.Horizon)
	require.Equal(t, 1, spec.Tracker.Preallocated.CoresAllChips)
	require.Equal(t, []string{"tracker"}, spec.Log.Debug)

	require.Len(t, spec.Workload.Placements, 2)
	unit := spec.Workload.Placements[0].Units[0]
	require.Equal(t, 3, *unit.Chip.Processor)
	require.Equal(t, "10.0.0.1", unit.IPTags[0].IPAddress)
	require.Len(t, spec.Workload.Placements[1].Units, 2)
	require.Equal(t, int64(1024), spec.Workload.Placements[1].Units[1].SDRAMPerTimestep.Value())
}

func TestParseBareCoordinateKeys(t *testing.T) {
	config := `
spec:
  machine:
    chips:
      - {x: 0, y: 0, ipAddress: 10.11.12.13}
      - x: 2
        y: 3
        ethernet: {x: 0, y: 0}
  workload:
    placements:
      - name: pinned
        units:
          - chip: {x: 2, y: 3}
            near: {x: 0, y: 1}
`
	cfg, err := Parse([]byte(config))
	require.NoError(t, err)

	chips := cfg.Spec.Machine.Chips
	require.Equal(t, 2, chips[1].X)
	require.Equal(t, 3, chips[1].Y)
	require.Equal(t, 0, chips[1].Ethernet.Y)

	unit := cfg.Spec.Workload.Placements[0].Units[0]
	require.Equal(t, 3, unit.Chip.Y)
	require.Equal(t, 1, unit.Near.Y)
}

func TestParseErrors(t *testing.T) {
	type testCase struct {
		name   string
		config string
		errors []string
	}

	for _, tc := range []*testCase{
		{
			name:   "unknown field",
			config: "spec:\n  machine:\n    chipz: []\n",
			errors: []string{"chipz"},
		},
		{
			name:   "duplicate key",
			config: "spec:\n  machine:\n    chips: [{x: 0, y: 0, y: 1}]\n",
			errors: []string{"failed to parse configuration"},
		},
		{
			name:   "wrong kind",
			config: "kind: Other\nspec:\n  machine:\n    chips: [{x: 0, y: 0}]\n",
			errors: []string{`unsupported kind "Other"`},
		},
		{
			name: "multiple problems",
			config: `
spec:
  machine:
    chips: []
  tracker:
    horizon: -1
  workload:
    placements:
      - name: a
        units: []
      - name: a
        units:
          - sdram: -1Mi
`,
			errors: []string{
				"machine has no chips",
				"negative horizon -1",
				`placement "a" has no units`,
				`duplicate placement "a"`,
				"negative SDRAM demand",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.config))
			require.Error(t, err)
			for _, msg := range tc.errors {
				require.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Spec.Workload.Placements, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read configuration")
}
