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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chipmap/chipmap/pkg/tracker"
)

const testConfig = `
apiVersion: config.chipmap.io/v1alpha1
kind: ChipAllocator
spec:
  machine:
    defaults:
      processors: 4
      sdram: 100Mi
    chips:
      - x: 0
        y: 0
        ipAddress: 192.168.0.1
      - x: 1
        y: 0
        ethernet: {x: 0, y: 0}
  workload:
    placements:
      - name: source
        units:
          - sdram: 10Mi
            chip: {x: 1, y: 0}
            ipTags:
              - ipAddress: 10.0.0.1
      - name: pair
        units:
          - name: left
            sdram: 60Mi
          - name: right
            sdram: 30Mi
            ipTags:
              - ipAddress: 10.0.0.1
`

func writeConfig(t *testing.T, config string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	return path
}

func TestRun(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(writeConfig(t, testConfig), true, false, out))

	output := out.String()
	require.Contains(t, output, "source: (1,0)/1, SDRAM 10Mi, IP tags 192.168.0.1/1\n")
	require.Contains(t, output, "pair/left: (0,0)/1, SDRAM 60Mi\n")
	require.Contains(t, output, "pair/right: (0,0)/2, SDRAM 30Mi, IP tags 192.168.0.1/1\n")
	require.Contains(t, output, "chips used: 2")
	require.Contains(t, output, `chipmap_board_tags{board="192.168.0.1",state="ip"} 1`)
	require.Contains(t, output, "chipmap_chips_available 2")
}

func TestRunFailure(t *testing.T) {
	config := testConfig + `
      - name: huge
        units:
          - sdram: 1Gi
`
	out := &bytes.Buffer{}
	err := run(writeConfig(t, config), false, false, out)
	require.ErrorIs(t, err, tracker.ErrResourceUnavailable)
	require.Contains(t, err.Error(), `failed to place "huge"`)
	require.Contains(t, out.String(), "pair/right")
}
