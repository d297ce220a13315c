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


package metrics_test

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/chipmap/chipmap/pkg/metrics"
)

func TestMetricsPrefixing(t *testing.T) {
	type testCase struct {
		name     string
		options  []metrics.RegisterOption
		expected string
	}

	for _, tc := range []*testCase{
		{
			name:     "default",
			expected: "chipmap_default_test",
		},
		{
			name:     "grouped",
			options:  []metrics.RegisterOption{metrics.WithGroup("alloc")},
			expected: "chipmap_alloc_test",
		},
		{
			name: "without subsystem",
			options: []metrics.RegisterOption{
				metrics.WithGroup("alloc"),
				metrics.WithCollectorOptions(metrics.WithoutSubsystem()),
			},
			expected: "chipmap_test",
		},
		{
			name: "without namespace",
			options: []metrics.RegisterOption{
				metrics.WithGroup("alloc"),
				metrics.WithCollectorOptions(metrics.WithoutNamespace()),
			},
			expected: "alloc_test",
		},
		{
			name: "unprefixed",
			options: []metrics.RegisterOption{
				metrics.WithCollectorOptions(metrics.WithoutNamespace(), metrics.WithoutSubsystem()),
			},
			expected: "test",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := metrics.NewRegistry()
			newTestGauge(t, r, "test", tc.options...)

			g, err := r.NewGatherer(metrics.WithNamespace("chipmap"), metrics.WithMetrics([]string{"*"}))
			require.NoError(t, err)
			require.Equal(t, []string{tc.expected}, gathered(t, g))
		})
	}
}

func TestMetricsConfiguration(t *testing.T) {
	r := metrics.NewRegistry()

	newTestGauge(t, r, "test1", metrics.WithGroup("group1"))
	newTestGauge(t, r, "test2", metrics.WithGroup("group1"),
		metrics.WithCollectorOptions(metrics.WithoutSubsystem()))
	newTestGauge(t, r, "test3", metrics.WithGroup("group2"),
		metrics.WithCollectorOptions(metrics.WithoutSubsystem()))
	newTestGauge(t, r, "test4", metrics.WithGroup("group2"))

	g, err := r.NewGatherer(metrics.WithMetrics([]string{"test1", "group2"}))
	require.NoError(t, err)
	require.Equal(t, []string{"group1_test1", "group2_test4", "test3"}, gathered(t, g))

	_, err = r.NewGatherer(metrics.WithMetrics([]string{"group3"}))
	require.Error(t, err, "unmatched glob")
}

func TestDuplicateRegistration(t *testing.T) {
	r := metrics.NewRegistry()
	newTestGauge(t, r, "test", metrics.WithGroup("group1"))
	newTestGauge(t, r, "test", metrics.WithGroup("group2"))

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test", Help: "Duplicate."})
	require.Error(t, r.Register("test", gauge, metrics.WithGroup("group1")))
}

func TestWriteText(t *testing.T) {
	r := metrics.NewRegistry()
	newTestGauge(t, r, "test", metrics.WithGroup("group")).Set(7)

	g, err := r.NewGatherer(metrics.WithNamespace("chipmap"), metrics.WithMetrics([]string{"group/*"}))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, g.WriteText(out))
	require.Equal(t,
		"# HELP chipmap_group_test Test gauge test\n"+
			"# TYPE chipmap_group_test gauge\n"+
			"chipmap_group_test 7\n",
		out.String())
}

func newTestGauge(t *testing.T, r *metrics.Registry, name string, options ...metrics.RegisterOption) prometheus.Gauge {
	gauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: name,
			Help: "Test gauge " + name,
		},
	)

	require.NoError(t, r.Register(name, gauge, options...))

	return gauge
}

func gathered(t *testing.T, g *metrics.Gatherer) []string {
	families, err := g.Gather()
	require.NoError(t, err)

	names := []string{}
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	return names
}
