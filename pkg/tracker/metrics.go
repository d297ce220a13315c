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
	"github.com/prometheus/client_golang/prometheus"
)

const (
	descChipCores = iota
	descChipSDRAM
	descBoardTags
	descChipsAvailable
)

var (
	descriptors = []*prometheus.Desc{
		descChipCores: prometheus.NewDesc(
			"chip_cores",
			"Number of user processors of a chip by state.",
			[]string{
				"chip",
				"state",
			},
			nil,
		),
		descChipSDRAM: prometheus.NewDesc(
			"chip_sdram_bytes",
			"Amount of SDRAM of a chip by state.",
			[]string{
				"chip",
				"state",
			},
			nil,
		),
		descBoardTags: prometheus.NewDesc(
			"board_tags",
			"Number of tags of a board by state.",
			[]string{
				"board",
				"state",
			},
			nil,
		),
		descChipsAvailable: prometheus.NewDesc(
			"chips_available",
			"Number of chips with at least one free processor.",
			nil,
			nil,
		),
	}
)

// Collector exports the state of a tracker as prometheus metrics.
type Collector struct {
	t *Tracker
}

var _ prometheus.Collector = &Collector{}

// NewCollector returns a collector for the given tracker.
func NewCollector(t *Tracker) *Collector {
	return &Collector{t: t}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range descriptors {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.t.collect() {
		ch <- m
	}
}

func (t *Tracker) collect() []prometheus.Metric {
	var metrics []prometheus.Metric

	for _, cs := range t.chips {
		var (
			chip  = cs.id().String()
			cores = cs.coreUsage()
			sdram = cs.sdramUsage()
		)

		metrics = append(metrics,
			gauge(descChipCores, float64(cores.Allocated), chip, "allocated"),
			gauge(descChipCores, float64(cores.Free), chip, "free"),
			gauge(descChipCores, float64(cores.Preallocated), chip, "preallocated"),
			gauge(descChipSDRAM, float64(sdram.Used), chip, "used"),
			gauge(descChipSDRAM, float64(sdram.Preallocated), chip, "preallocated"),
			gauge(descChipSDRAM, float64(sdram.Free()), chip, "free"),
		)
	}

	ipTags := map[string]int{}
	for key := range t.ipTags {
		ipTags[key.board]++
	}
	reverseTags := map[string]int{}
	for key := range t.reverseTags {
		reverseTags[key.board]++
	}

	for _, board := range t.machine.Boards() {
		metrics = append(metrics,
			gauge(descBoardTags, float64(t.freeTagIDs(board).Size()), board, "free"),
			gauge(descBoardTags, float64(ipTags[board]), board, "ip"),
			gauge(descBoardTags, float64(reverseTags[board]), board, "reverse"),
		)
	}

	metrics = append(metrics, gauge(descChipsAvailable, float64(len(t.available))))

	return metrics
}

func gauge(desc int, value float64, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(
		descriptors[desc],
		prometheus.GaugeValue,
		value,
		labels...,
	)
}
