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

// chip-allocator places a workload described in a configuration file on
// the chips of a machine and prints the resulting resource bindings.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1"
	logger "github.com/chipmap/chipmap/pkg/log"
	"github.com/chipmap/chipmap/pkg/machine"
	"github.com/chipmap/chipmap/pkg/metrics"
	"github.com/chipmap/chipmap/pkg/tracker"
)

var (
	log = logger.Get("chip-allocator")
)

func main() {
	configFlag := flag.String("config", "", "ChipAllocator configuration file")
	metricsFlag := flag.Bool("metrics", false, "Print tracker metrics after placement")
	dumpFlag := flag.Bool("dump", false, "Dump tracker state after every change")
	flag.Parse()

	if *configFlag == "" {
		fmt.Fprintf(os.Stderr, "missing -config\n")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configFlag, *metricsFlag, *dumpFlag, os.Stdout); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(path string, withMetrics, dump bool, out io.Writer) error {
	cfg, err := cfgapi.Load(path)
	if err != nil {
		return err
	}

	if err := logger.Configure(&cfg.Spec.Log); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	if dump {
		logger.EnableDebug("tracker", "tracker-details")
	}

	m, err := machine.FromConfig(&cfg.Spec.Machine)
	if err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}

	trk, err := tracker.New(m, tracker.WithConfig(&cfg.Spec.Tracker))
	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}

	log.Info("placing %d placements on %d chips", len(cfg.Spec.Workload.Placements), m.Len())

	if err := placeWorkload(trk, &cfg.Spec.Workload, out); err != nil {
		return err
	}

	fmt.Fprintf(out, "chips used: %d, left: %s\n", len(trk.ChipsUsed()), trk.Diagnostics())

	if withMetrics {
		return printMetrics(trk, out)
	}

	return nil
}

func printMetrics(trk *tracker.Tracker, out io.Writer) error {
	reg := metrics.NewRegistry()
	err := reg.Register("tracker", tracker.NewCollector(trk),
		metrics.WithGroup("tracker"),
		metrics.WithCollectorOptions(metrics.WithoutSubsystem()),
	)
	if err != nil {
		return fmt.Errorf("failed to register metrics collector: %w", err)
	}

	g, err := reg.NewGatherer(
		metrics.WithNamespace("chipmap"),
		metrics.WithMetrics([]string{"tracker"}),
	)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}

	return g.WriteText(out)
}
