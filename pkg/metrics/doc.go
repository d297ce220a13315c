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


// Package metrics provides a thin layer of grouping and namespacing on top
// of prometheus collectors. Collectors are registered by name into groups.
// A Gatherer enables the collectors matching a set of globs and prefixes
// their metrics with a common namespace and, unless opted out, with the
// name of their group.
//
//	reg := metrics.NewRegistry()
//	reg.Register("tracker", tracker.NewCollector(t),
//	    metrics.WithGroup("allocation"))
//	g, err := reg.NewGatherer(metrics.WithNamespace("chipmap"),
//	    metrics.WithMetrics([]string{"*"}))
//	if err != nil {
//	    ...
//	}
//	err = g.WriteText(os.Stdout)
package metrics
