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
	"os"
	"strings"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/log"
	"github.com/chipmap/chipmap/pkg/log/klogcontrol"
	"github.com/chipmap/chipmap/pkg/utils"
)

const (
	// DefaultLevel is the default logging severity level.
	DefaultLevel = LevelInfo
	// debugEnvVar seeds the debug sources, for instance "tracker,intervals".
	debugEnvVar = "LOGGER_DEBUG"
	// logSourceEnvVar turns on source prefixing if set.
	logSourceEnvVar = "LOGGER_LOG_SOURCE"
)

// srcmap maps logger sources to their debug state. The source "*" sets
// the state of sources not listed.
type srcmap map[string]bool

var (
	klogctl = klogcontrol.Get()
)

// parse adds a comma-separated list of sources to the map. A source can
// carry an on: or off: prefix which then applies to the rest of the
// list, sources without one are turned on. "all" stands for every source.
func (m srcmap) parse(value string) error {
	enabled := true
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if state, src, ok := strings.Cut(entry, ":"); ok {
			on, err := utils.ParseEnabled(state)
			if err != nil {
				return loggerError("invalid state %q in debug setting %q", state, entry)
			}
			enabled, entry = on, strings.TrimSpace(src)
		}
		switch entry {
		case "":
			continue
		case "all":
			entry = "*"
		}
		m[entry] = enabled
	}
	return nil
}

// Configure applies the given configuration, replacing any earlier one.
func Configure(cfg *cfgapi.Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	debug := srcmap{}
	for _, value := range cfg.Debug {
		if err := debug.parse(value); err != nil {
			return err
		}
	}

	log.Lock()
	log.setDbgMap(debug)
	log.setPrefix(cfg.LogSource)
	log.Unlock()
	log.level.Store(int32(level))

	deflog.Debug("logging configured, level %s, debug %v", level, cfg.Debug)

	return klogctl.Configure(&cfg.Klog)
}

func init() {
	cfg := &cfgapi.Config{
		LogSource: os.Getenv(logSourceEnvVar) != "",
	}
	if value, ok := os.LookupEnv(debugEnvVar); ok {
		cfg.Debug = []string{value}
	}

	if err := Configure(cfg); err != nil {
		Default().Error("failed to configure logging from the environment: %v", err)
	}
}
