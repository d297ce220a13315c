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

package machine

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/api/resource"

	cfgapi "github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/machine"
)

// DefaultSDRAM is the default SDRAM capacity of a chip.
const DefaultSDRAM = 117 * 1024 * 1024

// FromConfig creates a machine from its configuration.
func FromConfig(cfg *cfgapi.Config) (*Machine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no machine configuration", ErrInvalidMachine)
	}

	var (
		errs  *multierror.Error
		chips = make([]*Chip, 0, len(cfg.Chips))
		defs  = &cfg.Defaults
	)

	for _, cc := range cfg.Chips {
		id := ChipID{X: cc.X, Y: cc.Y}

		n := DefaultProcessors
		switch {
		case cc.Processors != nil:
			n = *cc.Processors
		case defs.Processors != nil:
			n = *defs.Processors
		}

		monitors := []int{0}
		switch {
		case cc.Monitors != nil:
			monitors = cc.Monitors
		case defs.Monitors != nil:
			monitors = defs.Monitors
		}

		if n < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%w: chip %s has %d processors",
				ErrInvalidMachine, id, n))
			continue
		}
		for _, m := range monitors {
			if m < 0 || m >= n {
				errs = multierror.Append(errs, fmt.Errorf("%w: chip %s has no monitor processor %d",
					ErrInvalidMachine, id, m))
			}
		}

		procs := NewProcessors(n, monitors...)
		dtcm := quantity(DefaultDTCM, defs.DTCM, cc.DTCM)
		cycles := int64(DefaultCPUCycles)
		switch {
		case cc.CPUCycles != nil:
			cycles = *cc.CPUCycles
		case defs.CPUCycles != nil:
			cycles = *defs.CPUCycles
		}
		for i := range procs {
			procs[i].DTCM = dtcm
			procs[i].CPUCycles = cycles
		}

		eth := id
		switch {
		case cc.Ethernet != nil:
			eth = ChipID{X: cc.Ethernet.X, Y: cc.Ethernet.Y}
		case cc.IPAddress == "":
			errs = multierror.Append(errs, fmt.Errorf("%w: chip %s has no IP address or Ethernet chip",
				ErrInvalidMachine, id))
			continue
		}

		var opts []ChipOption
		if cc.IPAddress != "" {
			opts = append(opts, WithIPAddress(cc.IPAddress))
			switch {
			case cc.TagIDs != nil:
				opts = append(opts, WithTagIDs(cc.TagIDs...))
			case defs.TagIDs != nil:
				opts = append(opts, WithTagIDs(defs.TagIDs...))
			}
		}

		sdram := quantity(DefaultSDRAM, defs.SDRAM, cc.SDRAM)
		chips = append(chips, NewChip(cc.X, cc.Y, sdram, procs, eth, opts...))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return New(chips...)
}

// quantity returns the value of the first non-nil quantity, checking them
// in reverse order, or def if all are nil.
func quantity(def int64, qs ...*resource.Quantity) int64 {
	for i := len(qs) - 1; i >= 0; i-- {
		if qs[i] != nil {
			return qs[i].Value()
		}
	}
	return def
}
