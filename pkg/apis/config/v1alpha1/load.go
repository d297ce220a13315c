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
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
	"sigs.k8s.io/yaml"
)

// Load reads and validates a ChipAllocator document from the given file.
func Load(path string) (*ChipAllocator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration %q", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid configuration %q", path)
	}

	return cfg, nil
}

// Parse decodes and validates a ChipAllocator document. The document is
// read as YAML 1.2, so plain keys like y, n, on or off stay strings.
func Parse(data []byte) (*ChipAllocator, error) {
	doc, err := toJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}

	cfg := &ChipAllocator{}
	if err := yaml.UnmarshalStrict(doc, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// toJSON converts a YAML 1.2 document to JSON. sigs.k8s.io/yaml resolves
// keys with YAML 1.1 rules, where a bare y is the boolean true.
func toJSON(data []byte) ([]byte, error) {
	var obj interface{}
	if err := yamlv3.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Validate checks the document for errors, reporting all of them.
func (c *ChipAllocator) Validate() error {
	var errs *multierror.Error

	if c.APIVersion != "" && c.APIVersion != GroupVersion {
		errs = multierror.Append(errs, fmt.Errorf("unsupported apiVersion %q", c.APIVersion))
	}
	if c.Kind != "" && c.Kind != ChipAllocatorKind {
		errs = multierror.Append(errs, fmt.Errorf("unsupported kind %q", c.Kind))
	}

	spec := &c.Spec
	if len(spec.Machine.Chips) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("machine has no chips"))
	}
	if spec.Tracker.Horizon < 0 {
		errs = multierror.Append(errs, fmt.Errorf("negative horizon %d", spec.Tracker.Horizon))
	}

	names := map[string]struct{}{}
	for i, p := range spec.Workload.Placements {
		if p.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("placement #%d has no name", i))
		} else if _, ok := names[p.Name]; ok {
			errs = multierror.Append(errs, fmt.Errorf("duplicate placement %q", p.Name))
		}
		names[p.Name] = struct{}{}

		if len(p.Units) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("placement %q has no units", p.Name))
		}
		for j, u := range p.Units {
			if err := u.validate(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("placement %q unit #%d: %w", p.Name, j, err))
			}
		}
	}

	return errs.ErrorOrNil()
}

func (u *Unit) validate() error {
	if isNegative(u.SDRAM) || isNegative(u.SDRAMPerTimestep) {
		return fmt.Errorf("negative SDRAM demand")
	}
	for _, tag := range u.IPTags {
		if tag.IPAddress == "" {
			return fmt.Errorf("IP tag without IP address")
		}
	}
	return nil
}

func isNegative(q *resource.Quantity) bool {
	return q != nil && q.Sign() < 0
}
