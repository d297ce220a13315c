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

package klogcontrol

import (
	"strconv"
)

// Config represents the configurable klog flags. Unset fields leave the
// corresponding flag untouched.
//
// +k8s:deepcopy-gen=true
type Config struct {
	// +optional
	Add_dir_header *bool `json:"add_dir_header,omitempty"`
	// +optional
	Alsologtostderr *bool `json:"alsologtostderr,omitempty"`
	// +optional
	Log_file *string `json:"log_file,omitempty"`
	// +optional
	Logtostderr *bool `json:"logtostderr,omitempty"`
	// +optional
	One_output *bool `json:"one_output,omitempty"`
	// +optional
	Skip_headers *bool `json:"skip_headers,omitempty"`
	// +optional
	Skip_log_headers *bool `json:"skip_log_headers,omitempty"`
	// +optional
	Stderrthreshold *string `json:"stderrthreshold,omitempty"`
	// +optional
	V *int `json:"v,omitempty"`
	// +optional
	Vmodule *string `json:"vmodule,omitempty"`
}

// GetByFlag returns the configured value for the given klog flag and
// whether the flag was set at all.
func (c *Config) GetByFlag(name string) (string, bool) {
	if c == nil {
		return "", false
	}

	switch name {
	case "add_dir_header":
		return boolFlag(c.Add_dir_header)
	case "alsologtostderr":
		return boolFlag(c.Alsologtostderr)
	case "log_file":
		return stringFlag(c.Log_file)
	case "logtostderr":
		return boolFlag(c.Logtostderr)
	case "one_output":
		return boolFlag(c.One_output)
	case "skip_headers":
		return boolFlag(c.Skip_headers)
	case "skip_log_headers":
		return boolFlag(c.Skip_log_headers)
	case "stderrthreshold":
		return stringFlag(c.Stderrthreshold)
	case "v":
		if c.V == nil {
			return "", false
		}
		return strconv.Itoa(*c.V), true
	case "vmodule":
		return stringFlag(c.Vmodule)
	}

	return "", false
}

func boolFlag(v *bool) (string, bool) {
	if v == nil {
		return "", false
	}
	return strconv.FormatBool(*v), true
}

func stringFlag(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}
