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
	"github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/log/klogcontrol"
)

// Config is the logger configuration.
//
// +k8s:deepcopy-gen=true
type Config struct {
	// Level is the lowest severity of messages emitted, one of debug,
	// info, warn or error. Debug messages also need to be enabled per
	// source using Debug.
	// +kubebuilder:validation:Enum=debug;info;warn;error
	// +optional
	Level string `json:"level,omitempty"`
	// Debug turns on debug messages matching listed logger sources, for
	// instance "on:tracker,intervals" or "all".
	// +optional
	Debug []string `json:"debug,omitempty"`
	// LogSource controls whether messages are prefixed with their logger source.
	// +optional
	LogSource bool `json:"source,omitempty"`
	// Klog configures the klog backend.
	// +optional
	Klog klogcontrol.Config `json:"klog,omitempty"`
}
