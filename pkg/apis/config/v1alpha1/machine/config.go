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
	"k8s.io/apimachinery/pkg/api/resource"
)

// Config describes the chips of a machine. Chips are registered in the
// order they are listed, which is also the order the tracker tries them.
//
// +k8s:deepcopy-gen=true
type Config struct {
	// Defaults are used for every chip attribute left unset in Chips.
	// +optional
	Defaults ChipDefaults `json:"defaults,omitempty"`
	// Chips lists the chips of the machine.
	// +kubebuilder:validation:MinItems=1
	Chips []Chip `json:"chips"`
}

// ChipDefaults are the default attributes of chips.
type ChipDefaults struct {
	// Processors is the total number of processors on a chip.
	// +kubebuilder:default=18
	// +optional
	Processors *int `json:"processors,omitempty"`
	// Monitors lists the ids of the monitor processors on a chip.
	// +kubebuilder:default={0}
	// +optional
	Monitors []int `json:"monitors,omitempty"`
	// SDRAM is the amount of SDRAM available for allocation on a chip.
	// +optional
	SDRAM *resource.Quantity `json:"sdram,omitempty"`
	// DTCM is the amount of data tightly coupled memory per processor.
	// +optional
	DTCM *resource.Quantity `json:"dtcm,omitempty"`
	// CPUCycles is the number of processor cycles available per tick.
	// +optional
	CPUCycles *int64 `json:"cpuCycles,omitempty"`
	// TagIDs are the tag ids of Ethernet-connected chips.
	// +optional
	TagIDs []int `json:"tagIDs,omitempty"`
}

// Chip describes a single chip.
type Chip struct {
	// X is the horizontal coordinate of the chip.
	X int `json:"x"`
	// Y is the vertical coordinate of the chip.
	Y int `json:"y"`
	// Processors overrides the default processor count.
	// +optional
	Processors *int `json:"processors,omitempty"`
	// Monitors overrides the default monitor processor ids.
	// +optional
	Monitors []int `json:"monitors,omitempty"`
	// SDRAM overrides the default SDRAM amount.
	// +optional
	SDRAM *resource.Quantity `json:"sdram,omitempty"`
	// DTCM overrides the default per-processor DTCM amount.
	// +optional
	DTCM *resource.Quantity `json:"dtcm,omitempty"`
	// CPUCycles overrides the default per-processor cycles per tick.
	// +optional
	CPUCycles *int64 `json:"cpuCycles,omitempty"`
	// Ethernet is the nearest Ethernet-connected chip. It defaults to the
	// chip itself if the chip has an IP address.
	// +optional
	Ethernet *ChipRef `json:"ethernet,omitempty"`
	// IPAddress is the address of the Ethernet connection of the chip.
	// +optional
	IPAddress string `json:"ipAddress,omitempty"`
	// TagIDs overrides the default tag ids of an Ethernet-connected chip.
	// +optional
	TagIDs []int `json:"tagIDs,omitempty"`
}

// ChipRef refers to a chip by its coordinates.
type ChipRef struct {
	X int `json:"x"`
	Y int `json:"y"`
}
