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
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/log"
	"github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/machine"
	"github.com/chipmap/chipmap/pkg/apis/config/v1alpha1/tracker"
)

const (
	// GroupVersion is the API version of configuration documents.
	GroupVersion = "config.chipmap.io/v1alpha1"
	// ChipAllocatorKind is the kind of the chip allocator document.
	ChipAllocatorKind = "ChipAllocator"
)

// ChipAllocator represents the configuration of a chip allocation run.
// +kubebuilder:object:root=true
type ChipAllocator struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ChipAllocatorSpec `json:"spec"`
}

// ChipAllocatorSpec describes the machine, the tracker and the workload
// to place.
type ChipAllocatorSpec struct {
	// Machine describes the chips resources are allocated from.
	Machine machine.Config `json:"machine"`
	// +optional
	Tracker tracker.Config `json:"tracker,omitempty"`
	// +optional
	Log log.Config `json:"log,omitempty"`
	// Workload lists the units to place, in order.
	// +optional
	Workload Workload `json:"workload,omitempty"`
}

// Workload is an ordered list of placements.
type Workload struct {
	Placements []Placement `json:"placements,omitempty"`
}

// Placement is a single unit, or a group of units which must all be
// placed on the same chip.
type Placement struct {
	// Name identifies the placement in output and errors.
	// +kubebuilder:validation:Required
	Name string `json:"name"`
	// Units lists the units of the placement. More than one unit makes
	// this a group placement.
	// +kubebuilder:validation:MinItems=1
	Units []Unit `json:"units"`
}

// Unit describes the resources and constraints of a single unit.
type Unit struct {
	// +optional
	Name string `json:"name,omitempty"`
	// SDRAM is the fixed SDRAM demand of the unit.
	// +optional
	SDRAM *resource.Quantity `json:"sdram,omitempty"`
	// SDRAMPerTimestep is the SDRAM demand per planned timestep.
	// +optional
	SDRAMPerTimestep *resource.Quantity `json:"sdramPerTimestep,omitempty"`
	// Chip pins the unit to a chip, and optionally to a processor.
	// +optional
	Chip *ChipPin `json:"chip,omitempty"`
	// Board pins the unit to the board with the given IP address.
	// +optional
	Board string `json:"board,omitempty"`
	// Near prefers chips close to the given chip.
	// +optional
	Near *machine.ChipRef `json:"near,omitempty"`
	// +optional
	IPTags []IPTag `json:"ipTags,omitempty"`
	// +optional
	ReverseIPTags []ReverseIPTag `json:"reverseIPTags,omitempty"`
}

// ChipPin pins a unit to a chip.
type ChipPin struct {
	X int `json:"x"`
	Y int `json:"y"`
	// +optional
	Processor *int `json:"processor,omitempty"`
}

// IPTag describes an outbound tag needed by a unit.
type IPTag struct {
	IPAddress string `json:"ipAddress"`
	// +optional
	Port *int `json:"port,omitempty"`
	// +optional
	StripSDP bool `json:"stripSDP,omitempty"`
	// +optional
	Tag *int `json:"tag,omitempty"`
	// +kubebuilder:default=default
	// +optional
	TrafficIdentifier string `json:"trafficIdentifier,omitempty"`
}

// ReverseIPTag describes an inbound tag needed by a unit.
type ReverseIPTag struct {
	// +optional
	Port *int `json:"port,omitempty"`
	SDPPort int `json:"sdpPort"`
	// +optional
	Tag *int `json:"tag,omitempty"`
}
