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
	"k8s.io/apimachinery/pkg/api/resource"
)

// Config is the resource tracker configuration.
//
// +k8s:deepcopy-gen=true
type Config struct {
	// Horizon is the number of timesteps per-timestep SDRAM demand is
	// planned for.
	// +kubebuilder:validation:Minimum=0
	// +optional
	Horizon int64 `json:"horizon,omitempty"`
	// Preallocated is the inventory of resources reserved before any
	// allocation takes place.
	// +optional
	Preallocated *Preallocated `json:"preallocated,omitempty"`
}

// Preallocated describes resources reserved outside normal allocation.
type Preallocated struct {
	// SDRAMAllChips is reserved on every chip.
	// +optional
	SDRAMAllChips *resource.Quantity `json:"sdramAllChips,omitempty"`
	// CoresAllChips is the number of processors reserved on every chip.
	// +optional
	CoresAllChips int `json:"coresAllChips,omitempty"`
	// Chips lists reservations specific to single chips.
	// +optional
	Chips []PreallocatedChip `json:"chips,omitempty"`
	// Tags lists tags reserved on boards.
	// +optional
	Tags []PreallocatedTag `json:"tags,omitempty"`
}

// PreallocatedChip describes resources reserved on a single chip.
type PreallocatedChip struct {
	X int `json:"x"`
	Y int `json:"y"`
	// SDRAM is reserved on the chip.
	// +optional
	SDRAM *resource.Quantity `json:"sdram,omitempty"`
	// Cores is the number of processors reserved on the chip.
	// +optional
	Cores int `json:"cores,omitempty"`
	// Processors are the ids of specific processors reserved on the chip.
	// +optional
	Processors []int `json:"processors,omitempty"`
}

// PreallocatedTag is a tag reserved on a board.
type PreallocatedTag struct {
	// Board is the IP address of the board.
	Board string `json:"board"`
	// Tag is the id of the reserved tag.
	Tag int `json:"tag"`
}
