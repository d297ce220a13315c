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
	"fmt"
	"strings"
)

var (
	// ErrFailedOption is returned when a tracker option cannot be applied.
	ErrFailedOption = fmt.Errorf("tracker: failed to apply option")
	// ErrInvalidConstraint is returned for contradicting constraints and
	// for constraints referring to unknown chips or boards.
	ErrInvalidConstraint = fmt.Errorf("tracker: invalid constraint")
	// ErrInvalidRequest is returned for malformed resource requests.
	ErrInvalidRequest = fmt.Errorf("tracker: invalid request")
	// ErrResourceUnavailable is returned when no chip can satisfy a request.
	ErrResourceUnavailable = fmt.Errorf("tracker: resources unavailable")
	// ErrInvariantViolation is returned when unallocating something which
	// was never allocated.
	ErrInvariantViolation = fmt.Errorf("tracker: invariant violation")
)

// Diagnostics summarizes the resources left in a set of chips.
type Diagnostics struct {
	// Chips is the number of chips with at least one free processor.
	Chips int
	// FreeCores is the total number of free processors.
	FreeCores int
	// FreeTags is the total number of free tags on the boards of the chips.
	FreeTags int
	// MaxFreeSDRAM is the largest amount of free SDRAM on a single chip.
	MaxFreeSDRAM int64
}

// String returns a string representation of the diagnostics.
func (d Diagnostics) String() string {
	return fmt.Sprintf("%d chips with %d free cores, %d free tags, at most %s free SDRAM",
		d.Chips, d.FreeCores, d.FreeTags, prettySize(d.MaxFreeSDRAM))
}

// UnavailableError is returned when no chip can satisfy a request. It
// describes why chips were rejected and what was left to choose from.
type UnavailableError struct {
	// Members is the number of requests which had to fit on one chip.
	Members int
	// Rejected counts rejected chips by the reason of rejection.
	Rejected map[string]int
	// Candidates summarizes the chips which were eligible for the request.
	Candidates Diagnostics
	// Machine summarizes the whole machine.
	Machine Diagnostics
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	reasons := make([]string, 0, len(e.Rejected))
	for _, r := range sortedKeys(e.Rejected) {
		reasons = append(reasons, fmt.Sprintf("%s (%d chips)", r, e.Rejected[r]))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no eligible chips")
	}

	return fmt.Sprintf("%s: %d request(s) do not fit on a single chip: %s; candidates: %s; machine: %s",
		ErrResourceUnavailable, e.Members, strings.Join(reasons, ", "), e.Candidates, e.Machine)
}

// Unwrap returns ErrResourceUnavailable.
func (e *UnavailableError) Unwrap() error {
	return ErrResourceUnavailable
}

func invalidConstraint(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConstraint}, args...)...)
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidRequest}, args...)...)
}

func invariantViolation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvariantViolation}, args...)...)
}
