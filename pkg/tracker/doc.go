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

// Package tracker implements the bookkeeping of processors, SDRAM and
// Ethernet tags of a machine while units are placed on its chips.
//
// A Tracker is created once for a placement run from a machine snapshot
// and an optional inventory of preallocated resources. Placement code then
// asks the tracker to allocate resources for single units or for groups
// of units which must share a chip. Every successful allocation returns
// an Allocation binding the unit to a chip, a processor and a set of
// (board, tag) pairs. Passing that binding back to Unallocate restores
// the tracker to the state before the allocation.
//
// Candidate chips are tried in registration order, or by distance from a
// chip given by a RadialFromChip constraint, and the first chip which can
// satisfy the whole request wins. Checking a chip never modifies the
// tracker. Changes are committed only once a chip has been found for the
// whole request, so a failed allocation leaves no trace.
//
// IP tags with the same IP address and traffic identifier can be shared
// by several units. Shared tags are reference counted and go back to the
// tag pool of their board once the last user is unallocated. Reverse IP
// tags are never shared.
//
// A Tracker is not safe for concurrent use.
package tracker
