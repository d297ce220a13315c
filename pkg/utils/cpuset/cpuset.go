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

package cpuset

import (
	"k8s.io/utils/cpuset"
)

// CPUSet is an alias for k8s.io/utils/cpuset.CPUSet. Within chipmap it
// holds processor ids of a single chip.
type CPUSet = cpuset.CPUSet

// New is an alias for cpuset.New.
var New = cpuset.New

// TakeFirst returns the n smallest ids of the set as a new set together
// with the remaining ids. It returns false if the set has fewer than n
// ids.
func TakeFirst(cset cpuset.CPUSet, n int) (cpuset.CPUSet, cpuset.CPUSet, bool) {
	if n > cset.Size() {
		return cpuset.New(), cset, false
	}
	taken := cpuset.New(cset.List()[:n]...)
	return taken, cset.Difference(taken), true
}
