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
	"sort"
)

// DumpState dumps the state of chips and tags if detailed debugging is
// enabled.
func (t *Tracker) DumpState(context ...interface{}) {
	if !details.DebugEnabled() {
		return
	}

	prefix := formatPrefix(context...)
	t.DumpChips(prefix)
	t.DumpTags(prefix)
}

// DumpChips dumps the state of every chip in use.
func (t *Tracker) DumpChips(context ...interface{}) {
	if !details.DebugEnabled() {
		return
	}

	prefix := formatPrefix(context...)

	used := 0
	for _, cs := range t.chips {
		if cs.allocated.IsEmpty() {
			continue
		}
		if used == 0 {
			details.Debug("%schips in use:", prefix)
		}
		used++
		details.Debug("%s  - %s", prefix, cs)
	}

	if used == 0 {
		details.Debug("%sno chips in use", prefix)
	}
	details.Debug("%s%d of %d chips available", prefix, len(t.available), len(t.chips))
}

// DumpTags dumps the allocated IP and reverse IP tags.
func (t *Tracker) DumpTags(context ...interface{}) {
	if !details.DebugEnabled() {
		return
	}

	prefix := formatPrefix(context...)

	if len(t.ipTags) == 0 && len(t.reverseTags) == 0 {
		details.Debug("%sno tags allocated", prefix)
		return
	}

	keys := make([]tagKey, 0, len(t.ipTags))
	for key := range t.ipTags {
		keys = append(keys, key)
	}
	sortTagKeys(keys)
	for _, key := range keys {
		details.Debug("%s  - IP tag %s", prefix, t.ipTags[key])
	}

	keys = keys[:0]
	for key := range t.reverseTags {
		keys = append(keys, key)
	}
	sortTagKeys(keys)
	for _, key := range keys {
		rt := t.reverseTags[key]
		port := "*"
		if rt.port != nil {
			port = fmt.Sprintf("%d", *rt.port)
		}
		details.Debug("%s  - reverse IP tag %s/%d <= port %s, SDP port %d", prefix,
			key.board, key.tag, port, rt.sdpPort)
	}
}

func sortTagKeys(keys []tagKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].board != keys[j].board {
			return keys[i].board < keys[j].board
		}
		return keys[i].tag < keys[j].tag
	})
}

func formatPrefix(args ...interface{}) string {
	if len(args) == 0 {
		return ""
	}

	format, ok := args[0].(string)
	if !ok {
		return "%%(!tracker:Bad-Prefix)"
	}

	if len(args) == 1 {
		return format
	}

	return fmt.Sprintf(format, args[1:]...)
}
