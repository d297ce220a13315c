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

	idset "github.com/intel/goresctrl/pkg/utils"
)

type (
	tagKey struct {
		board string
		tag   int
	}
	portKey struct {
		board string
		port  int
	}
	trafficKey struct {
		ip      string
		traffic string
	}
)

// PhysicalTag is an IP tag of a board shared by one or more units with
// the same IP address and traffic identifier.
type PhysicalTag struct {
	Board             string
	Tag               int
	IPAddress         string
	TrafficIdentifier string
	StripSDP          bool
	Port              *int
	refs              int
}

// Refs returns the number of units sharing the tag.
func (p *PhysicalTag) Refs() int {
	return p.refs
}

// String returns a string representation of the tag.
func (p *PhysicalTag) String() string {
	port := "*"
	if p.Port != nil {
		port = fmt.Sprintf("%d", *p.Port)
	}
	return fmt.Sprintf("%s/%d => %s:%s (%s, strip:%v, refs:%d)", p.Board, p.Tag,
		p.IPAddress, port, p.TrafficIdentifier, p.StripSDP, p.refs)
}

func (p *PhysicalTag) acquire() {
	p.refs++
}

// release drops a reference, returning true if that was the last one.
func (p *PhysicalTag) release() bool {
	if p.refs > 0 {
		p.refs--
	}
	return p.refs == 0
}

// sharable returns true if a request for an IP tag, on the given board
// if pinned to one, can use this tag. The IP address and traffic
// identifier are expected to match. Every other field must be unset on
// one side or equal on both.
func (p *PhysicalTag) sharable(req IPTag, board string) bool {
	if board != "" && board != p.Board {
		return false
	}
	if req.Tag != nil && *req.Tag != p.Tag {
		return false
	}
	if req.StripSDP != p.StripSDP {
		return false
	}
	if req.Port != nil && p.Port != nil && *req.Port != *p.Port {
		return false
	}
	return true
}

func (p *PhysicalTag) binding() TagBinding {
	return TagBinding{Board: p.Board, Tag: p.Tag}
}

func (p *PhysicalTag) clone() *PhysicalTag {
	c := *p
	if p.Port != nil {
		port := *p.Port
		c.Port = &port
	}
	return &c
}

// reverseTag is an exclusively owned reverse IP tag.
type reverseTag struct {
	port    *int
	sdpPort int
}

// pool returns the free tag ids of a board, creating the pool on first use.
func (t *Tracker) pool(board string) idset.IDSet {
	if ids, ok := t.pools[board]; ok {
		return ids
	}
	ids := t.initialPool(board)
	t.pools[board] = ids
	return ids
}

// freeTagIDs returns the free tag ids of a board without creating its pool.
func (t *Tracker) freeTagIDs(board string) idset.IDSet {
	if ids, ok := t.pools[board]; ok {
		return ids
	}
	return t.initialPool(board)
}

func (t *Tracker) initialPool(board string) idset.IDSet {
	ids := idset.NewIDSet()
	if chip, ok := t.machine.BoardChip(board); ok {
		ids.Add(chip.TagIDs()...)
	}
	for _, b := range t.prealloc.Tags {
		if b.Board == board {
			ids.Del(b.Tag)
		}
	}
	return ids
}

// tagOverlay collects tags and ports planned for, but not yet committed
// by, a single allocation. Narrowed holds the port an existing portless
// tag adopts when a planned sharer brings one.
type tagOverlay struct {
	tags     map[tagKey]struct{}
	ports    map[portKey]struct{}
	fresh    []*PhysicalTag
	narrowed map[*PhysicalTag]int
}

func newTagOverlay() *tagOverlay {
	return &tagOverlay{
		tags:     make(map[tagKey]struct{}),
		ports:    make(map[portKey]struct{}),
		narrowed: make(map[*PhysicalTag]int),
	}
}

// pickTagID picks the requested or the lowest free tag id of a board.
func (t *Tracker) pickTagID(board string, tag *int, ov *tagOverlay) (int, bool) {
	free := t.freeTagIDs(board)
	if tag != nil {
		_, taken := ov.tags[tagKey{board, *tag}]
		return *tag, free.Has(*tag) && !taken
	}
	for _, id := range free.SortedMembers() {
		if _, taken := ov.tags[tagKey{board, id}]; !taken {
			return id, true
		}
	}
	return 0, false
}

// planIPTag finds a tag for an IP tag request on a chip of the given
// board. An existing tag on the same board is preferred over one on
// another board, which is preferred over a fresh tag. Fresh tags are
// recorded in the overlay. A request with a port sharing a portless tag
// narrows the tag to that port once committed.
func (t *Tracker) planIPTag(board, pinned string, req IPTag, ov *tagOverlay) (plannedTag, bool) {
	key := req.trafficKey()

	var other *PhysicalTag
	check := func(p *PhysicalTag) bool {
		if !p.sharable(req, pinned) {
			return false
		}
		if port, ok := ov.narrowed[p]; ok && req.Port != nil && *req.Port != port {
			return false
		}
		if p.Board == board {
			return true
		}
		if other == nil {
			other = p
		}
		return false
	}

	share := func(p *PhysicalTag, fresh bool) (plannedTag, bool) {
		pt := plannedTag{tag: p, fresh: fresh}
		if p.Port == nil && req.Port != nil {
			port := *req.Port
			ov.narrowed[p] = port
			pt.narrow = &port
		}
		return pt, true
	}

	for _, p := range t.byTraffic[key] {
		if check(p) {
			return share(p, false)
		}
	}
	for _, p := range ov.fresh {
		if p.IPAddress == key.ip && p.TrafficIdentifier == key.traffic && check(p) {
			return share(p, false)
		}
	}
	if other != nil {
		return share(other, false)
	}

	id, ok := t.pickTagID(board, req.Tag, ov)
	if !ok {
		return plannedTag{}, false
	}

	tag := &PhysicalTag{
		Board:             board,
		Tag:               id,
		IPAddress:         key.ip,
		TrafficIdentifier: key.traffic,
		StripSDP:          req.StripSDP,
	}
	if req.Port != nil {
		port := *req.Port
		tag.Port = &port
	}
	ov.tags[tagKey{board, id}] = struct{}{}
	ov.fresh = append(ov.fresh, tag)

	return plannedTag{tag: tag, fresh: true}, true
}

// planReverseIPTag finds a tag for a reverse IP tag request on a board.
func (t *Tracker) planReverseIPTag(board string, req ReverseIPTag, ov *tagOverlay) (TagBinding, string) {
	if req.Port != nil {
		key := portKey{board, *req.Port}
		if _, taken := t.reversePorts[key]; taken {
			return TagBinding{}, fmt.Sprintf("port %d in use", *req.Port)
		}
		if _, taken := ov.ports[key]; taken {
			return TagBinding{}, fmt.Sprintf("port %d in use", *req.Port)
		}
	}

	id, ok := t.pickTagID(board, req.Tag, ov)
	if !ok {
		return TagBinding{}, "no free tag"
	}

	ov.tags[tagKey{board, id}] = struct{}{}
	if req.Port != nil {
		ov.ports[portKey{board, *req.Port}] = struct{}{}
	}

	return TagBinding{Board: board, Tag: id}, ""
}

// addIPTag registers a fresh IP tag, taking its id from the board pool.
func (t *Tracker) addIPTag(p *PhysicalTag) {
	key := tagKey{p.Board, p.Tag}
	t.pool(p.Board).Del(p.Tag)
	t.ipTags[key] = p
	tk := trafficKey{p.IPAddress, p.TrafficIdentifier}
	t.byTraffic[tk] = append(t.byTraffic[tk], p)
}

// delIPTag unregisters an IP tag, returning its id to the board pool.
func (t *Tracker) delIPTag(p *PhysicalTag) {
	delete(t.ipTags, tagKey{p.Board, p.Tag})
	tk := trafficKey{p.IPAddress, p.TrafficIdentifier}
	tags := t.byTraffic[tk]
	for i, o := range tags {
		if o == p {
			tags = append(tags[:i], tags[i+1:]...)
			break
		}
	}
	if len(tags) == 0 {
		delete(t.byTraffic, tk)
	} else {
		t.byTraffic[tk] = tags
	}
	t.pool(p.Board).Add(p.Tag)
}

func (t *Tracker) addReverseIPTag(b TagBinding, req ReverseIPTag) {
	t.pool(b.Board).Del(b.Tag)
	rt := &reverseTag{sdpPort: req.SDPPort}
	if req.Port != nil {
		port := *req.Port
		rt.port = &port
		t.reversePorts[portKey{b.Board, port}] = struct{}{}
	}
	t.reverseTags[tagKey{b.Board, b.Tag}] = rt
}

func (t *Tracker) delReverseIPTag(b TagBinding) {
	key := tagKey{b.Board, b.Tag}
	if rt := t.reverseTags[key]; rt != nil && rt.port != nil {
		delete(t.reversePorts, portKey{b.Board, *rt.port})
	}
	delete(t.reverseTags, key)
	t.pool(b.Board).Add(b.Tag)
}
