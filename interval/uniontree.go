// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"github.com/biogo/store/llrb"
)

// span is a half-open [start, end) interval stored in a UnionTree.  Spans in
// a tree are disjoint and non-touching, so start alone is a unique key.
type span struct {
	start PosType
	end   PosType
}

// Compare compares two span objects for use in llrb.
func (s span) Compare(c2 llrb.Comparable) int {
	return int(s.start) - int(c2.(span).start)
}

// UnionTree is a growing interval-union.  Unlike BEDUnion, intervals can be
// inserted in any order after construction; each insertion and each
// containment query costs O(log n) in the number of disjoint intervals.  The
// zero value is an empty union.
type UnionTree struct {
	tree llrb.Tree
}

// Insert adds [start, end) to the union, merging it with every interval it
// overlaps or touches.  Empty intervals are ignored.
func (u *UnionTree) Insert(start, end PosType) {
	if end <= start {
		return
	}
	if c := u.tree.Floor(span{start: start}); c != nil {
		if prev := c.(span); prev.end >= start {
			start = prev.start
			if prev.end > end {
				end = prev.end
			}
			u.tree.Delete(prev)
		}
	}
	for {
		c := u.tree.Ceil(span{start: start})
		if c == nil {
			break
		}
		next := c.(span)
		if next.start > end {
			break
		}
		if next.end > end {
			end = next.end
		}
		u.tree.Delete(next)
	}
	u.tree.Insert(span{start: start, end: end})
}

// Contains checks whether pos is inside the union.
func (u *UnionTree) Contains(pos PosType) bool {
	c := u.tree.Floor(span{start: pos})
	return c != nil && c.(span).end > pos
}

// Len returns the number of disjoint intervals in the union.
func (u *UnionTree) Len() int {
	return u.tree.Len()
}

// Endpoints returns the union as a sorted length-2N endpoint sequence, in the
// same layout BEDUnion uses.
func (u *UnionTree) Endpoints() []PosType {
	endpoints := make([]PosType, 0, 2*u.tree.Len())
	u.tree.Do(func(c llrb.Comparable) bool {
		s := c.(span)
		endpoints = append(endpoints, s.start, s.end)
		return false
	})
	return endpoints
}
