// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular

import (
	"math/bits"

	"github.com/grailbio/base/log"
	bi "github.com/grailbio/procap/interval"
)

// NextExp2 returns the next power of 2 strictly greater than x.  (Useful when
// setting circular buffer size.)
func NextExp2(x int) int {
	log2 := 63 - bits.LeadingZeros64(uint64(x))
	return 2 << uint32(log2)
}

type posCount struct {
	pos   bi.PosType
	count uint32
}

// MaxDeque tracks the maximum count over a sliding window of positions.
//
// Entries are kept in increasing position order with nonincreasing counts.
// An entry is only evicted from the back when a strictly larger count
// arrives, so among equal maxima the lowest position stays at the front: the
// reported maximum is always the first-encountered one.
//
// Storage is a ring buffer whose size is a power of two, so entry k lives at
// row (k & mask).  At most windowSize entries can be live at once, since
// positions are strictly increasing and anything left of the window is
// evicted before each Push.
type MaxDeque struct {
	ring       []posCount
	mask       int
	head       int // index of front entry, high bits preserved
	tail       int // 1 + index of back entry, high bits preserved
	windowSize bi.PosType
}

// NewMaxDeque creates an empty MaxDeque for windows of windowSize positions.
func NewMaxDeque(windowSize bi.PosType) *MaxDeque {
	if windowSize <= 0 {
		log.Panicf("circular.NewMaxDeque: windowSize must be positive, got %d", windowSize)
	}
	nCirc := NextExp2(int(windowSize))
	return &MaxDeque{
		ring:       make([]posCount, nCirc),
		mask:       nCirc - 1,
		windowSize: windowSize,
	}
}

// Push adds (pos, count) as the new right edge of the window, and evicts
// entries which fall out of [pos - windowSize + 1, pos].  pos must be larger
// than every previously pushed position.  Zero counts are never stored,
// since they can't be the maximum of a window with any signal in it.
func (d *MaxDeque) Push(pos bi.PosType, count uint32) {
	d.Advance(pos)
	if count == 0 {
		return
	}
	for d.tail != d.head && d.ring[(d.tail-1)&d.mask].count < count {
		d.tail--
	}
	d.ring[d.tail&d.mask] = posCount{pos: pos, count: count}
	d.tail++
}

// Advance evicts entries which fall out of the window ending at pos, without
// adding anything.
func (d *MaxDeque) Advance(pos bi.PosType) {
	left := pos - d.windowSize + 1
	for d.head != d.tail && d.ring[d.head&d.mask].pos < left {
		d.head++
	}
}

// Max returns the position and count of the first-encountered maximum in the
// current window.  ok is false if the window has no nonzero count.
func (d *MaxDeque) Max() (pos bi.PosType, count uint32, ok bool) {
	if d.head == d.tail {
		return 0, 0, false
	}
	front := d.ring[d.head&d.mask]
	return front.pos, front.count, true
}

// Len returns the number of live entries.
func (d *MaxDeque) Len() int {
	return d.tail - d.head
}
