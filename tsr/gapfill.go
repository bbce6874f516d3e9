// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tsr

import (
	"fmt"

	"github.com/grailbio/base/log"
)

// OutOfRangeError is returned by FillGaps when the signal has a position
// outside [0, chromosome length).
type OutOfRangeError struct {
	Chrom  string
	Strand StrandType
	Pos    PosType
	Length PosType
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("tsr: signal at %s:%d (%c) outside chromosome length %d", e.Chrom, e.Pos, StrandTypeToASCIITable[e.Strand], e.Length)
}

// DenseTrack is a zero-filled signal covering every position in
// [0, Length).  It is a view over the validated sparse signal; use Scanner()
// to iterate over it, or Values() to materialize it.
type DenseTrack struct {
	Chrom  string
	Strand StrandType
	Length PosType
	sparse []PositionSignal
}

// FillGaps validates track against the chromosome length and returns its
// dense view.  Out-of-range positions produce an *OutOfRangeError unless
// dropOutOfRange is set, in which case they are discarded; nDropped counts
// them.  A track whose positions aren't strictly increasing is an error.
func FillGaps(track SignalTrack, length PosType, dropOutOfRange bool) (dense DenseTrack, nDropped int, err error) {
	signal := track.Signal
	for i := 1; i < len(signal); i++ {
		if signal[i].Pos <= signal[i-1].Pos {
			return DenseTrack{}, 0, fmt.Errorf("tsr.FillGaps: %s: positions not strictly increasing (%d after %d)", track.Chrom, signal[i].Pos, signal[i-1].Pos)
		}
	}
	// Since signal is sorted, out-of-range entries form a prefix (negative
	// positions) and a suffix (>= length).
	startIdx := 0
	for startIdx < len(signal) && signal[startIdx].Pos < 0 {
		startIdx++
	}
	endIdx := len(signal)
	for endIdx > startIdx && signal[endIdx-1].Pos >= length {
		endIdx--
	}
	if nDropped = startIdx + len(signal) - endIdx; nDropped != 0 {
		if !dropOutOfRange {
			badPos := signal[len(signal)-1].Pos
			if startIdx != 0 {
				badPos = signal[0].Pos
			}
			return DenseTrack{}, 0, &OutOfRangeError{Chrom: track.Chrom, Strand: track.Strand, Pos: badPos, Length: length}
		}
		log.Printf("tsr.FillGaps: %s (%c): dropped %d out-of-range position(s)", track.Chrom, StrandTypeToASCIITable[track.Strand], nDropped)
	}
	return DenseTrack{
		Chrom:  track.Chrom,
		Strand: track.Strand,
		Length: length,
		sparse: signal[startIdx:endIdx],
	}, nDropped, nil
}

// DenseScanner yields every position of a DenseTrack in order.
type DenseScanner struct {
	track *DenseTrack
	pos   PosType
	idx   int
}

// Scanner returns a scanner positioned at the start of the track.
func (d *DenseTrack) Scanner() DenseScanner {
	return DenseScanner{track: d}
}

// Next returns the signal at the next position, or false when the track is
// exhausted.
func (s *DenseScanner) Next() (PositionSignal, bool) {
	if s.pos >= s.track.Length {
		return PositionSignal{}, false
	}
	pos := s.pos
	s.pos++
	if s.idx < len(s.track.sparse) && s.track.sparse[s.idx].Pos == pos {
		s.idx++
		return s.track.sparse[s.idx-1], true
	}
	return PositionSignal{Pos: pos}, true
}

// Values materializes the dense track.  This allocates Length entries.
func (d *DenseTrack) Values() []PositionSignal {
	values := make([]PositionSignal, d.Length)
	for i := range values {
		values[i].Pos = PosType(i)
	}
	for _, ps := range d.sparse {
		values[ps.Pos] = ps
	}
	return values
}
