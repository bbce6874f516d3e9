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
	"sort"
)

// tss returns the 5' end of f on the given strand.  The exclusive end of a
// reverse-strand fragment is shifted here, and nowhere else.
func (f Fragment) tss(strand StrandType) PosType {
	if strand == StrandRev {
		return f.End - 1
	}
	return f.Start
}

// BuildSignal collapses the fragments of one partition into a sparse signal
// track: one PositionSignal per distinct TSS, in increasing position order.
// The partition's fragment slice is not modified.
func BuildSignal(part Partition) (SignalTrack, error) {
	strand := part.Strand
	if strand != StrandFwd && strand != StrandRev {
		return SignalTrack{}, fmt.Errorf("tsr.BuildSignal: partition %s has no strand", part.Chrom)
	}
	frags := make([]Fragment, len(part.Fragments))
	copy(frags, part.Fragments)
	if strand == StrandFwd {
		sort.Slice(frags, func(i, j int) bool {
			if frags[i].Start != frags[j].Start {
				return frags[i].Start < frags[j].Start
			}
			return frags[i].End < frags[j].End
		})
	} else {
		sort.Slice(frags, func(i, j int) bool {
			if frags[i].End != frags[j].End {
				return frags[i].End < frags[j].End
			}
			return frags[i].Start < frags[j].Start
		})
	}

	track := SignalTrack{Chrom: part.Chrom, Strand: strand}
	if len(frags) == 0 {
		return track, nil
	}
	cur := PositionSignal{Pos: frags[0].tss(strand)}
	for _, f := range frags {
		if f.End <= f.Start {
			return SignalTrack{}, fmt.Errorf("tsr.BuildSignal: %s: invalid fragment [%d, %d)", part.Chrom, f.Start, f.End)
		}
		if pos := f.tss(strand); pos != cur.Pos {
			track.Signal = append(track.Signal, cur)
			cur = PositionSignal{Pos: pos}
		}
		cur.Count++
		cur.LengthSum += uint64(f.End - f.Start)
	}
	track.Signal = append(track.Signal, cur)
	return track, nil
}
