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
	"context"
	"math"

	"github.com/grailbio/procap/circular"
)

// ctxCheckInterval is the number of positions scanned between cancellation
// checks.
const ctxCheckInterval = 1 << 20

// AggregateWindows slides a window of opts.WindowSize positions across
// dense, and returns a Candidate for every window [p-w+1, p] with at least
// opts.MinReads reads and an average fragment length of at least
// opts.MinAvgFragLen.  Candidates are returned in increasing position
// order.
//
// The window statistics are maintained incrementally, so the scan is
// O(dense.Length) regardless of window size.  Position moments are kept as
// exact integer sums relative to the window's left edge:
//   s1 = sum(count * q), s2 = sum(count * q^2), q = pos - left
// and re-based by one position on every step, so the mean and variance
// don't lose precision on long chromosomes.
func AggregateWindows(ctx context.Context, dense DenseTrack, opts *Opts) ([]Candidate, error) {
	w := PosType(opts.WindowSize)
	minReads := int64(opts.MinReads)
	minAvgFragLen := uint64(opts.MinAvgFragLen)

	var (
		cands  []Candidate
		n      int64  // total reads in window
		totLen uint64 // total fragment length in window
		s1, s2 int64
	)
	maxq := circular.NewMaxDeque(w)
	in := dense.Scanner()
	out := dense.Scanner()
	for p := PosType(0); ; p++ {
		cur, ok := in.Next()
		if !ok {
			break
		}
		if p&(ctxCheckInterval-1) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		left := PosType(0)
		if p >= w {
			// The leaving position sits at q == 0, so it contributes nothing to s1
			// or s2.
			prev, _ := out.Next()
			n -= int64(prev.Count)
			totLen -= prev.LengthSum
			// Shift the origin right by one: sum(c*(q-1)^2) = s2 - 2*s1 + n.
			s2 = s2 - 2*s1 + n
			s1 -= n
			left = p - w + 1
		}
		c := int64(cur.Count)
		q := int64(p - left)
		n += c
		totLen += cur.LengthSum
		s1 += c * q
		s2 += c * q * q
		maxq.Push(p, cur.Count)

		if p < w-1 || n < minReads || n == 0 || totLen < minAvgFragLen*uint64(n) {
			continue
		}
		fn := float64(n)
		meanQ := float64(s1) / fn
		variance := float64(s2)/fn - meanQ*meanQ
		if variance < 0 {
			variance = 0
		}
		mean := float64(left) + meanQ
		maxPos, maxReads, _ := maxq.Max()
		cands = append(cands, Candidate{
			Chrom:          dense.Chrom,
			Strand:         dense.Strand,
			Left:           left,
			Right:          left + w,
			TotalReads:     uint32(n),
			AvgFragLen:     float64(totLen) / fn,
			MaxPos:         maxPos,
			MaxPosReads:    maxReads,
			WeightedAvgPos: mean,
			MaxMinusAvg:    float64(maxPos) - mean,
			Stdev:          math.Sqrt(variance),
		})
	}
	return cands, nil
}
