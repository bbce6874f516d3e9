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
	"github.com/grailbio/procap/interval"
)

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// StrandType describes which strand a fragment is aligned to.
type StrandType int

const (
	// StrandNone means undefined strand ('.' in BED).
	StrandNone StrandType = iota
	// StrandFwd is the '+' strand; the TSS is the fragment start.
	StrandFwd
	// StrandRev is the '-' strand; the TSS is the last base of the fragment.
	StrandRev
)

// StrandTypeToASCIITable is the StrandType -> ASCII mapping.
var StrandTypeToASCIITable = [...]byte{'.', '+', '-'}

// Fragment is a half-open [Start, End) interval.  Chromosome and strand are
// carried by the enclosing Partition.
type Fragment struct {
	Start PosType
	End   PosType
}

// Partition contains all admitted fragments on one (chromosome, strand).
type Partition struct {
	Chrom     string
	Strand    StrandType
	Fragments []Fragment
}

// PositionSignal is the TSS signal at a single position: the number of
// fragments whose TSS is Pos, and the sum of their lengths.
type PositionSignal struct {
	Pos       PosType
	Count     uint32
	LengthSum uint64
}

// SignalTrack is a sparse, strictly position-increasing signal for one
// (chromosome, strand).
type SignalTrack struct {
	Chrom  string
	Strand StrandType
	Signal []PositionSignal
}

// Candidate is a window passing the depth and fragment-length thresholds.
// The window covers [Left, Right).
type Candidate struct {
	Chrom       string
	Strand      StrandType
	Left        PosType
	Right       PosType
	TotalReads  uint32
	AvgFragLen  float64
	MaxPos      PosType
	MaxPosReads uint32
	// WeightedAvgPos is the count-weighted mean TSS position (0-based).
	WeightedAvgPos float64
	// MaxMinusAvg is MaxPos - WeightedAvgPos.
	MaxMinusAvg float64
	// Stdev is the count-weighted population standard deviation of the TSS
	// position.
	Stdev float64
}

// occupied returns the buffer-padded interval blocked by c once it's
// selected.  Upstream is to the left on the forward strand, and to the right
// on the reverse strand.
func (c *Candidate) occupied(bufferUpstream, bufferDownstream PosType) (start, end PosType) {
	if c.Strand == StrandRev {
		return c.Left - bufferDownstream, c.Right + bufferUpstream
	}
	return c.Left - bufferUpstream, c.Right + bufferDownstream
}

// lessByPosition orders by chromosome (lexically), left coordinate, then
// strand.  This is the order all output tracks are written in.
func lessByPosition(a, b *Candidate) bool {
	if a.Chrom != b.Chrom {
		return a.Chrom < b.Chrom
	}
	if a.Left != b.Left {
		return a.Left < b.Left
	}
	return a.Strand < b.Strand
}
