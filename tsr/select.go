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
	"math/rand"
	"sort"

	"github.com/grailbio/procap/interval"
)

// rankCandidates orders cands deepest-first.  With seed == 0, equal depths
// are broken by lowest Left, then forward strand first, then chromosome
// name.  Otherwise, cands are shuffled with the given seed before a stable
// depth sort, so equal depths end up in a reproducible random order.
func rankCandidates(cands []Candidate, seed int64) {
	if seed != 0 {
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(cands), func(i, j int) {
			cands[i], cands[j] = cands[j], cands[i]
		})
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].TotalReads > cands[j].TotalReads
		})
		return
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := &cands[i], &cands[j]
		if a.TotalReads != b.TotalReads {
			return a.TotalReads > b.TotalReads
		}
		if a.Left != b.Left {
			return a.Left < b.Left
		}
		if a.Strand != b.Strand {
			return a.Strand < b.Strand
		}
		return a.Chrom < b.Chrom
	})
}

// SelectRegions greedily selects non-overlapping candidates, deepest first.
// A candidate is rejected when its first or last base is already occupied
// by a previously selected candidate on the same (chromosome, strand);
// otherwise it's accepted, and its whole buffer-padded interval becomes
// occupied.  Only the two boundary bases are tested, so a candidate may be
// accepted even though its buffer zone overlaps an earlier selection's.
//
// The input slice is not modified.  The selection is returned sorted by
// chromosome, left coordinate, then strand.
func SelectRegions(cands []Candidate, opts *Opts) []Candidate {
	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)
	rankCandidates(ranked, opts.Seed)

	up := PosType(opts.BufferUpstream)
	down := PosType(opts.BufferDownstream)
	occupied := make(map[partitionKey]*interval.UnionTree)
	var selected []Candidate
	for i := range ranked {
		c := &ranked[i]
		key := partitionKey{chrom: c.Chrom, strand: c.Strand}
		tree := occupied[key]
		if tree == nil {
			tree = &interval.UnionTree{}
			occupied[key] = tree
		}
		if tree.Contains(c.Left) || tree.Contains(c.Right-1) {
			continue
		}
		start, end := c.occupied(up, down)
		tree.Insert(start, end)
		selected = append(selected, *c)
	}
	sortByPosition(selected)
	return selected
}

func sortByPosition(tsrs []Candidate) {
	sort.Slice(tsrs, func(i, j int) bool {
		return lessByPosition(&tsrs[i], &tsrs[j])
	})
}
