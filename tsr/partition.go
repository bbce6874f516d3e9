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
	"fmt"
	"sort"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/procap/interval"
	"github.com/pkg/errors"
)

// PartitionStats counts what happened to each input fragment.
type PartitionStats struct {
	Total int
	Kept  int
	// NoStrand fragments have '.' as strand; there's no TSS to call.
	NoStrand int
	// TooLong fragments exceed Opts.MaxFragLen.
	TooLong int
	// Empty fragments have start == end.
	Empty int
	// OffTarget fragments have a TSS outside the -bed or -region target.
	OffTarget int
}

type partitionKey struct {
	chrom  string
	strand StrandType
}

// ReadPartitions reads a BED6 fragment file and buckets the fragments by
// (chromosome, strand).  Fragments longer than opts.MaxFragLen, with
// undefined strand, or (when targets is non-nil) with a TSS outside targets
// are discarded and counted.  A fragment on a chromosome missing from sizes
// is an error.
//
// Partitions are returned sorted by chromosome name, then strand.
func ReadPartitions(ctx context.Context, path string, sizes ChromSizes, targets *interval.BEDUnion, opts *Opts) (parts []Partition, stats PartitionStats, err error) {
	f, r, err := openInput(ctx, path)
	if err != nil {
		return nil, stats, err
	}
	defer file.CloseAndReport(ctx, f, &err)

	maxFragLen := PosType(opts.MaxFragLen)
	partIdx := make(map[partitionKey]int)
	scanner := interval.NewBED6Scanner(r)
	for scanner.Scan() {
		e := scanner.Entry()
		stats.Total++
		var strand StrandType
		switch e.Strand {
		case '+':
			strand = StrandFwd
		case '-':
			strand = StrandRev
		case '.':
			stats.NoStrand++
			continue
		default:
			return nil, stats, fmt.Errorf("tsr.ReadPartitions: %s:%d: unknown strand %q", path, scanner.LineIdx(), e.Strand)
		}
		if _, ok := sizes[e.RefName]; !ok {
			return nil, stats, fmt.Errorf("tsr.ReadPartitions: %s:%d: chromosome %s not in size table", path, scanner.LineIdx(), e.RefName)
		}
		fragLen := e.End - e.Start0
		if fragLen == 0 {
			stats.Empty++
			continue
		}
		if fragLen > maxFragLen {
			stats.TooLong++
			continue
		}
		if targets != nil {
			tss := e.Start0
			if strand == StrandRev {
				tss = e.End - 1
			}
			if !targets.ContainsByName(e.RefName, tss) {
				stats.OffTarget++
				continue
			}
		}
		key := partitionKey{chrom: e.RefName, strand: strand}
		idx, ok := partIdx[key]
		if !ok {
			idx = len(parts)
			partIdx[key] = idx
			parts = append(parts, Partition{Chrom: e.RefName, Strand: strand})
		}
		parts[idx].Fragments = append(parts[idx].Fragments, Fragment{Start: e.Start0, End: e.End})
		stats.Kept++
		if stats.Total&0xfffff == 0 {
			if err = ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, stats, errors.Wrapf(err, "tsr.ReadPartitions: %s", path)
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Chrom != parts[j].Chrom {
			return parts[i].Chrom < parts[j].Chrom
		}
		return parts[i].Strand < parts[j].Strand
	})
	log.Printf("tsr.ReadPartitions: %d of %d fragment(s) kept in %d partition(s) (%d no strand, %d too long, %d empty, %d off target)",
		stats.Kept, stats.Total, len(parts), stats.NoStrand, stats.TooLong, stats.Empty, stats.OffTarget)
	return parts, stats, nil
}
