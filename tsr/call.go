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
	"os"
	"strconv"
	"sync/atomic"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/procap/interval"
)

// Call runs the whole TSR-calling pipeline: fragments are read from
// fragPath (BED6, optionally gzipped), chromosome lengths from sizesPath,
// and the text tracks are written under outPrefix.  When opts.Convert is
// set, the binary indexed tracks are also generated if the converters are
// available.
//
// Any partition failure aborts the run before any output is written.
func Call(ctx context.Context, fragPath, sizesPath, outPrefix string, opts *Opts) (err error) {
	if err = opts.validate(); err != nil {
		return
	}
	if outPrefix == "" {
		return fmt.Errorf("tsr.Call: empty output prefix")
	}
	inputs := []string{fragPath, sizesPath}
	if opts.BedPath != "" {
		inputs = append(inputs, opts.BedPath)
	}
	if err = checkInputs(ctx, inputs...); err != nil {
		return
	}

	var sizes ChromSizes
	if sizes, err = ReadChromSizes(ctx, sizesPath); err != nil {
		return
	}
	var targets *interval.BEDUnion
	if targets, err = loadTargets(ctx, opts); err != nil {
		return
	}
	var parts []Partition
	if parts, _, err = ReadPartitions(ctx, fragPath, sizes, targets, opts); err != nil {
		return
	}
	var tsrs []Candidate
	if tsrs, err = callPartitions(ctx, parts, sizes, opts); err != nil {
		return
	}
	if err = WriteTracks(ctx, outPrefix, tsrs, opts); err != nil {
		return
	}
	if opts.Convert {
		if len(tsrs) == 0 {
			log.Printf("tsr.Call: no TSRs, skipping binary track conversion")
			return
		}
		err = ConvertTracks(ctx, outPrefix, sizesPath, opts)
	}
	return
}

// loadTargets returns the -bed or -region restriction, or nil if there is
// none.
func loadTargets(ctx context.Context, opts *Opts) (*interval.BEDUnion, error) {
	var (
		bedUnion interval.BEDUnion
		err      error
	)
	switch {
	case opts.BedPath != "":
		bedUnion, err = interval.NewBEDUnionFromPath(ctx, opts.BedPath)
	case opts.Region != "":
		var entry interval.Entry
		if entry, err = interval.ParseRegionString(opts.Region); err != nil {
			return nil, err
		}
		bedUnion, err = interval.NewBEDUnionFromEntries([]interval.Entry{entry})
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bedUnion, nil
}

// callPartitions runs every partition through the per-partition pipeline on
// a worker pool, and returns the merged selection sorted by position.  Each
// worker writes its selections to its own recordio temp file; the files are
// only read back once every worker has finished.
func callPartitions(ctx context.Context, parts []Partition, sizes ChromSizes, opts *Opts) (tsrs []Candidate, err error) {
	nPart := len(parts)
	if nPart == 0 {
		log.Printf("tsr.callPartitions: no fragments left to call")
		return nil, nil
	}
	parallelism := opts.parallelism()
	if parallelism > nPart {
		parallelism = nPart
	}
	if opts.TempDir != "" {
		if err = os.MkdirAll(opts.TempDir, 0755); err != nil {
			return
		}
	}
	tmpFiles := make([]*os.File, parallelism)
	defer func() {
		for _, f := range tmpFiles {
			if f != nil {
				curPath := f.Name()
				if e := f.Close(); e != nil && err == nil {
					err = e
				}
				_ = os.Remove(curPath)
			}
		}
	}()
	for jobIdx := range tmpFiles {
		if tmpFiles[jobIdx], err = os.CreateTemp(opts.TempDir, "tsr_tmp"+strconv.Itoa(jobIdx)+"_*.rio"); err != nil {
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var nDropped int64
	log.Printf("tsr.callPartitions: starting main loop (%d partition(s), %d job(s))", nPart, parallelism)
	err = traverse.Each(parallelism, func(jobIdx int) error {
		w := newShardWriter(tmpFiles[jobIdx])
		// Partitions are sorted by chromosome, so striding spreads the large
		// chromosomes across jobs.
		for i := jobIdx; i < nPart; i += parallelism {
			selected, dropped, e := callPartition(ctx, &parts[i], sizes[parts[i].Chrom], opts)
			if e != nil {
				cancel()
				return e
			}
			atomic.AddInt64(&nDropped, int64(dropped))
			for j := range selected {
				w.Append(&selected[j])
			}
			// Nothing else looks at the fragments.
			parts[i].Fragments = nil
		}
		if e := w.Finish(); e != nil {
			cancel()
			return e
		}
		return nil
	})
	if err != nil {
		return
	}
	if nDropped != 0 {
		log.Printf("tsr.callPartitions: %d out-of-range signal position(s) dropped", nDropped)
	}
	for _, f := range tmpFiles {
		if _, err = f.Seek(0, 0); err != nil {
			return
		}
		if tsrs, err = readShard(f, tsrs); err != nil {
			return
		}
	}
	sortByPosition(tsrs)
	log.Printf("tsr.callPartitions: main loop complete, %d TSR(s) selected", len(tsrs))
	return tsrs, nil
}

// callPartition runs one (chromosome, strand) partition through signal
// building, gap filling, window aggregation and region selection.
func callPartition(ctx context.Context, part *Partition, length PosType, opts *Opts) (selected []Candidate, nDropped int, err error) {
	if err = ctx.Err(); err != nil {
		return
	}
	var track SignalTrack
	if track, err = BuildSignal(*part); err != nil {
		return
	}
	var dense DenseTrack
	if dense, nDropped, err = FillGaps(track, length, opts.DropOutOfRange); err != nil {
		return
	}
	var cands []Candidate
	if cands, err = AggregateWindows(ctx, dense, opts); err != nil {
		return
	}
	selected = SelectRegions(cands, opts)
	log.Debug.Printf("tsr.callPartition: %s (%c): %d fragment(s), %d TSS position(s), %d candidate(s), %d selected",
		part.Chrom, StrandTypeToASCIITable[part.Strand], len(part.Fragments), len(track.Signal), len(cands), len(selected))
	return
}
