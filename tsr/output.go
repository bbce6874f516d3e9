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
	"io"
	"sort"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// Output file suffixes, appended to the output prefix.
const (
	TabSuffix              = ".tsr.tsv"
	TSRBedSuffix           = ".tsr.bed"
	MaxTSSBedSuffix        = ".maxtss.bed"
	MaxTSSReadsGraphSuffix = ".maxtss_reads.bedgraph"
	TSRReadsGraphSuffix    = ".tsr_reads.bedgraph"
	StdevGraphSuffix       = ".stdev.bedgraph"
)

// maxBedScore is the largest score the BED format allows.
const maxBedScore = 1000

func bedScore(reads uint32) uint32 {
	if reads > maxBedScore {
		return maxBedScore
	}
	return reads
}

// formatFloat renders v with 3 decimal places.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// writeTrack creates path, and hands a tsv.Writer over it to fill.  When
// bgzip is set, the file is BGZF-compressed.
func writeTrack(ctx context.Context, path string, bgzip bool, parallelism int, fill func(w *tsv.Writer) error) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return errors.E(err, "couldn't create", path)
	}
	defer file.CloseAndReport(ctx, dst, &err)
	var out io.Writer = dst.Writer(ctx)
	if bgzip {
		bgzfWriter := bgzf.NewWriter(out, parallelism)
		defer func() {
			if e := bgzfWriter.Close(); e != nil && err == nil {
				err = e
			}
		}()
		out = bgzfWriter
	}
	w := tsv.NewWriter(out)
	if err = fill(w); err != nil {
		return errors.E(err, "error writing", path)
	}
	return w.Flush()
}

// WriteTracks writes the text tracks for tsrs, which must already be sorted
// by position (as Call and SelectRegions leave them).  TSRs are named
// tsr1, tsr2, ... in output order.
func WriteTracks(ctx context.Context, outPrefix string, tsrs []Candidate, opts *Opts) error {
	names := make([]string, len(tsrs))
	for i := range tsrs {
		names[i] = "tsr" + strconv.Itoa(i+1)
	}
	tabPath := outPrefix + TabSuffix
	if opts.Bgzip {
		tabPath += ".gz"
	}
	if err := writeTrack(ctx, tabPath, opts.Bgzip, opts.parallelism(), func(w *tsv.Writer) error {
		return writeTab(w, tsrs, names)
	}); err != nil {
		return err
	}
	if err := writeTrack(ctx, outPrefix+TSRBedSuffix, false, 0, func(w *tsv.Writer) error {
		for i := range tsrs {
			c := &tsrs[i]
			if err := writeBed6(w, c.Chrom, c.Left, c.Right, names[i], bedScore(c.TotalReads), c.Strand); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	// The max-TSS records are not necessarily in position order, since MaxPos
	// moves around inside each window.
	maxOrder := make([]int, len(tsrs))
	for i := range maxOrder {
		maxOrder[i] = i
	}
	sort.SliceStable(maxOrder, func(i, j int) bool {
		a, b := &tsrs[maxOrder[i]], &tsrs[maxOrder[j]]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		return a.MaxPos < b.MaxPos
	})
	if err := writeTrack(ctx, outPrefix+MaxTSSBedSuffix, false, 0, func(w *tsv.Writer) error {
		for _, i := range maxOrder {
			c := &tsrs[i]
			if err := writeBed6(w, c.Chrom, c.MaxPos, c.MaxPos+1, names[i], bedScore(c.MaxPosReads), c.Strand); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	graphs := []struct {
		suffix string
		value  func(c *Candidate) float64
	}{
		{MaxTSSReadsGraphSuffix, func(c *Candidate) float64 { return float64(c.MaxPosReads) }},
		{TSRReadsGraphSuffix, func(c *Candidate) float64 { return float64(c.TotalReads) }},
		{StdevGraphSuffix, func(c *Candidate) float64 { return c.Stdev }},
	}
	for _, g := range graphs {
		points := maxTSSPoints(tsrs, maxOrder, g.value)
		if err := writeTrack(ctx, outPrefix+g.suffix, false, 0, func(w *tsv.Writer) error {
			return writeBedGraph(w, points)
		}); err != nil {
			return err
		}
	}
	log.Printf("tsr.WriteTracks: %d TSR(s) written to %s.*", len(tsrs), outPrefix)
	return nil
}

// writeTab writes the main tab-separated output.  Columns:
//   chrom, tsrLeft, tsrRight, name, tsrReads, strand,
//   maxTSS-1, maxTSS, maxTSSReads, avgTSS, maxTSS-avgTSS, stdevAvgTSS
// where maxTSS and avgTSS are 1-based.
func writeTab(w *tsv.Writer, tsrs []Candidate, names []string) error {
	for i := range tsrs {
		c := &tsrs[i]
		w.WriteString(c.Chrom)
		w.WriteInt64(int64(c.Left))
		w.WriteInt64(int64(c.Right))
		w.WriteString(names[i])
		w.WriteUint32(c.TotalReads)
		w.WriteByte(StrandTypeToASCIITable[c.Strand])
		w.WriteInt64(int64(c.MaxPos))
		w.WriteInt64(int64(c.MaxPos) + 1)
		w.WriteUint32(c.MaxPosReads)
		w.WriteString(formatFloat(c.WeightedAvgPos + 1))
		w.WriteString(formatFloat(c.MaxMinusAvg))
		w.WriteString(formatFloat(c.Stdev))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

func writeBed6(w *tsv.Writer, chrom string, start, end PosType, name string, score uint32, strand StrandType) error {
	w.WriteString(chrom)
	w.WriteInt64(int64(start))
	w.WriteInt64(int64(end))
	w.WriteString(name)
	w.WriteUint32(score)
	w.WriteByte(StrandTypeToASCIITable[strand])
	return w.EndLine()
}

type graphPoint struct {
	chrom string
	pos   PosType
	value float64
}

// maxTSSPoints collects one 1-bp bedGraph point per TSR at its max TSS,
// visiting tsrs in maxOrder.  When TSRs on both strands share a max-TSS base,
// the larger value is kept, so the track never has overlapping records.
func maxTSSPoints(tsrs []Candidate, maxOrder []int, value func(c *Candidate) float64) []graphPoint {
	points := make([]graphPoint, 0, len(maxOrder))
	for _, i := range maxOrder {
		c := &tsrs[i]
		v := value(c)
		if n := len(points); n > 0 && points[n-1].chrom == c.Chrom && points[n-1].pos == c.MaxPos {
			if v > points[n-1].value {
				points[n-1].value = v
			}
			continue
		}
		points = append(points, graphPoint{chrom: c.Chrom, pos: c.MaxPos, value: v})
	}
	return points
}

func writeBedGraph(w *tsv.Writer, points []graphPoint) error {
	for _, p := range points {
		w.WriteString(p.chrom)
		w.WriteInt64(int64(p.pos))
		w.WriteInt64(int64(p.pos) + 1)
		w.WriteString(strconv.FormatFloat(p.value, 'f', -1, 64))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}
