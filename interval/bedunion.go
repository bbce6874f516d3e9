// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// PosType is the type used to represent interval coordinates.  int32 should be
// wide enough for some time to come, since that's what BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
//
// These simple loops are better than any of the standard library
// string-split functions when fewer than ~20 tokens are expected.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// isHeaderLine returns true for the comment/track/browser lines which may
// precede the body of a UCSC-style BED file.
func isHeaderLine(firstToken []byte) bool {
	if firstToken[0] == '#' {
		return true
	}
	s := gunsafe.BytesToString(firstToken)
	return s == "track" || s == "browser"
}

// parseCoordPair parses the start and end columns of a BED line, returning
// an error if they don't describe a valid [start, end) interval.
func parseCoordPair(startToken, endToken []byte) (start, end PosType, err error) {
	var parsedStart, parsedEnd int
	if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(startToken)); err != nil {
		return
	}
	if parsedStart < 0 {
		err = fmt.Errorf("negative start coordinate %s", startToken)
		return
	}
	if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(endToken)); err != nil {
		return
	}
	if (parsedEnd < parsedStart) || (parsedEnd >= PosTypeMax) {
		err = fmt.Errorf("invalid coordinate pair [%d, %d)", parsedStart, parsedEnd)
		return
	}
	return PosType(parsedStart), PosType(parsedEnd), nil
}

// searchPosType returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).  It's exactly the same
// as sort.SearchInts(), except for PosType.
func searchPosType(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// fwdsearchPosType checks a[idx], then a[idx + 1], then a[idx + 3], then
// a[idx + 7], etc., and then uses binary search to finish the job.  It's
// usually a better choice than searchPosType when iterating.
func fwdsearchPosType(a []PosType, x PosType, idx int) int {
	nextIncr := 1
	startIdx := idx
	endIdx := len(a)
	for idx < endIdx {
		if a[idx] >= x {
			endIdx = idx
			break
		}
		startIdx = idx + 1
		idx += nextIncr
		nextIncr *= 2
	}
	for startIdx < endIdx {
		midIdx := int(uint(startIdx+endIdx) >> 1)
		if a[midIdx] >= x {
			endIdx = midIdx
		} else {
			startIdx = midIdx + 1
		}
	}
	return startIdx
}

// BEDUnion is a read-only interval-union over several chromosomes, stored as
// one length-2N endpoint sequence per chromosome: the (0-based) start of
// interval #k is in element [2k] and its end in element [2k+1], intervals in
// increasing order.  A position is contained iff the number of endpoints <=
// it is odd.
//
// BEDUnion caches search state, so a single instance must not be queried
// concurrently; use Clone to get a per-goroutine copy.
type BEDUnion struct {
	// nameMap is a chromosome-keyed map with disjoint-interval-set values.
	// Always initialized.
	nameMap map[string][]PosType
	// lastChrIntervals points to the disjoint-interval-set for the most recently
	// queried chromosome.
	lastChrIntervals []PosType
	// lastChrName is the name of the last queried chromosome.  If it's
	// nonempty, it must be in sync with lastChrIntervals.
	lastChrName string
	// lastPosPlus1 is 1 plus the last spot-queried position.
	lastPosPlus1 PosType
	// lastIdx is searchPosType(lastChrIntervals, lastPosPlus1).  Cached to
	// accelerate sequential queries.
	lastIdx int
	// isSequential is true if all queries since the last chromosome change have
	// been in order of nondecreasing position.
	isSequential bool
}

// ContainsByName checks whether the (0-based) interval [pos, pos+1) is
// contained within the BEDUnion.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	posPlus1 := pos + 1
	if chrName != u.lastChrName || u.lastChrIntervals == nil {
		u.lastChrName = chrName
		u.lastChrIntervals = u.nameMap[chrName]
		if u.lastChrIntervals == nil {
			return false
		}
		u.lastIdx = searchPosType(u.lastChrIntervals, posPlus1)
		u.lastPosPlus1 = posPlus1
		u.isSequential = true
		return u.lastIdx&1 == 1
	}
	if u.isSequential {
		if posPlus1 >= u.lastPosPlus1 {
			u.lastIdx = fwdsearchPosType(u.lastChrIntervals, posPlus1, u.lastIdx)
			u.lastPosPlus1 = posPlus1
			return u.lastIdx&1 == 1
		}
		u.isSequential = false
	}
	return searchPosType(u.lastChrIntervals, posPlus1)&1 == 1
}

// HasChrom returns true if at least one interval was loaded for chrName.
func (u *BEDUnion) HasChrom(chrName string) bool {
	return len(u.nameMap[chrName]) != 0
}

// Endpoints returns the sorted endpoint sequence for chrName.  The returned
// slice must not be modified.
func (u *BEDUnion) Endpoints(chrName string) []PosType {
	return u.nameMap[chrName]
}

// Clone returns a new BEDUnion which shares the interval set, but has its own
// search state.
func (u *BEDUnion) Clone() BEDUnion {
	return BEDUnion{nameMap: u.nameMap}
}

// Entry represents a single interval, with 0-based coordinates.
type Entry struct {
	RefName string
	Start0  PosType
	End     PosType
}

// NewBEDUnionFromEntries initializes a BEDUnion from entries in any order,
// merging touching/overlapping intervals and eliminating empty ones.  The
// entries slice is not modified.
func NewBEDUnionFromEntries(entries []Entry) (bedUnion BEDUnion, err error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	for _, entry := range sorted {
		if entry.Start0 < 0 {
			err = fmt.Errorf("interval.NewBEDUnionFromEntries: negative start coordinate on %s", entry.RefName)
			return
		}
		if (entry.End < entry.Start0) || (entry.End >= PosTypeMax) {
			err = fmt.Errorf("interval.NewBEDUnionFromEntries: invalid coordinate pair [%d, %d)", entry.Start0, entry.End)
			return
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RefName != sorted[j].RefName {
			return sorted[i].RefName < sorted[j].RefName
		}
		return sorted[i].Start0 < sorted[j].Start0
	})

	bedUnion.nameMap = make(map[string][]PosType)
	prevChr := ""
	var chrIntervals []PosType
	for _, entry := range sorted {
		if entry.End == entry.Start0 {
			continue
		}
		if entry.RefName != prevChr {
			if prevChr != "" {
				bedUnion.nameMap[prevChr] = chrIntervals
			}
			prevChr = entry.RefName
			chrIntervals = []PosType{entry.Start0, entry.End}
			continue
		}
		lastEnd := chrIntervals[len(chrIntervals)-1]
		if entry.Start0 > lastEnd {
			chrIntervals = append(chrIntervals, entry.Start0, entry.End)
		} else if entry.End > lastEnd {
			// Intervals overlap or touch, merge them.
			chrIntervals[len(chrIntervals)-1] = entry.End
		}
	}
	if prevChr != "" {
		bedUnion.nameMap[prevChr] = chrIntervals
	}
	return
}

// NewBEDUnion loads just the intervals from a BED file (the first three
// columns of each line; the rest are ignored).  Lines need not be sorted.
func NewBEDUnion(reader io.Reader) (bedUnion BEDUnion, err error) {
	scanner := bufio.NewScanner(reader)
	var tokens [3][]byte
	var entries []Entry
	lineIdx := 0
	totBases := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || isHeaderLine(tokens[0]) {
			continue
		}
		if nToken != 3 {
			err = fmt.Errorf("interval.NewBEDUnion: line %d has fewer tokens than expected", lineIdx)
			return
		}
		var start, end PosType
		if start, end, err = parseCoordPair(tokens[1], tokens[2]); err != nil {
			err = fmt.Errorf("interval.NewBEDUnion: line %d: %v", lineIdx, err)
			return
		}
		entries = append(entries, Entry{
			// Must copy; tokens[0] refers to the scanner's buffer.
			RefName: string(tokens[0]),
			Start0:  start,
			End:     end,
		})
		totBases += int(end - start)
	}
	if err = scanner.Err(); err != nil {
		return
	}
	log.Printf("BED loaded, %d interval(s), %d base(s) before merging.", len(entries), totBases)
	return NewBEDUnionFromEntries(entries)
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.  Gzipped files are recognized by extension.
func NewBEDUnionFromPath(ctx context.Context, path string) (bedUnion BEDUnion, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewBEDUnion(reader)
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1) is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.Start0 = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	var end0 int
	if end0, err = strconv.Atoi(endStr); err != nil {
		return
	}
	// Prohibit end0 == PosTypeMax so that the endpoint sequence is guaranteed
	// to contain no repeats.
	if end0 < start1 || end0 >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}
