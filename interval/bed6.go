// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"bufio"
	"fmt"
	"io"

	gunsafe "github.com/grailbio/base/unsafe"
)

// BED6Entry is one line of a 6-column BED file.  Name and score are not
// retained.
type BED6Entry struct {
	RefName string
	Start0  PosType
	End     PosType
	// Strand is the raw strand byte, usually '+', '-' or '.'.
	Strand byte
}

// BED6Scanner iterates over the entries of a BED6 file.
//
//   s := interval.NewBED6Scanner(r)
//   for s.Scan() {
//     e := s.Entry()
//     ...
//   }
//   if err := s.Err(); err != nil { ... }
//
// Reference names are interned: consecutive entries on the same chromosome
// share a single string allocation.
type BED6Scanner struct {
	scanner *bufio.Scanner
	tokens  [6][]byte
	entry   BED6Entry
	lineIdx int
	err     error
}

// NewBED6Scanner returns a BED6Scanner reading from r.
func NewBED6Scanner(r io.Reader) *BED6Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	return &BED6Scanner{scanner: scanner}
}

// Scan advances to the next entry.  It returns false at EOF or on error;
// check Err() afterwards.
func (s *BED6Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.scanner.Scan() {
		s.lineIdx++
		curLine := s.scanner.Bytes()
		nToken := getTokens(s.tokens[:], curLine)
		if nToken == 0 || isHeaderLine(s.tokens[0]) {
			continue
		}
		if nToken != 6 {
			s.err = fmt.Errorf("interval.BED6Scanner: line %d has %d token(s), expected 6", s.lineIdx, nToken)
			return false
		}
		start, end, err := parseCoordPair(s.tokens[1], s.tokens[2])
		if err != nil {
			s.err = fmt.Errorf("interval.BED6Scanner: line %d: %v", s.lineIdx, err)
			return false
		}
		if len(s.tokens[5]) != 1 {
			s.err = fmt.Errorf("interval.BED6Scanner: line %d: invalid strand %q", s.lineIdx, s.tokens[5])
			return false
		}
		if gunsafe.BytesToString(s.tokens[0]) != s.entry.RefName {
			s.entry.RefName = string(s.tokens[0])
		}
		s.entry.Start0 = start
		s.entry.End = end
		s.entry.Strand = s.tokens[5][0]
		return true
	}
	s.err = s.scanner.Err()
	return false
}

// Entry returns the most recently scanned entry.
func (s *BED6Scanner) Entry() BED6Entry {
	return s.entry
}

// LineIdx returns the 1-based line number of the most recently scanned entry.
func (s *BED6Scanner) LineIdx() int {
	return s.lineIdx
}

// Err returns the first error encountered by Scan, if any.
func (s *BED6Scanner) Err() error {
	return s.err
}
