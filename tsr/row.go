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
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
)

func init() {
	recordiozstd.Init()
}

// Each worker writes its selected TSRs to a zstd-compressed recordio temp
// file.  The formatter reads all of them back after the worker pool has
// finished.
//
// Serialized format:
//   [0..2): len(chrom)
//   [2..2+len(chrom)): chrom
//   followed by candidateFixedLen bytes:
//   [0..1): strand
//   [1..5): left
//   [5..9): right
//   [9..13): totalReads
//   [13..17): maxPos
//   [17..21): maxPosReads
//   [21..29): avgFragLen
//   [29..37): weightedAvgPos
//   [37..45): maxMinusAvg
//   [45..53): stdev
const candidateFixedLen = 53

// cutAndAdvance returns s[offset:offset+pieceLen], and increments offset by
// pieceLen.
func cutAndAdvance(offset *int, s []byte, pieceLen int) []byte {
	tmpSlice := s[(*offset):]
	*offset += pieceLen
	return tmpSlice[:pieceLen]
}

func marshalCandidate(scratch []byte, p interface{}) ([]byte, error) {
	c := p.(*Candidate)
	if len(c.Chrom) > math.MaxUint16 {
		return nil, fmt.Errorf("tsr.marshalCandidate: chromosome name too long (%d bytes)", len(c.Chrom))
	}
	bytesReq := 2 + len(c.Chrom) + candidateFixedLen
	t := scratch
	if len(t) < bytesReq {
		t = make([]byte, bytesReq)
	}
	t = t[:bytesReq]
	offset := 0
	binary.LittleEndian.PutUint16(cutAndAdvance(&offset, t, 2), uint16(len(c.Chrom)))
	copy(cutAndAdvance(&offset, t, len(c.Chrom)), c.Chrom)
	tFixed := cutAndAdvance(&offset, t, candidateFixedLen)
	tFixed[0] = byte(c.Strand)
	binary.LittleEndian.PutUint32(tFixed[1:5], uint32(c.Left))
	binary.LittleEndian.PutUint32(tFixed[5:9], uint32(c.Right))
	binary.LittleEndian.PutUint32(tFixed[9:13], c.TotalReads)
	binary.LittleEndian.PutUint32(tFixed[13:17], uint32(c.MaxPos))
	binary.LittleEndian.PutUint32(tFixed[17:21], c.MaxPosReads)
	binary.LittleEndian.PutUint64(tFixed[21:29], math.Float64bits(c.AvgFragLen))
	binary.LittleEndian.PutUint64(tFixed[29:37], math.Float64bits(c.WeightedAvgPos))
	binary.LittleEndian.PutUint64(tFixed[37:45], math.Float64bits(c.MaxMinusAvg))
	binary.LittleEndian.PutUint64(tFixed[45:53], math.Float64bits(c.Stdev))
	return t, nil
}

func unmarshalCandidate(in []byte) (out interface{}, err error) {
	if len(in) < 2 {
		return nil, fmt.Errorf("tsr.unmarshalCandidate: truncated record (%d bytes)", len(in))
	}
	offset := 0
	chromLen := int(binary.LittleEndian.Uint16(cutAndAdvance(&offset, in, 2)))
	if len(in) != 2+chromLen+candidateFixedLen {
		return nil, fmt.Errorf("tsr.unmarshalCandidate: record has %d bytes, expected %d", len(in), 2+chromLen+candidateFixedLen)
	}
	c := &Candidate{
		Chrom: string(cutAndAdvance(&offset, in, chromLen)),
	}
	inFixed := cutAndAdvance(&offset, in, candidateFixedLen)
	c.Strand = StrandType(inFixed[0])
	c.Left = PosType(binary.LittleEndian.Uint32(inFixed[1:5]))
	c.Right = PosType(binary.LittleEndian.Uint32(inFixed[5:9]))
	c.TotalReads = binary.LittleEndian.Uint32(inFixed[9:13])
	c.MaxPos = PosType(binary.LittleEndian.Uint32(inFixed[13:17]))
	c.MaxPosReads = binary.LittleEndian.Uint32(inFixed[17:21])
	c.AvgFragLen = math.Float64frombits(binary.LittleEndian.Uint64(inFixed[21:29]))
	c.WeightedAvgPos = math.Float64frombits(binary.LittleEndian.Uint64(inFixed[29:37]))
	c.MaxMinusAvg = math.Float64frombits(binary.LittleEndian.Uint64(inFixed[37:45]))
	c.Stdev = math.Float64frombits(binary.LittleEndian.Uint64(inFixed[45:53]))
	return c, nil
}

func newShardWriter(w io.Writer) recordio.Writer {
	return recordio.NewWriter(w, recordio.WriterOpts{
		Marshal:      marshalCandidate,
		Transformers: []string{recordiozstd.Name},
	})
}

// readShard appends every Candidate stored in rs to tsrs.
func readShard(rs io.ReadSeeker, tsrs []Candidate) ([]Candidate, error) {
	scanner := recordio.NewScanner(rs, recordio.ScannerOpts{
		Unmarshal: unmarshalCandidate,
	})
	for scanner.Scan() {
		tsrs = append(tsrs, *scanner.Get().(*Candidate))
	}
	if err := scanner.Err(); err != nil {
		return tsrs, err
	}
	return tsrs, scanner.Finish()
}
