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

// Package tsr calls Transcription Start Regions (TSRs) from PRO-Cap
// fragments.
//
// The pipeline runs independently on each (chromosome, strand) partition:
//
//   1. ReadPartitions buckets fragments by chromosome and strand.
//   2. BuildSignal collapses fragments sharing a TSS into a sparse
//      per-position signal track.
//   3. FillGaps checks the sparse track against the chromosome length, and
//      produces a zero-filled dense view of it.
//   4. AggregateWindows slides a fixed-size window over the dense view, and
//      emits a Candidate for every window passing the depth and
//      average-fragment-length thresholds.
//   5. SelectRegions greedily picks the deepest candidates whose boundaries
//      don't fall inside an already-selected (buffer-padded) region.
//
// Call wires these together over a worker pool, and writes text tracks with
// WriteTracks.  ConvertTracks optionally hands the text tracks to the UCSC
// bedToBigBed and bedGraphToBigWig tools.
//
// Coordinates are 0-based and half-open throughout, except in the
// tab-separated output, which reports the max TSS (and the average TSS) in
// 1-based form.
package tsr
