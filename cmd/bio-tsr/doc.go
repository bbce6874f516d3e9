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

/*
bio-tsr calls Transcription Start Regions (TSRs) from PRO-Cap fragments.

The input is a 6-column BED file of mapped fragments (chrom, start, end, name,
score, strand; optionally gzipped) and a chrom.sizes table.  TSS signal is
collected per (chromosome, strand), a fixed-size window is slid across it,
and the deepest non-overlapping windows passing the depth and
average-fragment-length thresholds are reported.

For output prefix P, "bio-tsr call" writes
    P.tsr.tsv                 one line per TSR (P.tsr.tsv.gz with -bgzip)
    P.tsr.bed, P.maxtss.bed   BED6 TSR extents and max-TSS positions
    P.maxtss_reads.bedgraph   max-TSS depth
    P.tsr_reads.bedgraph      TSR depth, at the max TSS
    P.stdev.bedgraph          TSS position stdev, at the max TSS
and, if bedToBigBed and bedGraphToBigWig are on $PATH, the corresponding .bb
and .bw files.  "bio-tsr convert" regenerates only the .bb/.bw files.

Sample usage:
bio-tsr call \
    -window 20 \
    -min-reads 5 \
    -out output-prefix \
    fragments.bed.gz \
    hg38.chrom.sizes
*/
package main
