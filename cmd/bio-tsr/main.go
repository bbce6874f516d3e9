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
package main

import (
	"fmt"
	golog "log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/procap/tsr"
	"v.io/x/lib/cmdline"
)

func newCmdCall() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "call",
		Short:    "Call TSRs from a BED6 fragment file",
		ArgsName: "fragpath sizespath",
	}
	opts := tsr.DefaultOpts
	outPrefix := cmd.Flags.String("out", "bio-tsr", "Output path prefix")
	cmd.Flags.IntVar(&opts.WindowSize, "window", opts.WindowSize, "TSR window size (bp)")
	cmd.Flags.IntVar(&opts.MinReads, "min-reads", opts.MinReads, "Minimum number of reads in a TSR; must be positive")
	cmd.Flags.IntVar(&opts.MinAvgFragLen, "min-avg-frag-len", opts.MinAvgFragLen, "Minimum average fragment length in a TSR (nt)")
	cmd.Flags.IntVar(&opts.BufferUpstream, "buffer-upstream", opts.BufferUpstream, "Upstream margin blocked around each selected TSR (bp)")
	cmd.Flags.IntVar(&opts.BufferDownstream, "buffer-downstream", opts.BufferDownstream, "Downstream margin blocked around each selected TSR (bp)")
	cmd.Flags.IntVar(&opts.MaxFragLen, "max-frag-len", opts.MaxFragLen, "Fragments longer than this are ignored (nt)")
	cmd.Flags.StringVar(&opts.BedPath, "bed", opts.BedPath, "Only count fragments whose TSS is inside this BED; incompatible with -region")
	cmd.Flags.StringVar(&opts.Region, "region", opts.Region, "Only count fragments whose TSS is inside this region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; incompatible with -bed")
	cmd.Flags.BoolVar(&opts.DropOutOfRange, "drop-out-of-range", opts.DropOutOfRange, "Drop TSS positions past the chromosome end instead of failing")
	cmd.Flags.Int64Var(&opts.Seed, "seed", opts.Seed, "If nonzero, break ties between equally deep windows randomly, with this seed; otherwise the leftmost window wins")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", opts.Parallelism, "Maximum number of simultaneous partition jobs; 0 = runtime.NumCPU()")
	cmd.Flags.StringVar(&opts.TempDir, "temp-dir", opts.TempDir, "Directory to write temporary files to (default os.TempDir())")
	cmd.Flags.BoolVar(&opts.Bgzip, "bgzip", opts.Bgzip, "BGZF-compress the main .tsr.tsv output")
	cmd.Flags.BoolVar(&opts.Convert, "convert", opts.Convert, "Generate bigBed/bigWig tracks when the converters are available")
	cmd.Flags.StringVar(&opts.BedToBigBed, "bed-to-bigbed", opts.BedToBigBed, "bedToBigBed executable")
	cmd.Flags.StringVar(&opts.BedGraphToBigWig, "bedgraph-to-bigwig", opts.BedGraphToBigWig, "bedGraphToBigWig executable")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("call takes fragpath sizespath, but got %v", argv)
		}
		return tsr.Call(vcontext.Background(), argv[0], argv[1], *outPrefix, &opts)
	})
	return cmd
}

func newCmdConvert() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "convert",
		Short:    "Convert the BED and bedGraph tracks of a previous call into bigBed and bigWig",
		ArgsName: "outprefix sizespath",
	}
	opts := tsr.DefaultOpts
	cmd.Flags.StringVar(&opts.BedToBigBed, "bed-to-bigbed", opts.BedToBigBed, "bedToBigBed executable")
	cmd.Flags.StringVar(&opts.BedGraphToBigWig, "bedgraph-to-bigwig", opts.BedGraphToBigWig, "bedGraphToBigWig executable")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("convert takes outprefix sizespath, but got %v", argv)
		}
		return tsr.ConvertTracks(vcontext.Background(), argv[0], argv[1], &opts)
	})
	return cmd
}

func main() {
	golog.SetFlags(golog.Ldate | golog.Ltime | golog.Lmicroseconds | golog.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-tsr",
			Short:    "PRO-Cap transcription start region caller",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdCall(),
				newCmdConvert(),
			},
		})
}
