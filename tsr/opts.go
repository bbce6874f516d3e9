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
	"fmt"
	"runtime"
)

type Opts struct {
	// Commandline options.
	WindowSize       int
	MinReads         int
	MinAvgFragLen    int
	BufferUpstream   int
	BufferDownstream int
	MaxFragLen       int
	BedPath          string
	Region           string
	DropOutOfRange   bool
	Seed             int64
	Parallelism      int
	TempDir          string
	Bgzip            bool
	Convert          bool
	BedToBigBed      string
	BedGraphToBigWig string
}

var DefaultOpts = Opts{
	WindowSize:       20,
	MinReads:         3,
	MinAvgFragLen:    0,
	BufferUpstream:   0,
	BufferDownstream: 0,
	MaxFragLen:       1000,
	DropOutOfRange:   false,
	Seed:             0,
	Parallelism:      0,
	Bgzip:            false,
	Convert:          true,
	BedToBigBed:      "bedToBigBed",
	BedGraphToBigWig: "bedGraphToBigWig",
}

// validate rejects option combinations which would make the call
// meaningless.  A MinReads of 0 would turn every window into a candidate.
func (opts *Opts) validate() error {
	if opts.WindowSize <= 0 {
		return fmt.Errorf("tsr: window size must be positive, got %d", opts.WindowSize)
	}
	if opts.MinReads < 1 {
		return fmt.Errorf("tsr: min reads must be at least 1, got %d", opts.MinReads)
	}
	if opts.MinAvgFragLen < 0 {
		return fmt.Errorf("tsr: min average fragment length can't be negative, got %d", opts.MinAvgFragLen)
	}
	if opts.BufferUpstream < 0 || opts.BufferDownstream < 0 {
		return fmt.Errorf("tsr: buffers can't be negative, got upstream=%d downstream=%d", opts.BufferUpstream, opts.BufferDownstream)
	}
	if opts.MaxFragLen <= 0 {
		return fmt.Errorf("tsr: max fragment length must be positive, got %d", opts.MaxFragLen)
	}
	if opts.BedPath != "" && opts.Region != "" {
		return fmt.Errorf("tsr: bed and region options are mutually exclusive")
	}
	if opts.Parallelism < 0 {
		return fmt.Errorf("tsr: parallelism can't be negative, got %d", opts.Parallelism)
	}
	return nil
}

// parallelism returns the number of workers to use; 0 means one per CPU.
func (opts *Opts) parallelism() int {
	if opts.Parallelism > 0 {
		return opts.Parallelism
	}
	return runtime.NumCPU()
}
