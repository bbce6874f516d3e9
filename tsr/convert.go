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
	"os/exec"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// Binary track suffixes produced by ConvertTracks.
const (
	TSRBigBedSuffix    = ".tsr.bb"
	MaxTSSBigBedSuffix = ".maxtss.bb"
)

type conversion struct {
	tool string
	args []string // before the input path
	in   string
	out  string
}

func conversions(outPrefix string, opts *Opts) []conversion {
	convs := []conversion{
		{opts.BedToBigBed, []string{"-type=bed6"}, outPrefix + TSRBedSuffix, outPrefix + TSRBigBedSuffix},
		{opts.BedToBigBed, []string{"-type=bed6"}, outPrefix + MaxTSSBedSuffix, outPrefix + MaxTSSBigBedSuffix},
	}
	for _, suffix := range []string{MaxTSSReadsGraphSuffix, TSRReadsGraphSuffix, StdevGraphSuffix} {
		convs = append(convs, conversion{
			opts.BedGraphToBigWig, nil,
			outPrefix + suffix,
			outPrefix + strings.TrimSuffix(suffix, ".bedgraph") + ".bw",
		})
	}
	return convs
}

// ConvertTracks converts the BED and bedGraph tracks under outPrefix into
// their indexed binary equivalents, using the UCSC bedToBigBed and
// bedGraphToBigWig tools.  A tool which can't be found is not an error: a
// notice is logged, and its outputs are skipped.  A tool which runs and
// fails is an error.  Empty tracks are skipped, since the tools reject them.
func ConvertTracks(ctx context.Context, outPrefix, sizesPath string, opts *Opts) error {
	toolPaths := make(map[string]string)
	for _, conv := range conversions(outPrefix, opts) {
		toolPath, ok := toolPaths[conv.tool]
		if !ok {
			var err error
			if toolPath, err = exec.LookPath(conv.tool); err != nil {
				log.Error.Printf("tsr.ConvertTracks: %s not available (%v), skipping its outputs", conv.tool, err)
				toolPath = ""
			}
			toolPaths[conv.tool] = toolPath
		}
		if toolPath == "" {
			continue
		}
		info, err := file.Stat(ctx, conv.in)
		if err != nil {
			return errors.E(err, "couldn't stat", conv.in)
		}
		if info.Size() == 0 {
			log.Printf("tsr.ConvertTracks: %s is empty, not converting", conv.in)
			continue
		}
		args := append(append([]string{}, conv.args...), conv.in, sizesPath, conv.out)
		cmd := exec.CommandContext(ctx, toolPath, args...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return errors.E(err, conv.tool, "failed on", conv.in+":", strings.TrimSpace(string(out)))
		}
		log.Debug.Printf("tsr.ConvertTracks: wrote %s", conv.out)
	}
	return nil
}
