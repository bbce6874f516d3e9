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
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/procap/interval"
	"github.com/klauspost/compress/gzip"
)

// openInput opens path for reading, transparently decompressing it if its
// name ends in .gz.  The caller is responsible for closing f.
func openInput(ctx context.Context, path string) (f file.File, r io.Reader, err error) {
	if f, err = file.Open(ctx, path); err != nil {
		return nil, nil, errors.E(err, "couldn't open", path)
	}
	r = f.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(r); err != nil {
			_ = f.Close(ctx)
			return nil, nil, errors.E(err, "couldn't read gzip header of", path)
		}
		r = gz
	}
	return f, r, nil
}

// checkInputs fails fast when a required input doesn't exist, before any
// output is created.
func checkInputs(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if path == "" {
			return fmt.Errorf("tsr: missing required input path")
		}
		if _, err := file.Stat(ctx, path); err != nil {
			return errors.E(err, "input not found:", path)
		}
	}
	return nil
}

// ChromSizes maps chromosome names to their lengths.
type ChromSizes map[string]PosType

type chromSizeRow struct {
	Chrom  string
	Length int64
}

// ReadChromSizes loads a two-column chrom<TAB>length table, as used by the
// UCSC tools.
func ReadChromSizes(ctx context.Context, path string) (sizes ChromSizes, err error) {
	f, r, err := openInput(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, f, &err)

	reader := tsv.NewReader(r)
	reader.Comment = '#'
	sizes = make(ChromSizes)
	var row chromSizeRow
	for lineIdx := 1; ; lineIdx++ {
		if err = reader.Read(&row); err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			return nil, errors.E(err, fmt.Sprintf("%s:%d", path, lineIdx))
		}
		if row.Length < 0 || row.Length > int64(interval.PosTypeMax) {
			return nil, fmt.Errorf("tsr.ReadChromSizes: %s:%d: invalid length %d for %s", path, lineIdx, row.Length, row.Chrom)
		}
		if _, ok := sizes[row.Chrom]; ok {
			return nil, fmt.Errorf("tsr.ReadChromSizes: %s:%d: duplicate chromosome %s", path, lineIdx, row.Chrom)
		}
		sizes[row.Chrom] = PosType(row.Length)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("tsr.ReadChromSizes: %s: no chromosomes", path)
	}
	log.Debug.Printf("tsr.ReadChromSizes: %d chromosome(s) loaded from %s", len(sizes), path)
	return sizes, nil
}
