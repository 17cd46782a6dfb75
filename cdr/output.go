// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
)

// WriteBED writes the accepted calls as a headerless 3-column BED:
// chromosomes in the given order (normally the input table's appearance
// order), intervals position-sorted within each chromosome.
func WriteBED(w io.Writer, chroms []string, calls map[string][]Interval) error {
	tsvw := tsv.NewWriter(w)
	for _, chrom := range chroms {
		for _, iv := range calls[chrom] {
			tsvw.WriteString(chrom)
			tsvw.WriteUint32(uint32(iv.Begin))
			tsvw.WriteUint32(uint32(iv.End))
			if err := tsvw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tsvw.Flush()
}

// WriteBEDToPath is a wrapper for WriteBED that takes a path instead of an
// io.Writer.  A .gz suffix selects gzip-compressed output.
func WriteBEDToPath(ctx context.Context, path string, chroms []string, calls map[string][]Interval) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	writer := io.Writer(dst.Writer(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz := gzip.NewWriter(writer)
		defer func() {
			if cerr := gz.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		writer = gz
	}
	return WriteBED(writer, chroms, calls)
}
