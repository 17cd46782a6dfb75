// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bedgraph loads headerless 4-column (chrom, start, end, value)
// bedGraph-style text into an in-memory table, grouped by chromosome.
//
// Coordinates are 0-based half-open, the usual BED convention.  Rows of one
// chromosome must appear together and be sorted by start position; the values
// are typically binned averages (e.g. 5mC methylation percentages), and this
// package does not interpret them.
package bedgraph

import (
	"bufio"
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Record is one input row.  The [Start, End) interval is half-open.
type Record struct {
	Chrom string
	Start int
	End   int
	Avg   float64
}

// Table holds all records of one input file, grouped per chromosome.  Row
// order within a chromosome, and the order in which chromosomes first appear,
// both match the input.
type Table struct {
	chroms []string
	recs   map[string][]Record
	n      int
}

// Chroms returns chromosome names in input-appearance order.
func (t *Table) Chroms() []string { return t.chroms }

// Records returns the rows of one chromosome in input order, or nil if the
// chromosome never appeared.
func (t *Table) Records(chrom string) []Record { return t.recs[chrom] }

// NRecords returns the total row count.
func (t *Table) NRecords() int { return t.n }

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.  (Same scraper as the BED loaders use; a bedGraph
// line just has one more column.)
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

// Read parses a headerless tab-separated (chrom, start, end, avg) stream.
// Blank lines are skipped.  Any malformed row aborts the load with an error
// identifying the offending line; no partial table is returned.
func Read(reader io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(reader)
	t := &Table{recs: make(map[string][]Record)}

	// One extra slot so trailing columns are noticed rather than silently
	// dropped.
	var tokens [5][]byte
	lineIdx := 0
	prevChr := ""
	prevStart := -1
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken != 4 {
			if nToken == 0 {
				continue
			}
			return nil, errors.Errorf("bedgraph.Read: line %d has %d column(s), expected 4", lineIdx, nToken)
		}
		start, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: bad start coordinate on line %d", lineIdx)
		}
		if start < 0 {
			return nil, errors.Errorf("bedgraph.Read: negative start coordinate %d on line %d", start, lineIdx)
		}
		end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: bad end coordinate on line %d", lineIdx)
		}
		if end < start {
			return nil, errors.Errorf("bedgraph.Read: invalid coordinate pair [%d, %d) on line %d", start, end, lineIdx)
		}
		avg, err := strconv.ParseFloat(gunsafe.BytesToString(tokens[3]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: bad value on line %d", lineIdx)
		}

		// Copy: tokens[0] refers to scanner-owned bytes.
		curChr := string(tokens[0])
		if curChr != prevChr {
			if _, found := t.recs[curChr]; found {
				return nil, errors.Errorf("bedgraph.Read: unsorted input (split chromosome %s) on line %d", curChr, lineIdx)
			}
			t.chroms = append(t.chroms, curChr)
			t.recs[curChr] = nil
			prevChr = curChr
			prevStart = -1
		}
		if start < prevStart {
			return nil, errors.Errorf("bedgraph.Read: unsorted input on line %d", lineIdx)
		}
		prevStart = start
		t.recs[curChr] = append(t.recs[curChr], Record{Chrom: curChr, Start: start, End: end, Avg: avg})
		t.n++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadFromPath is a wrapper for Read that takes a path instead of an
// io.Reader.  Gzipped input is detected by filename.
func ReadFromPath(ctx context.Context, path string) (t *Table, err error) {
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
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return
		}
		reader = gz
	}
	return Read(reader)
}

// Within returns the rows of recs fully contained in [lo, hi), i.e. those
// with lo <= Start and End <= hi.  A zero-length row sitting exactly on
// either boundary is contained.  recs must be sorted by Start; the result is
// freshly allocated and safe to retain.
func Within(recs []Record, lo, hi int) []Record {
	first := sort.Search(len(recs), func(i int) bool { return recs[i].Start >= lo })
	var out []Record
	for i := first; i < len(recs) && recs[i].Start <= hi; i++ {
		if recs[i].End <= hi {
			out = append(out, recs[i])
		}
	}
	return out
}
