// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"github.com/grailbio/methyl/encoding/bedgraph"
)

// splitRuns partitions one chromosome's rows into maximal contiguous runs: a
// run boundary falls wherever a row's end does not equal the next row's
// start.  Every returned run is a non-empty subslice of recs; no candidate
// valley may cross a run boundary, so downstream peak search operates on one
// run at a time.
func splitRuns(recs []bedgraph.Record) [][]bedgraph.Record {
	var runs [][]bedgraph.Record
	runStart := 0
	for i := 0; i < len(recs); i++ {
		if i+1 == len(recs) || recs[i].End != recs[i+1].Start {
			runs = append(runs, recs[runStart:i+1])
			runStart = i + 1
		}
	}
	return runs
}
