// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"math"

	"github.com/grailbio/methyl/encoding/bedgraph"
)

// windowMedian computes the median avg of the rows fully contained in
// [lo, hi).  A row lying fully inside any sibling candidate (other than the
// one being evaluated, identified by self) contributes chromMedian in place
// of its own avg, so a neighboring valley cannot drag down the local
// baseline; the substitution is scoped to this call and the table is never
// touched.  An empty window falls back to the run's own median.  (Only an
// empty one: a genuine flank median of 0.0 stands.)
func windowMedian(run []bedgraph.Record, lo, hi int, sibs *footprints, self uintptr, chromMedian, runMedian float64) float64 {
	rows := bedgraph.Within(run, lo, hi)
	if len(rows) == 0 {
		return runMedian
	}
	vals := make([]float64, len(rows))
	for i, r := range rows {
		if sibs.covers(r, self) {
			vals[i] = chromMedian
		} else {
			vals[i] = r.Avg
		}
	}
	return median(vals)
}

// effectiveHeight measures how deep the candidate c dips below its local
// baseline: the baseline is the lower of the two flank-window medians
// (bpEdge bases on each side, sibling candidates masked out), and the dip is
// the lowest avg among the rows inside c.  A valley is only a genuine CDR if
// it sits below both of its immediate surroundings.
func effectiveHeight(c candidate, self uintptr, sibs *footprints, run []bedgraph.Record, chromMedian, runMedian float64, bpEdge int) float64 {
	leftMed := windowMedian(run, c.Begin-bpEdge, c.Begin, sibs, self, chromMedian, runMedian)
	rightMed := windowMedian(run, c.End, c.End+bpEdge, sibs, self, chromMedian, runMedian)
	low := minAvg(bedgraph.Within(run, c.Begin, c.End))
	return math.Min(leftMed, rightMed) - low
}
