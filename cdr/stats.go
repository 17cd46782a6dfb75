// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"sort"

	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/floats"

	"github.com/grailbio/methyl/encoding/bedgraph"
)

// median returns the midpoint median: for even n, the mean of the two
// central order statistics.  The thresholds in this package are defined
// against this tie rule, so don't swap in a quantile estimator with a
// different one.  vals is not modified.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		log.Panicf("cdr.median: empty input")
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// avgValues extracts the avg column of a row slice.
func avgValues(recs []bedgraph.Record) []float64 {
	vals := make([]float64, len(recs))
	for i, r := range recs {
		vals[i] = r.Avg
	}
	return vals
}

// minAvg returns the smallest avg among recs.
func minAvg(recs []bedgraph.Record) float64 {
	return floats.Min(avgValues(recs))
}
