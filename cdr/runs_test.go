// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/methyl/encoding/bedgraph"
)

func rec(start, end int, avg float64) bedgraph.Record {
	return bedgraph.Record{Chrom: "chr1", Start: start, End: end, Avg: avg}
}

func TestSplitRuns(t *testing.T) {
	tests := []struct {
		name string
		recs []bedgraph.Record
		want [][]bedgraph.Record
	}{
		{
			"all contiguous",
			[]bedgraph.Record{rec(0, 100, 1), rec(100, 200, 2), rec(200, 300, 3)},
			[][]bedgraph.Record{{rec(0, 100, 1), rec(100, 200, 2), rec(200, 300, 3)}},
		},
		{
			"gap splits",
			[]bedgraph.Record{rec(0, 100, 1), rec(100, 200, 2), rec(250, 350, 3)},
			[][]bedgraph.Record{{rec(0, 100, 1), rec(100, 200, 2)}, {rec(250, 350, 3)}},
		},
		{
			"every row isolated",
			[]bedgraph.Record{rec(0, 100, 1), rec(200, 300, 2), rec(400, 500, 3)},
			[][]bedgraph.Record{{rec(0, 100, 1)}, {rec(200, 300, 2)}, {rec(400, 500, 3)}},
		},
		{
			"single row",
			[]bedgraph.Record{rec(0, 100, 1)},
			[][]bedgraph.Record{{rec(0, 100, 1)}},
		},
		{
			"empty",
			nil,
			nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := splitRuns(test.recs)
			require.Equal(t, len(test.want), len(got))
			for i := range got {
				assert.Equal(t, test.want[i], got[i])
			}
		})
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 80.0, median([]float64{80}))
	assert.Equal(t, 80.0, median([]float64{80, 10, 80}))
	assert.Equal(t, 45.0, median([]float64{10, 80}))      // midpoint for even n
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))   // unsorted input
	vals := []float64{3, 1, 2}
	_ = median(vals)
	assert.Equal(t, []float64{3, 1, 2}, vals) // input not reordered
}

func TestMinAvg(t *testing.T) {
	assert.Equal(t, 10.0, minAvg([]bedgraph.Record{rec(0, 100, 80), rec(100, 200, 10), rec(200, 300, 80)}))
}
