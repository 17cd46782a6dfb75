// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/methyl/encoding/bedgraph"
)

func loadTable(t *testing.T, input string) *bedgraph.Table {
	table, err := bedgraph.Read(strings.NewReader(input))
	require.NoError(t, err)
	return table
}

// binnedInput renders 100bp bins of avg values as bedGraph text.
func binnedInput(chrom string, avg []float64) string {
	var sb strings.Builder
	for i, v := range avg {
		fmt.Fprintf(&sb, "%s\t%d\t%d\t%g\n", chrom, i*100, (i+1)*100, v)
	}
	return sb.String()
}

func TestCallAcceptsDeepValley(t *testing.T) {
	// Chromosome median 80, height threshold 40; the dip has effective
	// height 70 and passes.  Half-prominence boundaries snap outward to the
	// run edges here, since the flanks are single bins.
	table := loadTable(t, binnedInput("chr1", []float64{80, 10, 80}))
	calls, err := Call(context.Background(), table, DefaultOpts)
	require.NoError(t, err)
	assert.Equal(t, map[string][]Interval{"chr1": {{0, 300}}}, calls)
}

func TestCallRejectsShallowValley(t *testing.T) {
	// Effective height 10 < threshold 40: no output rows for the chromosome.
	table := loadTable(t, binnedInput("chr1", []float64{80, 70, 80}))
	calls, err := Call(context.Background(), table, DefaultOpts)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestCallGapSplitsRuns(t *testing.T) {
	// The coordinate gap splits the chromosome into two runs of 2 and 1
	// rows; neither can host a valley, so the dip spanning the gap is
	// undetectable by construction.
	table := loadTable(t, "chr1\t0\t100\t80\nchr1\t100\t200\t10\nchr1\t250\t350\t80\n")
	calls, err := Call(context.Background(), table, DefaultOpts)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestCallMergesNearbyValleys(t *testing.T) {
	table := loadTable(t, binnedInput("chr1", []float64{80, 80, 10, 80, 80, 80, 80, 80, 10, 80, 80, 80, 80}))

	// Without padding the two dips stay separate calls.
	opts := DefaultOpts
	calls, err := Call(context.Background(), table, opts)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{100, 400}, {700, 1000}}, calls["chr1"])

	// Padding by 200 bridges the 300bp gap between them; the merged span
	// has the pad stripped back off.
	opts.BpMerge = 200
	calls, err = Call(context.Background(), table, opts)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{100, 1000}}, calls["chr1"])
}

func TestCallPromGate(t *testing.T) {
	table := loadTable(t, binnedInput("chr1", []float64{80, 10, 80}))
	opts := DefaultOpts
	// Prominence 70 < 80*0.95: rejected at detection time.
	opts.ThrPromPercValley = 0.95
	calls, err := Call(context.Background(), table, opts)
	require.NoError(t, err)
	assert.Empty(t, calls)

	// 80*0.5 = 40 <= 70: detected and accepted.
	opts.ThrPromPercValley = 0.5
	calls, err = Call(context.Background(), table, opts)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{0, 300}}, calls["chr1"])
}

func TestCallThresholdMonotonic(t *testing.T) {
	table := loadTable(t, binnedInput("chr1", []float64{80, 80, 10, 80, 80, 80, 80, 80, 40, 80, 80, 80, 80}))
	prev := -1
	for _, thr := range []float64{0.1, 0.5, 0.6, 1.0, 1.5} {
		opts := DefaultOpts
		opts.ThrHeightPercValley = thr
		calls, err := Call(context.Background(), table, opts)
		require.NoError(t, err)
		n := len(calls["chr1"])
		if prev >= 0 {
			assert.True(t, n <= prev, "threshold %g: %d calls, up from %d", thr, n, prev)
		}
		prev = n
	}
}

func TestCallMultipleChromosomes(t *testing.T) {
	input := binnedInput("chr1", []float64{80, 10, 80}) +
		binnedInput("chr2", []float64{60, 60, 60}) +
		binnedInput("chr3", []float64{90, 20, 90})
	table := loadTable(t, input)
	opts := DefaultOpts
	opts.Parallelism = 2
	calls, err := Call(context.Background(), table, opts)
	require.NoError(t, err)
	assert.Equal(t, map[string][]Interval{
		"chr1": {{0, 300}},
		"chr3": {{0, 300}},
	}, calls)
}

func TestCallZeroLengthRows(t *testing.T) {
	// Zero-length rows are permitted inputs; a contiguous run of them forms
	// a valley whose snapped candidate spans no bases.  The call completes
	// and the degenerate candidate never reaches the output.
	table := loadTable(t, "chr1\t100\t100\t80\nchr1\t100\t100\t10\nchr1\t100\t100\t80\n")
	calls, err := Call(context.Background(), table, DefaultOpts)
	require.NoError(t, err)
	assert.Empty(t, calls)

	// Zero-length rows mixed into a real run don't perturb a normal call.
	table = loadTable(t, "chr1\t0\t100\t80\nchr1\t100\t100\t81\nchr1\t100\t200\t10\nchr1\t200\t300\t80\n")
	calls, err = Call(context.Background(), table, DefaultOpts)
	require.NoError(t, err)
	for _, iv := range calls["chr1"] {
		assert.True(t, iv.Begin < iv.End, "degenerate interval %v", iv)
	}
}

func TestCallEmptyTable(t *testing.T) {
	table := loadTable(t, "")
	calls, err := Call(context.Background(), table, DefaultOpts)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestCallOutputWithinInputSpan(t *testing.T) {
	avg := []float64{75, 82, 80, 12, 8, 15, 79, 81, 80, 78, 83, 10, 80, 82}
	table := loadTable(t, binnedInput("chr1", avg))
	opts := DefaultOpts
	opts.BpMerge = 100
	calls, err := Call(context.Background(), table, opts)
	require.NoError(t, err)
	for _, iv := range calls["chr1"] {
		assert.True(t, iv.Begin < iv.End, "degenerate interval %v", iv)
		assert.True(t, iv.Begin >= 0 && iv.End <= len(avg)*100, "interval %v outside input span", iv)
	}
	// Post-merge invariant: no two intervals overlap.
	for i := 1; i < len(calls["chr1"]); i++ {
		assert.True(t, calls["chr1"][i].Begin >= calls["chr1"][i-1].End)
	}
}

func TestWriteBED(t *testing.T) {
	calls := map[string][]Interval{
		"chr1": {{100, 400}, {700, 1000}},
		"chr2": {{0, 300}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteBED(&buf, []string{"chr1", "chr2", "chrX"}, calls))
	assert.Equal(t, "chr1\t100\t400\nchr1\t700\t1000\nchr2\t0\t300\n", buf.String())
}
