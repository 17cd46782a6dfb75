// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"context"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/grailbio/methyl/encoding/bedgraph"
)

// Opts collects the caller's tuning knobs.
type Opts struct {
	// BpMerge pads both ends of each accepted CDR by this many bases and
	// merges the results per chromosome; 0 disables padding and merging.
	BpMerge int
	// ThrHeightPercValley is the fraction of the chromosome's median avg
	// required as a candidate's minimum effective height.
	ThrHeightPercValley float64
	// ThrPromPercValley is the fraction of the chromosome's median avg
	// required as minimum prominence at detection time; 0 disables the
	// prominence gate (the height filter still applies).
	ThrPromPercValley float64
	// BpEdge is the number of bases examined on each side of a candidate
	// when establishing its flanking baseline.
	BpEdge int
	// Parallelism caps the number of chromosomes processed simultaneously;
	// 0 = runtime.NumCPU().
	Parallelism int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	BpMerge:             0,
	ThrHeightPercValley: 0.5,
	ThrPromPercValley:   0,
	BpEdge:              5000,
	Parallelism:         0,
}

// Call detects CDRs on every chromosome of the table and returns the final
// per-chromosome interval sets, position-sorted.  Chromosomes with no
// accepted call are absent from the result.  Chromosomes are independent and
// are processed in parallel; all diagnostics go to the log.
func Call(ctx context.Context, table *bedgraph.Table, opts Opts) (map[string][]Interval, error) {
	chroms := table.Chroms()
	if len(chroms) == 0 {
		return map[string][]Interval{}, nil
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(chroms) {
		parallelism = len(chroms)
	}
	results := make([][]Interval, len(chroms))
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(chroms)) / parallelism
		endIdx := ((jobIdx + 1) * len(chroms)) / parallelism
		for i := startIdx; i < endIdx; i++ {
			results[i] = callChrom(chroms[i], table.Records(chroms[i]), opts)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	calls := make(map[string][]Interval, len(chroms))
	for i, chrom := range chroms {
		if len(results[i]) > 0 {
			calls[chrom] = results[i]
		}
	}
	return calls, nil
}

// callChrom runs the full pipeline on one chromosome: thresholds from the
// chromosome median, run segmentation, valley detection, per-candidate
// edge-height evaluation, filter/pad into the set, final merge.
func callChrom(chrom string, recs []bedgraph.Record, opts Opts) []Interval {
	chromMedian := median(avgValues(recs))
	heightThr := chromMedian * opts.ThrHeightPercValley
	promThr := 0.0
	if opts.ThrPromPercValley > 0 {
		promThr = chromMedian * opts.ThrPromPercValley
	}
	log.Printf("cdr.Call: %s: using height threshold %g and prominence threshold %g", chrom, heightThr, promThr)

	var set Set
	for _, run := range splitRuns(recs) {
		cands := detectRun(run, promThr)
		if len(cands) == 0 {
			continue
		}
		// The evaluator needs the run's full sibling set, so candidates are
		// scored only after detection over the whole run has finished.
		runMedian := median(avgValues(run))
		sibs := newFootprints(cands)
		for k, c := range cands {
			height := effectiveHeight(c, uintptr(k), sibs, run, chromMedian, runMedian, opts.BpEdge)
			if height < heightThr {
				continue
			}
			log.Printf("cdr.Call: found CDR at %s:%d-%d with height %g and prominence %g", chrom, c.Begin, c.End, height, c.prom)
			iv := c.Interval
			if opts.BpMerge > 0 {
				iv.Begin -= opts.BpMerge
				iv.End += opts.BpMerge
			}
			set.Add(iv)
		}
	}
	nAccepted := set.Len()
	out := set.Merge(opts.BpMerge)
	if opts.BpMerge > 0 {
		log.Printf("cdr.Call: merged %d interval(s) in %s", nAccepted-len(out), chrom)
	}
	return out
}
