// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"math"

	biointerval "github.com/biogo/store/interval"
	"github.com/grailbio/base/log"

	"github.com/grailbio/methyl/encoding/bedgraph"
)

// Interval is a half-open [Begin, End) genomic interval on one chromosome.
type Interval struct {
	Begin int
	End   int
}

// candidate is a detected valley in genomic coordinates, before height
// filtering.
type candidate struct {
	Interval
	prom float64
}

// snap converts a valley's fractional index-space boundaries into genomic
// coordinates against the run it was detected in: the start of the row at
// floor(leftIP) and the end of the row at ceil(rightIP).  The asymmetric
// floor/ceil pair always widens outward.  Boundaries outside the run's index
// range signal a detector bug and are fatal.
func snap(run []bedgraph.Record, v valley) Interval {
	li := int(math.Floor(v.leftIP))
	ri := int(math.Ceil(v.rightIP))
	if li < 0 || ri >= len(run) {
		log.Panicf("cdr.snap: valley boundary [%g, %g] outside run of %d row(s)", v.leftIP, v.rightIP, len(run))
	}
	return Interval{Begin: run[li].Start, End: run[ri].End}
}

// detectRun finds the candidate valleys of one contiguous run.  Candidates
// with identical genomic coordinates (possible with degenerate plateaus)
// collapse to the first detected; the result preserves detection order.
// Zero-length candidates (a valley whose snapped boundaries collapse onto a
// run of zero-length rows) span no bases and are discarded here, so they can
// never reach the output set.
func detectRun(run []bedgraph.Record, minProm float64) []candidate {
	valleys := findValleys(avgValues(run), minProm)
	if len(valleys) == 0 {
		return nil
	}
	seen := make(map[Interval]bool, len(valleys))
	cands := make([]candidate, 0, len(valleys))
	for _, v := range valleys {
		iv := snap(run, v)
		if iv.Begin >= iv.End || seen[iv] {
			continue
		}
		seen[iv] = true
		cands = append(cands, candidate{Interval: iv, prom: v.prom})
	}
	return cands
}

// footprint adapts a candidate's genomic extent to biogo's interval-tree
// element interface.  The ID is the candidate's position in its run's
// candidate slice, so one tree can serve every evaluation in the run with
// self-exclusion by ID.
type footprint struct {
	begin, end int
	id         uintptr
}

func (f footprint) Overlap(b biointerval.IntRange) bool {
	// Half-open interval indexing.
	return f.end > b.Start && f.begin < b.End
}
func (f footprint) ID() uintptr                 { return f.id }
func (f footprint) Range() biointerval.IntRange { return biointerval.IntRange{Start: f.begin, End: f.end} }

// footprints indexes the candidate valleys of one run for containment
// queries during edge-height evaluation.
type footprints struct {
	tree biointerval.IntTree
}

// newFootprints builds the index over a run's candidate slice.
func newFootprints(cands []candidate) *footprints {
	f := &footprints{}
	for k, c := range cands {
		if err := f.tree.Insert(footprint{begin: c.Begin, end: c.End, id: uintptr(k)}, false); err != nil {
			log.Panicf("cdr.newFootprints: %v", err)
		}
	}
	return f
}

// covers reports whether rec falls fully inside any candidate other than the
// one identified by self.
func (f *footprints) covers(rec bedgraph.Record, self uintptr) bool {
	found := false
	f.tree.DoMatching(func(iv biointerval.IntInterface) bool {
		if iv.ID() == self {
			return false
		}
		r := iv.Range()
		if r.Start <= rec.Start && rec.End <= r.End {
			found = true
			return true
		}
		return false
	}, footprint{begin: rec.Start, end: rec.End, id: ^uintptr(0)})
	return found
}
