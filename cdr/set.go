// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"sort"

	biointerval "github.com/biogo/store/interval"
	"github.com/grailbio/base/log"
)

// setEntry adapts an accepted interval to biogo's interval-tree element
// interface.
type setEntry struct {
	iv Interval
	id uintptr
}

func (e setEntry) Overlap(b biointerval.IntRange) bool {
	return e.iv.End > b.Start && e.iv.Begin < b.End
}
func (e setEntry) ID() uintptr                 { return e.id }
func (e setEntry) Range() biointerval.IntRange { return biointerval.IntRange{Start: e.iv.Begin, End: e.iv.End} }

// Set accumulates one chromosome's accepted (possibly padded) CDR intervals.
// It has set semantics keyed by coordinates: inserting an interval equal to
// one already present is a no-op.  The zero Set is ready to use; it must not
// be shared across goroutines without synchronization.
type Set struct {
	tree biointerval.IntTree
}

// Add inserts iv unless an equal-coordinate interval is already present.
func (s *Set) Add(iv Interval) {
	dup := false
	s.tree.DoMatching(func(e biointerval.IntInterface) bool {
		if r := e.Range(); r.Start == iv.Begin && r.End == iv.End {
			dup = true
			return true
		}
		return false
	}, setEntry{iv: iv})
	if dup {
		return
	}
	if err := s.tree.Insert(setEntry{iv: iv, id: uintptr(s.tree.Len())}, false); err != nil {
		log.Panicf("cdr.Set.Add: %v", err)
	}
}

// Len returns the number of distinct intervals in the set.
func (s *Set) Len() int { return s.tree.Len() }

// Intervals returns the set's contents sorted by (Begin, End).
func (s *Set) Intervals() []Interval {
	ivs := make([]Interval, 0, s.tree.Len())
	s.tree.Do(func(e biointerval.IntInterface) bool {
		r := e.Range()
		ivs = append(ivs, Interval{Begin: r.Start, End: r.End})
		return false
	})
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Begin != ivs[j].Begin {
			return ivs[i].Begin < ivs[j].Begin
		}
		return ivs[i].End < ivs[j].End
	})
	return ivs
}

// Merge finalizes the set.  With pad > 0, overlapping and touching intervals
// are coalesced by a sorted sweep and the pad margin applied before insertion
// is stripped back off each merged interval, exactly reversing the earlier
// expansion.  With pad <= 0 the (deduplicated) intervals pass through
// untouched.  The result is position-sorted; merging a merged result again
// yields the same set.
func (s *Set) Merge(pad int) []Interval {
	ivs := s.Intervals()
	if pad <= 0 || len(ivs) == 0 {
		return ivs
	}
	merged := unionSweep(ivs)
	for i := range merged {
		merged[i].Begin += pad
		merged[i].End -= pad
	}
	return merged
}

// unionSweep coalesces a position-sorted interval slice: any two intervals
// that overlap or share an endpoint collapse into one spanning interval,
// chaining across any number of inputs.
func unionSweep(sorted []Interval) []Interval {
	out := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, iv := range sorted[1:] {
		if iv.Begin <= cur.End {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	return append(out, cur)
}
