// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cdr

import (
	"gonum.org/v1/gonum/floats"
)

// minValleyWidth is the minimum width, in samples, of an accepted valley
// measured at the half-prominence level.
const minValleyWidth = 1.0

// valley is one detected local minimum of a run's signal, in index space.
// leftIP/rightIP are the fractional sample positions where the signal crosses
// the half-prominence level on either side of the minimum; prom is the
// topographic prominence of the minimum (a vertical distance, positive).
type valley struct {
	leftIP  float64
	rightIP float64
	prom    float64
}

// findValleys locates the local minima of avg that have topographic
// prominence >= minProm (no prominence gate when minProm <= 0) and width >= 1
// sample at the half-prominence level.  The signal is negated so minima
// become maxima; the detection semantics then follow the classic
// peak-prominence formulation: a sample is a peak if it exceeds its left
// neighbor and the first differing sample to its right (a flat plateau
// contributes its midpoint); prominence is measured by walking outward from
// the peak, on each side, until a higher sample or the signal edge is
// reached, taking the lowest point seen on the way as that side's base.
//
// The input is never modified.  Overlapping valleys are possible and are all
// returned; deduplication is the caller's concern.
func findValleys(avg []float64, minProm float64) []valley {
	n := len(avg)
	if n < 3 {
		// A local extremum needs an interior sample with neighbors on both
		// sides.
		return nil
	}
	x := make([]float64, n)
	copy(x, avg)
	floats.Scale(-1, x)

	peaks := localMaxima(x)
	var valleys []valley
	for _, p := range peaks {
		prom, leftBase, rightBase := prominence(x, p)
		if minProm > 0 && prom < minProm {
			continue
		}
		leftIP, rightIP := widthBounds(x, p, prom, leftBase, rightBase)
		if rightIP-leftIP < minValleyWidth {
			continue
		}
		valleys = append(valleys, valley{leftIP: leftIP, rightIP: rightIP, prom: prom})
	}
	return valleys
}

// localMaxima returns the indices of the local maxima of x, in increasing
// order.  A maximum must strictly exceed its left neighbor and the first
// non-equal sample to its right; a plateau of equal samples yields its
// (floored) midpoint.  The first and last samples are never maxima.
func localMaxima(x []float64) []int {
	var peaks []int
	iMax := len(x) - 1
	i := 1
	for i < iMax {
		if x[i-1] < x[i] {
			iAhead := i + 1
			for iAhead < iMax && x[iAhead] == x[i] {
				iAhead++
			}
			if x[iAhead] < x[i] {
				leftEdge := i
				rightEdge := iAhead - 1
				peaks = append(peaks, (leftEdge+rightEdge)/2)
				i = iAhead
			}
		}
		i++
	}
	return peaks
}

// prominence computes the topographic prominence of the peak at index p,
// along with the index of the base (lowest point walked through) on each
// side.  The walk on each side stops at the first sample higher than the
// peak, or at the signal edge.
func prominence(x []float64, p int) (prom float64, leftBase, rightBase int) {
	iMax := len(x) - 1

	leftBase = p
	leftMin := x[p]
	for i := p; i > 0 && x[i] <= x[p]; {
		i--
		if x[i] < leftMin {
			leftMin = x[i]
			leftBase = i
		}
	}

	rightBase = p
	rightMin := x[p]
	for i := p; i < iMax && x[i] <= x[p]; {
		i++
		if x[i] < rightMin {
			rightMin = x[i]
			rightBase = i
		}
	}

	higherMin := leftMin
	if rightMin > higherMin {
		higherMin = rightMin
	}
	return x[p] - higherMin, leftBase, rightBase
}

// widthBounds evaluates the peak's width at the height level
// x[p] - prom/2, returning the fractional sample positions of the nearest
// crossing on each side.  When the crossing falls between two samples, the
// position is linearly interpolated; the walk never leaves the peak's
// [leftBase, rightBase] interval.
func widthBounds(x []float64, p int, prom float64, leftBase, rightBase int) (leftIP, rightIP float64) {
	height := x[p] - prom*0.5

	i := p
	for i > leftBase && height < x[i] {
		i--
	}
	leftIP = float64(i)
	if x[i] < height {
		leftIP += (height - x[i]) / (x[i+1] - x[i])
	}

	i = p
	for i < rightBase && height < x[i] {
		i++
	}
	rightIP = float64(i)
	if x[i] < height {
		rightIP -= (height - x[i]) / (x[i-1] - x[i])
	}
	return leftIP, rightIP
}
