// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

func TestLineRandPointIsContained(tst *testing.T) {
	chk.PrintTitle("line random point containment")
	l, err := NewLine(Point{0, 0}, Point{3, 4})
	require.NoError(tst, err)
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 1} {
		p := l.GetRandPoint(r)
		if !l.Contains(p) {
			tst.Errorf("line does not contain its own random point at r=%v: %v", r, p)
		}
	}
}

func TestTriangleRandPointIsContained(tst *testing.T) {
	chk.PrintTitle("triangle random point containment")
	t1, err := NewTriangle(Point{0, 0}, Point{1, 0}, Point{0, 1})
	require.NoError(tst, err)
	cases := [][2]float64{{0.1, 0.1}, {0.9, 0.9}, {0.3, 0.3}, {0.2, 0.3}}
	for _, c := range cases {
		p := t1.GetRandPoint(c[0], c[1])
		if !t1.Contains(p) {
			tst.Errorf("triangle does not contain its own random point at (%v,%v): %v", c[0], c[1], p)
		}
	}
}

func TestTriangleRejectsDegenerate(tst *testing.T) {
	chk.PrintTitle("degenerate triangle rejected")
	_, err := NewTriangle(Point{0, 0}, Point{1, 1}, Point{2, 2})
	require.Error(tst, err)
	_, err = NewTriangle(Point{0, 0}, Point{0, 0}, Point{1, 1})
	require.Error(tst, err)
}

func TestLineRejectsCoincidentEndpoints(tst *testing.T) {
	chk.PrintTitle("degenerate line rejected")
	_, err := NewLine(Point{1, 1}, Point{1, 1})
	require.Error(tst, err)
}

func TestLineOverlapVsTouch(tst *testing.T) {
	chk.PrintTitle("line overlap excludes end-to-end touch")
	base, err := NewLine(Point{0, 0}, Point{2, 0})
	require.NoError(tst, err)
	touching, err := NewLine(Point{2, 0}, Point{4, 0})
	require.NoError(tst, err)
	overlapping, err := NewLine(Point{1, 0}, Point{3, 0})
	require.NoError(tst, err)
	if base.Overlaps(touching) {
		tst.Errorf("end-to-end touch should not count as overlap")
	}
	if !base.Overlaps(overlapping) {
		tst.Errorf("expected overlap between base and overlapping segment")
	}
}

func TestLineContainsSubsegment(tst *testing.T) {
	chk.PrintTitle("line contains sub-segment")
	main, err := NewLine(Point{0, 0}, Point{10, 0})
	require.NoError(tst, err)
	sub, err := NewLine(Point{2, 0}, Point{8, 0})
	require.NoError(tst, err)
	if !main.ContainsLine(sub) {
		tst.Errorf("expected main line to contain sub-segment")
	}
	sticking, err := NewLine(Point{8, 0}, Point{12, 0})
	require.NoError(tst, err)
	if main.ContainsLine(sticking) {
		tst.Errorf("segment extending past the main line should not be reported contained")
	}
	offAxis, err := NewLine(Point{2, 1}, Point{8, 1})
	require.NoError(tst, err)
	if main.ContainsLine(offAxis) {
		tst.Errorf("parallel segment off the main line should not be reported contained")
	}
}

func TestLineIntersection(tst *testing.T) {
	chk.PrintTitle("line intersection")
	l1, err := NewLine(Point{0, 0}, Point{2, 2})
	require.NoError(tst, err)
	l2, err := NewLine(Point{0, 2}, Point{2, 0})
	require.NoError(tst, err)
	p, ok := l1.GetIntersection(l2)
	require.True(tst, ok)
	chk.Float64(tst, "x", 1e-12, p.X, 1)
	chk.Float64(tst, "y", 1e-12, p.Y, 1)
}

func TestTriangleNormalPointsInward(tst *testing.T) {
	chk.PrintTitle("triangle edge normal points inward")
	t1, err := NewTriangle(Point{0, 0}, Point{1, 0}, Point{0, 1})
	require.NoError(tst, err)
	centroid := Point{(t1.P1.X + t1.P2.X + t1.P3.X) / 3, (t1.P1.Y + t1.P2.Y + t1.P3.Y) / 3}
	for i := range t1.Edges {
		n := t1.EdgeNormal(i)
		mid := t1.Edges[i].P1.Add(t1.Edges[i].P2).Scale(0.5)
		toCentroid := centroid.Sub(mid)
		if n.Dot(toCentroid) <= 0 {
			tst.Errorf("edge %d normal %v does not point toward centroid", i, n)
		}
		if math.Abs(n.Norm()-1) > 1e-9 {
			tst.Errorf("edge %d normal is not unit length: %v", i, n.Norm())
		}
	}
}
