// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Line is a finite segment between two distinct points. Slope and intercept
// are cached at construction; a vertical line is recorded with slope 0 by
// convention (callers must use Vertical to disambiguate).
type Line struct {
	P1, P2             Point
	Slope, Intercept   float64
	Vertical           bool
	Length             float64
	Xmin, Xmax         float64
	Ymin, Ymax         float64
}

// NewLine builds a Line from two points. It fails with an invalid-geometry
// error when the points coincide within GEOEPS.
func NewLine(p1, p2 Point) (*Line, error) {
	if p1.Equals(p2) {
		return nil, chk.Err("invalid geometry: line endpoints coincide: %v == %v", p1, p2)
	}
	l := &Line{P1: p1, P2: p2}
	l.Length = p1.Sub(p2).Norm()
	l.Xmin, l.Xmax = math.Min(p1.X, p2.X), math.Max(p1.X, p2.X)
	l.Ymin, l.Ymax = math.Min(p1.Y, p2.Y), math.Max(p1.Y, p2.Y)
	if math.Abs(p2.X-p1.X) < GEOEPS {
		l.Vertical = true
		l.Slope = 0
		l.Intercept = p1.X // re-used to store the vertical line's x value
		return l, nil
	}
	l.Slope = (p2.Y - p1.Y) / (p2.X - p1.X)
	l.Intercept = p1.Y - l.Slope*p1.X
	return l, nil
}

// direction returns the (non-unit) vector from P1 to P2.
func (l *Line) direction() Point {
	return l.P2.Sub(l.P1)
}

// Contains reports whether point q lies on the finite segment within GEOEPS.
func (l *Line) Contains(q Point) bool {
	d := l.direction()
	v := q.Sub(l.P1)
	cross := d.Cross(v)
	if math.Abs(cross) >= GEOEPS*l.Length {
		return false
	}
	return q.X >= l.Xmin-GEOEPS && q.X <= l.Xmax+GEOEPS &&
		q.Y >= l.Ymin-GEOEPS && q.Y <= l.Ymax+GEOEPS
}

// ContainsLine reports whether other lies entirely within l: both endpoints
// of other lie on l's infinite line, l is at least as long, and other's
// bounding box sits inside l's (inflated by GEOEPS).
func (l *Line) ContainsLine(other *Line) bool {
	if !l.onInfiniteLine(other.P1) || !l.onInfiniteLine(other.P2) {
		return false
	}
	if l.Length+GEOEPS < other.Length {
		return false
	}
	return other.Xmin >= l.Xmin-GEOEPS && other.Xmax <= l.Xmax+GEOEPS &&
		other.Ymin >= l.Ymin-GEOEPS && other.Ymax <= l.Ymax+GEOEPS
}

// onInfiniteLine reports whether q lies on the infinite extension of l.
func (l *Line) onInfiniteLine(q Point) bool {
	d := l.direction()
	v := q.Sub(l.P1)
	return math.Abs(d.Cross(v)) < GEOEPS*l.Length
}

// parallel reports whether l and other have the same direction (or opposite).
func (l *Line) parallel(other *Line) bool {
	d1, d2 := l.direction(), other.direction()
	return math.Abs(d1.Cross(d2)) < GEOEPS*l.Length*other.Length
}

// Overlaps reports whether l and other are parallel and share more than a
// single point (end-to-end touch is not overlap).
func (l *Line) Overlaps(other *Line) bool {
	if !l.parallel(other) {
		return false
	}
	if !l.onInfiniteLine(other.P1) {
		return false
	}
	// project other's endpoints onto l's parametrization t in [0,1]
	t1 := l.param(other.P1)
	t2 := l.param(other.P2)
	lo, hi := t1, t2
	if lo > hi {
		lo, hi = hi, lo
	}
	return hi > GEOEPS/l.Length && lo < 1-GEOEPS/l.Length && hi-lo > GEOEPS/l.Length
}

// param returns t such that P1 + t*(P2-P1) is the projection of q onto l's
// line (only meaningful for points already known to lie on that line).
func (l *Line) param(q Point) float64 {
	d := l.direction()
	v := q.Sub(l.P1)
	denom := d.Dot(d)
	if denom < GEOEPS {
		return 0
	}
	return d.Dot(v) / denom
}

// boundingBoxesOverlap reports whether l and other's axis-aligned bounding
// boxes overlap by more than GEOEPS.
func (l *Line) boundingBoxesOverlap(other *Line) bool {
	return l.Xmin < other.Xmax-GEOEPS && other.Xmin < l.Xmax-GEOEPS &&
		l.Ymin < other.Ymax-GEOEPS && other.Ymin < l.Ymax-GEOEPS
}

// crossesInfiniteLine reports whether segment l crosses the infinite line
// through other (an endpoint exactly on the line counts as crossing).
func (l *Line) crossesInfiniteLine(other *Line) bool {
	d := other.direction()
	c1 := d.Cross(l.P1.Sub(other.P1))
	c2 := d.Cross(l.P2.Sub(other.P1))
	if math.Abs(c1) < GEOEPS || math.Abs(c2) < GEOEPS {
		return true
	}
	return (c1 > 0) != (c2 > 0)
}

// Intersects reports whether l and other's finite segments cross.
func (l *Line) Intersects(other *Line) bool {
	if !l.boundingBoxesOverlap(other) {
		return false
	}
	return l.crossesInfiniteLine(other) && other.crossesInfiniteLine(l)
}

// GetIntersection returns the intersection point of l and other when the
// segments genuinely cross. It returns (Point{}, false) for parallel or
// overlapping lines, or when the segments do not intersect.
func (l *Line) GetIntersection(other *Line) (Point, bool) {
	if l.parallel(other) {
		return Point{}, false
	}
	if !l.Intersects(other) {
		return Point{}, false
	}
	switch {
	case l.Vertical:
		x := l.Intercept
		y := other.Slope*x + other.Intercept
		return Point{x, y}, true
	case other.Vertical:
		x := other.Intercept
		y := l.Slope*x + l.Intercept
		return Point{x, y}, true
	default:
		x := (other.Intercept - l.Intercept) / (l.Slope - other.Slope)
		y := l.Slope*x + l.Intercept
		return Point{x, y}, true
	}
}

// Normal returns the unit normal to l, oriented by sign (+1 for clockwise
// triangles, -1 otherwise) so that it points into the owning polygon.
func (l *Line) Normal(sign float64) Point {
	dx, dy := l.P2.X-l.P1.X, l.P2.Y-l.P1.Y
	return Point{
		X: sign * dy / l.Length,
		Y: -sign * dx / l.Length,
	}
}

// GetRandPoint returns the convex combination r*P1 + (1-r)*P2, r in [0,1].
func (l *Line) GetRandPoint(r float64) Point {
	return l.P1.Scale(r).Add(l.P2.Scale(1 - r))
}
