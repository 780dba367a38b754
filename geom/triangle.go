// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Orientation describes the winding of a triangle's vertices.
type Orientation int

const (
	Clockwise Orientation = iota
	CounterClockwise
)

// Triangle is a planar triangle with three non-collinear, distinct vertices.
// Its three edges are cached as Lines so that neighbour-detection and normal
// computation do not repeatedly rebuild them.
type Triangle struct {
	P1, P2, P3  Point
	Edges       [3]*Line // L1: P1-P2, L2: P2-P3, L3: P3-P1
	Orientation Orientation
	Area        float64
}

// NewTriangle builds a Triangle, failing with an invalid-geometry error when
// any two vertices coincide or all three are collinear.
func NewTriangle(p1, p2, p3 Point) (*Triangle, error) {
	if p1.Equals(p2) || p2.Equals(p3) || p1.Equals(p3) {
		return nil, chk.Err("invalid geometry: triangle has duplicate vertices: %v %v %v", p1, p2, p3)
	}
	l1, err := NewLine(p1, p2)
	if err != nil {
		return nil, chk.Err("invalid geometry: %v", err)
	}
	l2, err := NewLine(p2, p3)
	if err != nil {
		return nil, chk.Err("invalid geometry: %v", err)
	}
	l3, err := NewLine(p3, p1)
	if err != nil {
		return nil, chk.Err("invalid geometry: %v", err)
	}
	if collinear(l1, l2, l3) {
		return nil, chk.Err("invalid geometry: triangle vertices are collinear: %v %v %v", p1, p2, p3)
	}
	t := &Triangle{P1: p1, P2: p2, P3: p3, Edges: [3]*Line{l1, l2, l3}}
	cross := p2.Sub(p1).Cross(p3.Sub(p1))
	t.Area = math.Abs(cross) / 2
	if cross < 0 {
		t.Orientation = Clockwise
	} else {
		t.Orientation = CounterClockwise
	}
	return t, nil
}

// collinear detects three equal-magnitude slopes, flagging a degenerate
// (collinear) triangle.
func collinear(l1, l2, l3 *Line) bool {
	s1, s2, s3 := slopeMagnitude(l1), slopeMagnitude(l2), slopeMagnitude(l3)
	return math.Abs(s1-s2) < GEOEPS && math.Abs(s2-s3) < GEOEPS
}

func slopeMagnitude(l *Line) float64 {
	if l.Vertical {
		return math.MaxFloat64
	}
	return math.Abs(l.Slope)
}

// normalSign returns the sign used by Line.Normal so the resulting normal
// points into this triangle.
func (t *Triangle) normalSign() float64 {
	if t.Orientation == Clockwise {
		return 1
	}
	return -1
}

// EdgeNormal returns the inward unit normal of the i-th edge (0,1,2).
func (t *Triangle) EdgeNormal(i int) Point {
	return t.Edges[i].Normal(t.normalSign())
}

// Contains reports whether point q lies strictly inside the triangle, using
// a barycentric test cross-checked against the sum-of-sub-areas identity.
// Points on an edge are rejected.
func (t *Triangle) Contains(q Point) bool {
	for _, e := range t.Edges {
		if e.Contains(q) {
			return false
		}
	}
	v0 := t.P3.Sub(t.P1)
	v1 := t.P2.Sub(t.P1)
	v2 := q.Sub(t.P1)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < GEOEPS {
		return false
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom
	if u < -GEOEPS || v < -GEOEPS || u+v > 1+GEOEPS {
		return false
	}

	subArea := triArea(t.P1, t.P2, q) + triArea(t.P2, t.P3, q) + triArea(t.P3, t.P1, q)
	return math.Abs(subArea-t.Area) < GEOEPS
}

func triArea(a, b, c Point) float64 {
	return math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
}

// ContainsTriangle reports whether any vertex of other lies strictly inside
// t. This vertex-only test is known to miss pierce-through configurations
// where neither triangle has a vertex inside the other; see DESIGN.md.
func (t *Triangle) ContainsTriangle(other *Triangle) bool {
	return t.Contains(other.P1) || t.Contains(other.P2) || t.Contains(other.P3)
}

// Intersects reports whether any non-endpoint edge-edge intersection exists
// between t and other.
func (t *Triangle) Intersects(other *Triangle) bool {
	for _, e1 := range t.Edges {
		for _, e2 := range other.Edges {
			if p, ok := e1.GetIntersection(e2); ok {
				if !isSharedVertex(p, t) || !isSharedVertex(p, other) {
					return true
				}
			}
		}
	}
	return false
}

func isSharedVertex(p Point, t *Triangle) bool {
	return p.Equals(t.P1) || p.Equals(t.P2) || p.Equals(t.P3)
}

// GetRandPoint samples a uniform point inside t from two uniforms in [0,1],
// reflecting the pair back into the triangle when r1+r2 > 1.
func (t *Triangle) GetRandPoint(r1, r2 float64) Point {
	if r1+r2 > 1 {
		r1, r2 = 1-r1, 1-r2
	}
	v1 := t.P2.Sub(t.P1)
	v2 := t.P3.Sub(t.P1)
	return t.P1.Add(v1.Scale(r1)).Add(v2.Scale(r2))
}
