// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package geom implements the 2D geometric primitives (points, line segments
// and triangles) used to represent the planar triangulated domain a phonon
// propagates through.
package geom

import "math"

// machineEpsilon is float64's unit round-off; GEOEPS scales it up to a
// usable tolerance for the near-degenerate configurations that arise when
// comparing points and segments built from user-supplied coordinates.
const machineEpsilon = 2.220446049250313e-16

// GEOEPS is the tolerance used throughout this package for point equality,
// collinearity, containment and intersection tests.
const GEOEPS = machineEpsilon * 1e9

// Point is a location in the plane.
type Point struct {
	X, Y float64
}

// Equals reports whether p and q are the same point within GEOEPS² on the
// squared distance.
func (p Point) Equals(q Point) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx+dy*dy < GEOEPS*GEOEPS
}

// Sub returns p - q as a displacement vector.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Dot returns the dot product of p and q treated as vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the z-component of the 3D cross product of p and q treated
// as vectors in the plane.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}
