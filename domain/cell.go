// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"github.com/cpmech/gosl/chk"

	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/sensor"
)

// Cell is a triangular mesh element: a Triangle plus one CompositeSurface
// per edge, attributed to a Sensor. The Sensor reference is non-owning —
// sensors live in the Model, cells merely read and write through them.
//
// A Cell's CompositeSurfaces hold direct pointers to neighbour Cells (see
// CompositeSurface.AddTransitionSurface): the garbage collector reclaims
// reference cycles natively, so no index/handle indirection is needed for
// the cell-surface-cell cycle.
type Cell struct {
	ID       int
	Triangle *geom.Triangle
	Sensor   *sensor.Sensor
	Edges    [3]*CompositeSurface
}

// NewCell builds a Cell over tri, attributed to s, with one empty
// CompositeSurface per edge (each inward normal derived from tri's
// orientation) at the given base specularity.
func NewCell(id int, tri *geom.Triangle, s *sensor.Sensor, specularity float64) *Cell {
	c := &Cell{ID: id, Triangle: tri, Sensor: s}
	for i := 0; i < 3; i++ {
		c.Edges[i] = newCompositeSurface(tri.Edges[i], tri.EdgeNormal(i), specularity)
	}
	s.AddArea(tri.Area)
	return c
}

// Material returns the material of the cell's sensor.
func (c *Cell) Material() *material.Material { return c.Sensor.Material }

// ConflictsWith reports whether c and other occupy incompatible space: one
// contains the other, they intersect, or they are duplicates.
func (c *Cell) ConflictsWith(other *Cell) bool {
	if c == other {
		return false
	}
	t1, t2 := c.Triangle, other.Triangle
	if t1.ContainsTriangle(t2) || t2.ContainsTriangle(t1) {
		return true
	}
	if t1.P1.Equals(t2.P1) && t1.P2.Equals(t2.P2) && t1.P3.Equals(t2.P3) {
		return true
	}
	return t1.Intersects(t2)
}

// HandlePhonon dispatches an impact at point to the CompositeSurface of
// edge i.
func (c *Cell) HandlePhonon(edge int, ph *Phonon, point geom.Point, rng RNG, stepTime float64) error {
	if edge < 0 || edge > 2 {
		return chk.Err("cell %d: invalid edge index %d", c.ID, edge)
	}
	return c.Edges[edge].HandlePhonon(ph, point, rng, stepTime)
}

// InitEnergy returns the energy budget used to seed this cell's initial
// phonon population: the cell's area times its material's heat capacity at
// its sensor's initial temperature, scaled by the deviation from tEq. In the
// full (non-deviational) regime tEq is 0 and no scaling is applied.
func (c *Cell) InitEnergy(tEq float64) (float64, error) {
	initTemp := c.Sensor.Controller.InitTemp()
	base, err := c.Sensor.Material.BaseEnergy(initTemp)
	if err != nil {
		return 0, err
	}
	energy := c.Triangle.Area * base
	if tEq != 0 {
		energy *= absDelta(initTemp, tEq)
	}
	return energy, nil
}

// EmitEnergy returns the energy budget emitted into this cell, over each
// EmitSurface's own active duration, summed across edges and scaled by
// each emitter's deviation from tEq (full regime: tEq == 0, no scaling).
func (c *Cell) EmitEnergy(tEq float64) (float64, error) {
	var total float64
	for _, edge := range c.Edges {
		for _, e := range edge.Emits {
			emit, err := e.EmitMaterial().EmitEnergy(e.EmitTemp())
			if err != nil {
				return 0, err
			}
			contribution := e.Line.Length * e.Duration() * emit / 4
			if tEq != 0 {
				contribution *= absDelta(e.EmitTemp(), tEq)
			}
			total += contribution
		}
	}
	return total, nil
}

// SetEmitSurface attempts to place an EmitSurface matching line on one of
// c's edges, emitting at temp for [startTime, startTime+duration) with c's
// own material. It reports false (with a nil error) when line does not lie
// on any of c's edges.
func (c *Cell) SetEmitSurface(line *geom.Line, temp, duration, startTime float64) (bool, error) {
	for _, edge := range c.Edges {
		if edge.Main.Line.ContainsLine(line) {
			if err := edge.AddEmitSurface(line, c.Material(), temp, duration, startTime); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// FindTransitionSurfaces pairs up c's edges with other's edges wherever one
// edge's full line contains the other's, adding a shared TransitionSurface
// on both cells over that overlap. Two cells share at most one transition
// segment per edge pair.
func (c *Cell) FindTransitionSurfaces(other *Cell) error {
	for _, edge := range c.Edges {
		l1 := edge.Main.Line
		for _, otherEdge := range other.Edges {
			l2 := otherEdge.Main.Line
			switch {
			case l1.ContainsLine(l2):
				if err := edge.AddTransitionSurface(l2, other); err != nil {
					return err
				}
				if err := otherEdge.AddTransitionSurface(l2, c); err != nil {
					return err
				}
			case l2.ContainsLine(l1):
				if err := edge.AddTransitionSurface(l1, other); err != nil {
					return err
				}
				if err := otherEdge.AddTransitionSurface(l1, c); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func absDelta(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
