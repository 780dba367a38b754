// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"github.com/cpmech/gosl/chk"

	"github.com/GwGibson/Psim/material"
)

// BuilderMaxPhonons caps how many phonons a single builder instance is
// packed to produce, so work-stealing sees balanced chunks.
const BuilderMaxPhonons = 100_000

// PhasorVelocity is the fixed, large group velocity PhasorBuilder overrides
// onto every phonon it produces, modelling a coherent monodirectional beam.
const PhasorVelocity = 1000.0

// PhononBuilder produces Phonons on demand until exhausted.
type PhononBuilder interface {
	// Next produces the next phonon, or reports false when exhausted.
	Next(rng RNG) (Phonon, bool)
	// Remaining reports how many phonons this builder has left to produce.
	Remaining() int
}

// CellQuota pairs a cell with how many phonons should originate inside it.
type CellQuota struct {
	Cell  *Cell
	Count int
}

// CellOriginBuilder produces phonons uniformly distributed within a set of
// cells, at each cell's initial temperature. It carries a LIFO stack of
// (cell, remaining) entries, popping an entry once it is exhausted.
type CellOriginBuilder struct {
	tEq   float64
	stack []CellQuota
	total int
}

// NewCellOriginBuilder builds a CellOriginBuilder over quotas. It applies no
// cap of its own: the builder produces the sum of all positive quotas, and
// callers split a larger request across multiple builder instances.
func NewCellOriginBuilder(tEq float64, quotas []CellQuota) *CellOriginBuilder {
	b := &CellOriginBuilder{tEq: tEq}
	for _, q := range quotas {
		if q.Count <= 0 {
			continue
		}
		b.stack = append(b.stack, q)
		b.total += q.Count
	}
	return b
}

func (b *CellOriginBuilder) Remaining() int { return b.total }

// Next implements PhononBuilder.
func (b *CellOriginBuilder) Next(rng RNG) (Phonon, bool) {
	for len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		if top.Count <= 0 {
			b.stack = b.stack[:len(b.stack)-1]
			continue
		}
		cell := top.Cell
		top.Count--
		b.total--
		if top.Count == 0 {
			b.stack = b.stack[:len(b.stack)-1]
		}

		sign := int8(-1)
		if cell.Sensor.Controller.InitTemp() > b.tEq {
			sign = 1
		}
		ph := Phonon{Sign: sign, Cell: cell}
		tab, err := cell.Sensor.Material.BaseTable(cell.Sensor.Controller.InitTemp())
		if err != nil {
			continue // initialization invariant: tables must already cover this temperature
		}
		idx, pol := material.FreqIndex(tab, rng.Float64(), rng.Float64())
		ph.FreqIndex = idx
		ph.Freq = cell.Sensor.Material.FreqAt(idx)
		ph.Velocity = cell.Sensor.Material.VelocityAt(idx, pol)
		ph.Polar = pol
		pos := cell.Triangle.GetRandPoint(rng.Float64(), rng.Float64())
		ph.Px, ph.Py = pos.X, pos.Y
		ph.SetRandDirection(rng)
		return ph, true
	}
	return Phonon{}, false
}

// SurfaceOriginBuilder produces phonons emitted from one EmitSurface,
// biased to travel into the surface's owning cell.
type SurfaceOriginBuilder struct {
	cell      *Cell
	surface   *Surface
	stepTime  float64
	tEq       float64
	remaining int
}

// NewSurfaceOriginBuilder builds a SurfaceOriginBuilder bound to surface
// (which must be an EmitSurface) emitting into cell.
func NewSurfaceOriginBuilder(cell *Cell, surface *Surface, stepTime, tEq float64, numPhonons int) (*SurfaceOriginBuilder, error) {
	if !surface.IsEmit() {
		return nil, chk.Err("surface origin builder requires an emit surface")
	}
	return &SurfaceOriginBuilder{cell: cell, surface: surface, stepTime: stepTime, tEq: tEq, remaining: numPhonons}, nil
}

func (b *SurfaceOriginBuilder) Remaining() int { return b.remaining }

func (b *SurfaceOriginBuilder) birth(rng RNG) (Phonon, error) {
	sign := int8(-1)
	if b.surface.EmitTemp() > b.tEq {
		sign = 1
	}
	lifetime := b.surface.StartTime() + b.surface.Duration()*rng.Float64()
	ph := Phonon{Sign: sign, Cell: b.cell, Lifetime: lifetime}
	if b.stepTime > 0 {
		ph.LifeStep = int(lifetime / b.stepTime)
	}
	tab, err := b.surface.EmitMaterial().EmitTable(b.surface.EmitTemp())
	if err != nil {
		return Phonon{}, err
	}
	idx, pol := material.FreqIndex(tab, rng.Float64(), rng.Float64())
	ph.FreqIndex = idx
	ph.Freq = b.surface.EmitMaterial().FreqAt(idx)
	ph.Velocity = b.surface.EmitMaterial().VelocityAt(idx, pol)
	ph.Polar = pol
	pos := b.surface.Line.GetRandPoint(rng.Float64())
	ph.Px, ph.Py = pos.X, pos.Y
	return ph, nil
}

// Next implements PhononBuilder.
func (b *SurfaceOriginBuilder) Next(rng RNG) (Phonon, bool) {
	if b.remaining <= 0 {
		return Phonon{}, false
	}
	b.remaining--
	ph, err := b.birth(rng)
	if err != nil {
		return Phonon{}, false
	}
	redirect(&ph, b.surface.Normal, rng)
	return ph, true
}

// PhasorBuilder behaves like SurfaceOriginBuilder, but overrides velocity
// to PhasorVelocity and direction to the surface's inward normal, modelling
// a coherent, non-scattering monodirectional beam.
type PhasorBuilder struct {
	SurfaceOriginBuilder
}

// NewPhasorBuilder builds a PhasorBuilder bound to surface.
func NewPhasorBuilder(cell *Cell, surface *Surface, stepTime, tEq float64, numPhonons int) (*PhasorBuilder, error) {
	base, err := NewSurfaceOriginBuilder(cell, surface, stepTime, tEq, numPhonons)
	if err != nil {
		return nil, err
	}
	return &PhasorBuilder{SurfaceOriginBuilder: *base}, nil
}

// Next implements PhononBuilder.
func (b *PhasorBuilder) Next(rng RNG) (Phonon, bool) {
	if b.remaining <= 0 {
		return Phonon{}, false
	}
	b.remaining--
	ph, err := b.birth(rng)
	if err != nil {
		return Phonon{}, false
	}
	ph.FreqIndex = 1
	ph.Freq = b.surface.EmitMaterial().FreqAt(1)
	ph.Velocity = PhasorVelocity
	ph.Polar = material.LA
	ph.SetDirection(b.surface.Normal.X, b.surface.Normal.Y)
	return ph, true
}
