// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
)

// surfaceKind tags which of the three capability variants a Surface is.
type surfaceKind int

const (
	boundaryKind surfaceKind = iota
	emitKind
	transitionKind
)

// Surface is a tagged union over the three surface variants: Boundary (the
// bare preamble), EmitSurface (adds a material/
// temperature/time-window emitter) and TransitionSurface (adds a neighbour
// cell reference). The shared preamble (line, inward normal, specularity)
// lives directly on Surface; variant-only fields are grouped below.
type Surface struct {
	Line        *geom.Line
	Normal      geom.Point
	Specularity float64
	kind        surfaceKind

	// emitKind only
	emitMaterial *material.Material
	emitTemp     float64
	duration     float64
	startTime    float64

	// transitionKind only
	neighbor *Cell
}

func newBoundary(line *geom.Line, normal geom.Point, specularity float64) *Surface {
	return &Surface{Line: line, Normal: normal, Specularity: specularity, kind: boundaryKind}
}

// IsEmit reports whether this surface is an EmitSurface.
func (s *Surface) IsEmit() bool { return s.kind == emitKind }

// IsTransition reports whether this surface is a TransitionSurface.
func (s *Surface) IsTransition() bool { return s.kind == transitionKind }

// EmitMaterial, EmitTemp, Duration, StartTime expose an EmitSurface's
// emission parameters; callers must check IsEmit first.
func (s *Surface) EmitMaterial() *material.Material { return s.emitMaterial }
func (s *Surface) EmitTemp() float64                { return s.emitTemp }
func (s *Surface) Duration() float64                { return s.duration }
func (s *Surface) StartTime() float64               { return s.startTime }

// Neighbor exposes a TransitionSurface's neighbour cell; callers must check
// IsTransition first.
func (s *Surface) Neighbor() *Cell { return s.neighbor }

// redirect implements the diffuse-scatter direction draw shared by
// Boundary and TransitionSurface backscatter: a cosine-weighted local
// direction rotated so the surface's inward normal is the new local +x
// axis.
func redirect(ph *Phonon, normal geom.Point, rng RNG) {
	nx, ny := normal.X, normal.Y
	r := rng.Float64()
	ldx := math.Sqrt(r)
	ldy := math.Sqrt(1-r) * math.Cos(2*math.Pi*rng.Float64())
	ph.SetDirection(nx*ldx-ny*ldy, ny*ldx+nx*ldy)
}

// reflect implements specular reflection of ph's direction about normal.
func reflect(ph *Phonon, normal geom.Point) {
	nx, ny := normal.X, normal.Y
	dx, dy := ph.Dx, ph.Dy
	ldx := -dx*nx - dy*ny
	ldy := -dx*ny + dy*nx
	ph.SetDirection(nx*ldx-ny*ldy, ny*ldx+nx*ldy)
}

// handleBoundary reflects (probability Specularity) or diffusely scatters
// (otherwise) ph off s.
func (s *Surface) handleBoundary(ph *Phonon, rng RNG) {
	if s.Specularity == 1 || rng.Float64() < s.Specularity {
		reflect(ph, s.Normal)
	} else {
		redirect(ph, s.Normal, rng)
	}
}

// handleEmit either absorbs ph (inside the emitter's active time window) or
// falls back to boundary behavior.
func (s *Surface) handleEmit(ph *Phonon, rng RNG, stepTime float64) {
	phononTime := float64(ph.LifeStep) * stepTime
	if phononTime < s.startTime || phononTime+stepTime > s.startTime+s.duration {
		s.handleBoundary(ph, rng)
		return
	}
	ph.Cell = nil
}

// handleTransition moves ph into the neighbour cell, or diffusely
// backscatters it when the neighbour's material lacks a state at ph's
// frequency for its polarization. Polarization-aware transmission
// probability between differing materials is left unimplemented; only the
// frequency-cutoff gate is applied (see DESIGN.md).
func (s *Surface) handleTransition(ph *Phonon, rng RNG) {
	from := ph.Cell.Material()
	to := s.neighbor.Material()
	if from == to {
		ph.Cell = s.neighbor
		return
	}
	maxFreq := to.MaxFreqFor(ph.Polar)
	if ph.Freq > maxFreq {
		redirect(ph, s.Normal, rng)
		return
	}
	ph.Cell = s.neighbor
}

// HandlePhonon dispatches to the variant-specific behavior.
func (s *Surface) HandlePhonon(ph *Phonon, rng RNG, stepTime float64) {
	switch s.kind {
	case emitKind:
		s.handleEmit(ph, rng, stepTime)
	case transitionKind:
		s.handleTransition(ph, rng)
	default:
		s.handleBoundary(ph, rng)
	}
}

// CompositeSurface is one triangle edge: a main Boundary surface plus
// insertion-ordered lists of Transition and Emit sub-surfaces.
type CompositeSurface struct {
	Main        *Surface
	Transitions []*Surface
	Emits       []*Surface
}

func newCompositeSurface(line *geom.Line, normal geom.Point, specularity float64) *CompositeSurface {
	return &CompositeSurface{Main: newBoundary(line, normal, specularity)}
}

// verifyContained checks the incoming line lies within the main line.
func (cs *CompositeSurface) verifyContained(line *geom.Line) error {
	if !cs.Main.Line.ContainsLine(line) {
		return chk.Err("surface configuration: line %v is not on this edge", line)
	}
	return nil
}

// verifyNoOverlap scans both sub-surface lists for an overlap with line.
func (cs *CompositeSurface) verifyNoOverlap(line *geom.Line) error {
	for _, t := range cs.Transitions {
		if t.Line.Overlaps(line) {
			return chk.Err("surface configuration: line %v overlaps an existing transition sub-surface", line)
		}
	}
	for _, e := range cs.Emits {
		if e.Line.Overlaps(line) {
			return chk.Err("surface configuration: line %v overlaps an existing emit sub-surface", line)
		}
	}
	return nil
}

// AddEmitSurface appends a new EmitSurface sub-segment, inheriting the
// composite's inward normal and specularity.
func (cs *CompositeSurface) AddEmitSurface(line *geom.Line, mat *material.Material, temp, duration, startTime float64) error {
	if err := cs.verifyContained(line); err != nil {
		return err
	}
	if err := cs.verifyNoOverlap(line); err != nil {
		return err
	}
	cs.Emits = append(cs.Emits, &Surface{
		Line: line, Normal: cs.Main.Normal, Specularity: cs.Main.Specularity, kind: emitKind,
		emitMaterial: mat, emitTemp: temp, duration: duration, startTime: startTime,
	})
	return nil
}

// AddTransitionSurface appends a new TransitionSurface sub-segment joining
// this edge to neighbor.
func (cs *CompositeSurface) AddTransitionSurface(line *geom.Line, neighbor *Cell) error {
	if err := cs.verifyContained(line); err != nil {
		return err
	}
	if err := cs.verifyNoOverlap(line); err != nil {
		return err
	}
	cs.Transitions = append(cs.Transitions, &Surface{
		Line: line, Normal: cs.Main.Normal, Specularity: cs.Main.Specularity, kind: transitionKind,
		neighbor: neighbor,
	})
	return nil
}

// HandlePhonon dispatches an impact at point: the first TransitionSurface
// containing point, else the first EmitSurface containing it, else the
// main Boundary. This ordering reflects the physical likelihood that an
// impact lands on an interface before a thin emitter before the bare edge.
func (cs *CompositeSurface) HandlePhonon(ph *Phonon, point geom.Point, rng RNG, stepTime float64) error {
	for _, t := range cs.Transitions {
		if t.Line.Contains(point) {
			t.HandlePhonon(ph, rng, stepTime)
			return nil
		}
	}
	for _, e := range cs.Emits {
		if e.Line.Contains(point) {
			e.HandlePhonon(ph, rng, stepTime)
			return nil
		}
	}
	cs.Main.HandlePhonon(ph, rng, stepTime)
	return nil
}
