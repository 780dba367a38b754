// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"

	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/sensor"
)

func buildMaterial(tst *testing.T, maxFreqLA, maxFreqTA float64) *material.Material {
	la := material.Dispersion{A: -2e-7, B: 6000, MaxFreq: maxFreqLA}
	ta := material.Dispersion{A: -4e-7, B: 2000, MaxFreq: maxFreqTA}
	r := material.RelaxCoeffs{Bl: 2e-24, Btn: 9.3e-13, Btu: 5.5e-18, Bi: 1.32e-45, W: 2.4e13}
	m, err := material.New("m", la, ta, r)
	require.NoError(tst, err)
	require.NoError(tst, m.InitializeTables(290, 310, 1, true))
	return m
}

func buildCell(tst *testing.T, id int, p1, p2, p3 geom.Point, mat *material.Material) *Cell {
	tri, err := geom.NewTriangle(p1, p2, p3)
	require.NoError(tst, err)
	ctrl := sensor.NewSteadyState(mat, 300, 1)
	s := sensor.New(id, mat, ctrl, 1)
	return NewCell(id, tri, s, 1.0)
}

func TestTransitionSameMaterialPreservesState(tst *testing.T) {
	chk.PrintTitle("transition between identical materials preserves phonon state")
	mat := buildMaterial(tst, 8e13, 3e13)
	c1 := buildCell(tst, 0, geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1}, mat)
	c2 := buildCell(tst, 1, geom.Point{X: 1, Y: 0}, geom.Point{X: 1, Y: 1}, geom.Point{X: 0, Y: 1}, mat)

	shared, err := geom.NewLine(geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1})
	require.NoError(tst, err)
	require.NoError(tst, c1.Edges[1].AddTransitionSurface(shared, c2))

	ph := Phonon{Cell: c1, Freq: 1e13, Polar: material.LA, Px: 0.4, Py: 0.4, Dx: 0.6, Dy: 0.8, Velocity: 5000}
	rng := rand.New(rand.NewSource(1))
	c1.Edges[1].Transitions[0].HandlePhonon(&ph, rng, 1e-12)

	require.Equal(tst, c2, ph.Cell)
	chk.Float64(tst, "px", 1e-15, ph.Px, 0.4)
	chk.Float64(tst, "py", 1e-15, ph.Py, 0.4)
	chk.Float64(tst, "dx", 1e-15, ph.Dx, 0.6)
	chk.Float64(tst, "dy", 1e-15, ph.Dy, 0.8)
	chk.Float64(tst, "freq", 1e-15, ph.Freq, 1e13)
}

func TestInterfaceFrequencyGating(tst *testing.T) {
	chk.PrintTitle("interface backscatters high-frequency phonons, transmits low-frequency ones")
	matHigh := buildMaterial(tst, 5e12, 5e12)
	matLow := buildMaterial(tst, 3e12, 3e12)

	c1 := buildCell(tst, 0, geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1}, matHigh)
	c2 := buildCell(tst, 1, geom.Point{X: 1, Y: 0}, geom.Point{X: 1, Y: 1}, geom.Point{X: 0, Y: 1}, matLow)
	shared, err := geom.NewLine(geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1})
	require.NoError(tst, err)
	require.NoError(tst, c1.Edges[1].AddTransitionSurface(shared, c2))
	trans := c1.Edges[1].Transitions[0]
	rng := rand.New(rand.NewSource(2))

	// phonon at omega=4e12 exceeds matLow's 3e12 cutoff: must backscatter.
	high := Phonon{Cell: c1, Freq: 4e12, Polar: material.LA, Dx: 1, Dy: 0}
	trans.HandlePhonon(&high, rng, 1e-12)
	require.Equal(tst, c1, high.Cell)

	// phonon at omega=2e12 is below the cutoff: must transmit.
	low := Phonon{Cell: c1, Freq: 2e12, Polar: material.LA, Dx: 1, Dy: 0}
	trans.HandlePhonon(&low, rng, 1e-12)
	require.Equal(tst, c2, low.Cell)
}

func TestCellConflictDetection(tst *testing.T) {
	chk.PrintTitle("cell placement conflict detection")
	mat := buildMaterial(tst, 8e13, 3e13)
	outer := buildCell(tst, 0, geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0}, geom.Point{X: 0, Y: 10}, mat)
	inner := buildCell(tst, 1, geom.Point{X: 1, Y: 1}, geom.Point{X: 2, Y: 1}, geom.Point{X: 1, Y: 2}, mat)
	if !outer.ConflictsWith(inner) {
		tst.Errorf("expected containment conflict between outer and inner cells")
	}
}

func TestCompositeSurfaceRejectsOverlap(tst *testing.T) {
	chk.PrintTitle("composite surface rejects overlapping sub-surfaces")
	mat := buildMaterial(tst, 8e13, 3e13)
	c1 := buildCell(tst, 0, geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1}, mat)
	c2 := buildCell(tst, 1, geom.Point{X: 1, Y: 0}, geom.Point{X: 1, Y: 1}, geom.Point{X: 0, Y: 1}, mat)
	// c1.Edges[1] runs from (1,0) to (0,1); sub-segments below are taken
	// from along that same line.
	transition, err := geom.NewLine(geom.Point{X: 1, Y: 0}, geom.Point{X: 0.5, Y: 0.5})
	require.NoError(tst, err)
	require.NoError(tst, c1.Edges[1].AddTransitionSurface(transition, c2))

	overlapping, err := geom.NewLine(geom.Point{X: 0.7, Y: 0.3}, geom.Point{X: 0.3, Y: 0.7})
	require.NoError(tst, err)
	err = c1.Edges[1].AddEmitSurface(overlapping, mat, 300, 1, 0)
	require.Error(tst, err)
}

func TestPhasorBuilderOverridesDirectionAndVelocity(tst *testing.T) {
	chk.PrintTitle("phasor builder sets direction to inward normal")
	mat := buildMaterial(tst, 8e13, 3e13)
	c := buildCell(tst, 0, geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1}, mat)
	emitLine := c.Edges[0].Main.Line
	require.NoError(tst, c.Edges[0].AddEmitSurface(emitLine, mat, 310, 1e-9, 0))
	surf := c.Edges[0].Emits[0]

	b, err := NewPhasorBuilder(c, surf, 1e-10, 300, 5)
	require.NoError(tst, err)
	rng := rand.New(rand.NewSource(3))
	ph, ok := b.Next(rng)
	require.True(tst, ok)
	chk.Float64(tst, "velocity", 1e-12, ph.Velocity, PhasorVelocity)
	chk.Float64(tst, "dx", 1e-12, ph.Dx, surf.Normal.X)
	chk.Float64(tst, "dy", 1e-12, ph.Dy, surf.Normal.Y)
	require.Equal(tst, material.LA, ph.Polar)
}
