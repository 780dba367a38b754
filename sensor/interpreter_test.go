// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sensor

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

func TestInterpreterDeviationalTemperature(tst *testing.T) {
	chk.PrintTitle("deviational temperature conversion")
	mat := testMaterial(tst)
	ctrl := NewSteadyState(mat, 300, 1)
	s := New(7, mat, ctrl, 1)
	s.AddArea(2)
	require.NoError(tst, s.UpdateHeatParams(0, 1000, 0, 0))

	// pick eff energy so 1000 counts over area 2 come out to a 0.5K rise
	capacity, err := ctrl.HeatCapacity(0)
	require.NoError(tst, err)
	effEnergy := capacity / 1000

	in := &Interpreter{TEq: 300, TMin: 290, TMax: 310}
	got, err := in.Temperature(s, 0, effEnergy)
	require.NoError(tst, err)
	chk.Float64(tst, "deviational temperature", 1e-9, got, 300.5)
}

func TestInterpreterFluxScaling(tst *testing.T) {
	chk.PrintTitle("flux scaling by area and effective energy")
	mat := testMaterial(tst)
	ctrl := NewSteadyState(mat, 300, 1)
	s := New(1, mat, ctrl, 1)
	s.AddArea(2)
	require.NoError(tst, s.UpdateHeatParams(0, 1, 10, -10))

	in := &Interpreter{TEq: 300, TMin: 290, TMax: 310}
	f, err := in.Flux(s, 0, 4)
	require.NoError(tst, err)
	chk.Float64(tst, "x flux", 1e-12, f[0], 10*4/2.0)
	chk.Float64(tst, "y flux", 1e-12, f[1], -10*4/2.0)
}

func TestInterpreterFullSimInversionIsStable(tst *testing.T) {
	chk.PrintTitle("full-simulation inversion stays within bounds")
	mat := testMaterial(tst)
	require.NoError(tst, mat.InitializeTables(290, 310, 1, false))
	ctrl := NewSteadyState(mat, 300, 1)
	s := New(2, mat, ctrl, 1)
	s.AddArea(1)

	totalEnergy, err := mat.TheoreticalEnergy(302, false)
	require.NoError(tst, err)
	const count = int64(1_000_000)
	effEnergy := totalEnergy / float64(count)
	require.NoError(tst, s.UpdateHeatParams(0, count, 0, 0))

	in := &Interpreter{TEq: 0, TMin: 290, TMax: 310}
	got, err := in.Temperature(s, 0, effEnergy)
	require.NoError(tst, err)
	if math.Abs(got-302) > 1 {
		tst.Errorf("inversion should recover near 302K, got %v", got)
	}
}
