// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sensor

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"

	"github.com/GwGibson/Psim/material"
)

func testMaterial(tst *testing.T) *material.Material {
	la := material.Dispersion{A: -2e-7, B: 6000, MaxFreq: 8e13}
	ta := material.Dispersion{A: -4e-7, B: 2000, MaxFreq: 3e13}
	r := material.RelaxCoeffs{Bl: 2e-24, Btn: 9.3e-13, Btu: 5.5e-18, Bi: 1.32e-45, W: 2.4e13}
	m, err := material.New("test", la, ta, r)
	require.NoError(tst, err)
	require.NoError(tst, m.InitializeTables(290, 310, 1, true))
	return m
}

func TestUpdateHeatParamsCommutative(tst *testing.T) {
	chk.PrintTitle("sensor updateHeatParams is commutative")
	mat := testMaterial(tst)
	ctrl := NewSteadyState(mat, 300, 4)
	s := New(0, mat, ctrl, 4)
	s.AddArea(1)

	contribs := []struct {
		sign   int64
		vx, vy float64
	}{
		{1, 0.1, -0.2}, {-1, 0.3, 0.4}, {1, -0.5, 0.1}, {1, 0.2, 0.2}, {-1, 0.1, -0.1},
	}

	order1 := make([]int, len(contribs))
	order2 := make([]int, len(contribs))
	for i := range contribs {
		order1[i] = i
		order2[i] = len(contribs) - 1 - i
	}

	run := func(order []int) ([]int64, [][2]float64) {
		s2 := New(0, mat, ctrl, 4)
		for _, i := range order {
			c := contribs[i]
			require.NoError(tst, s2.UpdateHeatParams(2, c.sign, c.vx, c.vy))
		}
		return s2.Energy(), s2.Flux()
	}

	e1, f1 := run(order1)
	e2, f2 := run(order2)
	require.Equal(tst, e1, e2)
	// flux sums are floats, so a different addition order may differ in
	// the last bit; compare them to within rounding.
	require.Equal(tst, len(f1), len(f2))
	for i := range f1 {
		require.InDelta(tst, f1[i][0], f2[i][0], 1e-12)
		require.InDelta(tst, f1[i][1], f2[i][1], 1e-12)
	}
}

func TestUpdateHeatParamsConcurrentSafe(tst *testing.T) {
	chk.PrintTitle("sensor updateHeatParams concurrent aggregation")
	mat := testMaterial(tst)
	ctrl := NewSteadyState(mat, 300, 1)
	s := New(0, mat, ctrl, 1)

	var wg sync.WaitGroup
	const n = 2000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(sign int64) {
			defer wg.Done()
			_ = s.UpdateHeatParams(0, sign, 1, 1)
		}(int64(1))
	}
	wg.Wait()
	require.Equal(tst, int64(n), s.Energy()[0])
}

func TestTransientResetRequiresAllSteps(tst *testing.T) {
	chk.PrintTitle("transient controller reset compares every step")
	mat := testMaterial(tst)
	ctrl := NewTransient(mat, 300, 3)
	same := []float64{300, 300, 300}
	if ctrl.ResetRequired(same, 0.01) {
		tst.Errorf("identical per-step temps should not require reset")
	}
	changed := []float64{300, 300, 305}
	if !ctrl.ResetRequired(changed, 0.01) {
		tst.Errorf("a single changed step should require reset")
	}
}

func TestSteadyStateInitialUpdatePullsForward(tst *testing.T) {
	chk.PrintTitle("steady-state controller pulls init temp forward")
	mat := testMaterial(tst)
	ctrl := NewSteadyState(mat, 300, 2)
	ctrl.Reset([]float64{301, 305})
	ctrl.InitialUpdate()
	chk.Float64(tst, "effective init temp", 1e-12, ctrl.InitTemp(), 305)
}

func TestPeriodicInitTempNeverMoves(tst *testing.T) {
	chk.PrintTitle("periodic controller keeps the user init temp")
	mat := testMaterial(tst)
	ctrl := NewPeriodic(mat, 300, 2)
	ctrl.Reset([]float64{301, 305})
	ctrl.InitialUpdate()
	chk.Float64(tst, "init temp", 1e-12, ctrl.InitTemp(), 300)
}
