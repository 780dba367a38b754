// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

func siliconLike() (*Material, error) {
	la := Dispersion{A: -2e-7, B: 6000, C: 0, MaxFreq: 8e13}
	ta := Dispersion{A: -4e-7, B: 2000, C: 0, MaxFreq: 3e13}
	r := RelaxCoeffs{Bl: 2e-24, Btn: 9.3e-13, Btu: 5.5e-18, Bi: 1.32e-45, W: 2.4e13}
	return New("silicon-like", la, ta, r)
}

func TestCumulativeTableEndsAtOne(tst *testing.T) {
	chk.PrintTitle("cumulative tables end at 1.0 and are nondecreasing")
	m, err := siliconLike()
	require.NoError(tst, err)
	require.NoError(tst, m.InitializeTables(200, 400, 50, true))

	for _, t := range []float64{200, 250, 300, 350, 400} {
		for _, get := range []func(float64) (*CumulativeTable, error){m.BaseTable, m.EmitTable, m.ScatterTable} {
			tab, err := get(t)
			require.NoError(tst, err)
			chk.Float64(tst, "last cumulative prob", 1e-12, tab.Prob[len(tab.Prob)-1], 1.0)
			for i := 1; i < len(tab.Prob); i++ {
				if tab.Prob[i] < tab.Prob[i-1]-1e-15 {
					tst.Errorf("cumulative table not nondecreasing at bin %d (T=%v)", i, t)
				}
			}
		}
	}
}

func TestRelaxRatesNonNegative(tst *testing.T) {
	chk.PrintTitle("relaxation rates are non-negative")
	m, err := siliconLike()
	require.NoError(tst, err)
	for _, omega := range []float64{1e12, 1e13, 5e13} {
		for _, pol := range []Polarization{LA, TA} {
			r := m.RelaxRatesAt(omega, 300, pol)
			if r.Total() < 0 {
				tst.Errorf("negative total relaxation rate for omega=%v pol=%v: %v", omega, pol, r.Total())
			}
			if r.NormalLA < 0 || r.NormalTA < 0 || r.UmklappLA < 0 || r.UmklappTA < 0 || r.Impurity < 0 {
				tst.Errorf("negative relaxation channel for omega=%v pol=%v: %+v", omega, pol, r)
			}
		}
	}
}

func TestTheoreticalEnergyInversionIdempotent(tst *testing.T) {
	chk.PrintTitle("theoretical energy inversion recovers temperature")
	m, err := siliconLike()
	require.NoError(tst, err)
	require.NoError(tst, m.InitializeTables(200, 400, 1, false))

	target := 317.5
	energy, err := m.TheoreticalEnergy(target, false)
	require.NoError(tst, err)

	lo, hi := 200.0, 400.0
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		e, err := m.TheoreticalEnergy(mid, false)
		require.NoError(tst, err)
		if e < energy {
			lo = mid
		} else {
			hi = mid
		}
	}
	got := (lo + hi) / 2
	if math.Abs(got-target) > 1e-2 {
		tst.Errorf("inversion did not recover temperature: got %v want %v", got, target)
	}
}

func TestFreqIndexStaysInRange(tst *testing.T) {
	chk.PrintTitle("freqIndex bisection stays in range")
	m, err := siliconLike()
	require.NoError(tst, err)
	require.NoError(tst, m.InitializeTables(300, 300, 1, true))
	tab, err := m.BaseTable(300)
	require.NoError(tst, err)
	for _, u := range []float64{0, 0.001, 0.5, 0.999, 1.0} {
		idx, pol := FreqIndex(tab, u, 0.5)
		if idx < 0 || idx >= NumFreqBins {
			tst.Errorf("freqIndex out of range: %d", idx)
		}
		if pol != LA && pol != TA {
			tst.Errorf("freqIndex returned invalid polarization: %v", pol)
		}
	}
}
