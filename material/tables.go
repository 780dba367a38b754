// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// CumulativeTable is one temperature's discretized distribution: Prob is a
// nondecreasing cumulative probability ending at 1.0, LAFraction[i] is the
// probability that a phonon sampled out of bin i is LA (rather than TA), and
// TotalEnergy is the raw (unnormalized) sum this table was built from —
// heat capacity for the base table, emission power for the emit table, or
// total scattering weight for the scatter table.
type CumulativeTable struct {
	Temp        float64
	Prob        []float64
	LAFraction  []float64
	TotalEnergy float64
}

// buildTable combines separately-weighted LA and TA per-bin arrays into one
// CumulativeTable: cumulative sum normalized to end at 1, with the LA share
// of each bin recorded for freqIndex's branch choice.
func buildTable(t float64, laVals, taVals []float64) *CumulativeTable {
	tab := &CumulativeTable{Temp: t, Prob: make([]float64, NumFreqBins), LAFraction: make([]float64, NumFreqBins)}
	var running float64
	var total float64
	for i := 0; i < NumFreqBins; i++ {
		total += laVals[i] + taVals[i]
	}
	for i := 0; i < NumFreqBins; i++ {
		sum := laVals[i] + taVals[i]
		running += sum
		if total > 0 {
			tab.Prob[i] = running / total
		} else {
			tab.Prob[i] = float64(i+1) / NumFreqBins
		}
		if sum > 0 {
			tab.LAFraction[i] = laVals[i] / sum
		} else {
			tab.LAFraction[i] = 0.5
		}
	}
	if NumFreqBins > 0 {
		tab.Prob[NumFreqBins-1] = 1.0
	}
	tab.TotalEnergy = total
	return tab
}

// occupation returns the raw per-bin energy contribution for frequency omega
// with the given density of states, at temperature t. When deviational is
// true the derivative (linearized) form is used instead of the full
// Bose-Einstein occupation.
func occupation(omega, density, deltaOmega, t float64, deviational bool) float64 {
	if density <= 0 || omega <= 0 {
		return 0
	}
	x := hbar * omega / (kB * t)
	if x > 700 { // exp(x) overflow guard; occupation is negligible here
		return 0
	}
	expx := math.Exp(x)
	full := hbar * omega * density * deltaOmega / (expx - 1)
	if !deviational {
		return full
	}
	return full * x * expx / (expx - 1)
}

// InitializeTables populates the base, emit and scatter cumulative tables
// for every temperature in [tLow, tHigh] spaced by tInterval. deviational
// selects the occupation form: true uses the derivative (deviational) form
// appropriate to a t_eq > 0 run, false uses the full Bose-Einstein
// occupation appropriate to a t_eq = 0 run.
func (m *Material) InitializeTables(tLow, tHigh, tInterval float64, deviational bool) error {
	if tInterval <= 0 || tHigh < tLow {
		return chk.Err("material %q: invalid temperature grid [%v,%v] step %v", m.Name, tLow, tHigh, tInterval)
	}
	m.tLow, m.tHigh, m.tInterval = tLow, tHigh, tInterval
	m.base = nil
	m.emit = nil
	m.scatter = nil

	n := int(math.Round((tHigh-tLow)/tInterval)) + 1
	grid := utl.LinSpace(tLow, tHigh, n)
	for _, t := range grid {
		baseLA := make([]float64, NumFreqBins)
		baseTA := make([]float64, NumFreqBins)
		emitLA := make([]float64, NumFreqBins)
		emitTA := make([]float64, NumFreqBins)
		scatLA := make([]float64, NumFreqBins)
		scatTA := make([]float64, NumFreqBins)

		for i := 0; i < NumFreqBins; i++ {
			omega := m.freq[i]
			baseLA[i] = occupation(omega, m.densLA[i], m.freqBinWidth, t, deviational)
			baseTA[i] = occupation(omega, m.densTA[i], m.freqBinWidth, t, deviational)
			emitLA[i] = baseLA[i] * m.velLA[i]
			emitTA[i] = baseTA[i] * m.velTA[i]
			if baseLA[i] > 0 {
				scatLA[i] = baseLA[i] * m.RelaxRatesAt(omega, t, LA).Total()
			}
			if baseTA[i] > 0 {
				scatTA[i] = baseTA[i] * m.RelaxRatesAt(omega, t, TA).Total()
			}
		}

		m.base = append(m.base, buildTable(t, baseLA, baseTA))
		m.emit = append(m.emit, buildTable(t, emitLA, emitTA))
		m.scatter = append(m.scatter, buildTable(t, scatLA, scatTA))
	}
	return nil
}

// tableAt returns the table nearest to T (rounded to the grid) from the
// requested family, failing when tables have not been initialized or T is
// out of the initialized range.
func (m *Material) tableAt(tables []*CumulativeTable, t float64) (*CumulativeTable, error) {
	if len(tables) == 0 {
		return nil, chk.Err("material %q: tables not initialized", m.Name)
	}
	if t < m.tLow-GEOEPSTemp || t > m.tHigh+GEOEPSTemp {
		return nil, chk.Err("material %q: temperature %v outside initialized range [%v,%v]", m.Name, t, m.tLow, m.tHigh)
	}
	idx := int(math.Round((t - m.tLow) / m.tInterval))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(tables) {
		idx = len(tables) - 1
	}
	return tables[idx], nil
}

// GEOEPSTemp is the temperature-bound slack tolerated when looking up a
// table, allowing callers to query exactly at tLow/tHigh despite float
// rounding of the loop above.
const GEOEPSTemp = 1e-6

// BaseTable returns the base (heat-capacity) cumulative table nearest T.
func (m *Material) BaseTable(t float64) (*CumulativeTable, error) { return m.tableAt(m.base, t) }

// EmitTable returns the emit (velocity-weighted) cumulative table nearest T.
func (m *Material) EmitTable(t float64) (*CumulativeTable, error) { return m.tableAt(m.emit, t) }

// ScatterTable returns the scatter (relaxation-weighted) cumulative table
// nearest T.
func (m *Material) ScatterTable(t float64) (*CumulativeTable, error) {
	return m.tableAt(m.scatter, t)
}

// FreqIndex samples a bin index and polarization from tab against uniform
// draws u (bin selection) and uPol (LA/TA choice), by bisecting the
// cumulative probability array.
func FreqIndex(tab *CumulativeTable, u, uPol float64) (idx int, pol Polarization) {
	idx = sort.Search(len(tab.Prob), func(i int) bool { return tab.Prob[i] >= u })
	if idx >= len(tab.Prob) {
		idx = len(tab.Prob) - 1
	}
	if uPol <= tab.LAFraction[idx] {
		return idx, LA
	}
	return idx, TA
}

// TheoreticalEnergy returns the (area-independent) cumulative energy that
// the base table (useScatter=false) or the scatter table (useScatter=true)
// predicts at temperature t, interpolating linearly between the two nearest
// grid points. It is used by the sensor interpreter's numerical inversion
// from accumulated energy back to temperature.
func (m *Material) TheoreticalEnergy(t float64, useScatter bool) (float64, error) {
	tables := m.base
	if useScatter {
		tables = m.scatter
	}
	if len(tables) == 0 {
		return 0, chk.Err("material %q: tables not initialized", m.Name)
	}
	if t <= m.tLow {
		return tables[0].TotalEnergy, nil
	}
	if t >= m.tHigh {
		return tables[len(tables)-1].TotalEnergy, nil
	}
	pos := (t - m.tLow) / m.tInterval
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= len(tables) {
		return tables[len(tables)-1].TotalEnergy, nil
	}
	frac := pos - float64(lo)
	return tables[lo].TotalEnergy*(1-frac) + tables[hi].TotalEnergy*frac, nil
}
