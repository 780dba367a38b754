// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package material implements the phonon dispersion/relaxation model and the
// per-temperature cumulative distribution tables sampled by the simulator.
package material

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// NumFreqBins is the number of discretized frequency bins each branch's
// dispersion, density-of-states and cumulative tables are built over.
const NumFreqBins = 1000

// Polarization identifies a phonon branch.
type Polarization int

const (
	LA Polarization = iota
	TA
)

func (p Polarization) String() string {
	if p == LA {
		return "LA"
	}
	return "TA"
}

// Dispersion holds the quadratic dispersion coefficients omega(k) = a*k^2 +
// b*k + c for one branch, plus that branch's maximum frequency.
type Dispersion struct {
	A, B, C float64
	MaxFreq float64
}

// velocityAt returns the group velocity v = domega/dk = 2*a*k + b evaluated
// at the wavevector that produces frequency omega, and the NaN-safety flag:
// ok is false when the quadratic has no physical root (degenerate branch
// past cutoff), in which case the bin must be zeroed.
func (d Dispersion) velocityAt(omega float64) (v float64, k float64, ok bool) {
	if math.Abs(d.A) < 1e-300 {
		if math.Abs(d.B) < 1e-300 {
			return 0, 0, false
		}
		k = (omega - d.C) / d.B
		return d.B, k, k >= 0
	}
	disc := d.B*d.B - 4*d.A*(d.C-omega)
	if disc < 0 {
		return 0, 0, false
	}
	k = (-d.B + math.Sqrt(disc)) / (2 * d.A)
	if k < 0 {
		return 0, 0, false
	}
	v = 2*d.A*k + d.B
	return v, k, true
}

// RelaxCoeffs holds the four relaxation-rate coefficients and the Umklapp
// cutoff frequency shared by both branches.
type RelaxCoeffs struct {
	Bl, Btn, Btu, Bi, W float64
}

// Material is a phonon dispersion + relaxation model, identified by name,
// with per-temperature cumulative distribution tables populated by
// InitializeTables.
type Material struct {
	Name string
	LA   Dispersion
	TA   Dispersion
	R    RelaxCoeffs

	// per-bin arrays, shared frequency grid across both branches
	freqBinWidth float64
	freq         []float64 // bin centers
	velLA        []float64
	velTA        []float64
	densLA       []float64 // k^2/(2*pi^2*v)
	densTA       []float64 // k^2/(pi^2*v), TA degeneracy folded in

	// temperature grid populated by InitializeTables
	tLow, tHigh, tInterval float64
	base                   []*CumulativeTable
	emit                   []*CumulativeTable
	scatter                []*CumulativeTable
}

// New builds a Material from its dispersion/relaxation parameters and
// precomputes the per-bin frequency/velocity/density-of-states arrays. It
// does not yet populate the temperature-dependent tables; call
// InitializeTables for that.
func New(name string, la, ta Dispersion, r RelaxCoeffs) (*Material, error) {
	if la.MaxFreq <= 0 || ta.MaxFreq <= 0 {
		return nil, chk.Err("material %q: branch maximum frequencies must be positive", name)
	}
	maxFreq := math.Max(la.MaxFreq, ta.MaxFreq)
	m := &Material{Name: name, LA: la, TA: ta, R: r}
	m.freqBinWidth = maxFreq / NumFreqBins
	m.freq = make([]float64, NumFreqBins)

	// vel holds {LA, TA} group velocity rows, dens the matching
	// density-of-states rows, both allocated as one contiguous matrix.
	vel := alloc2D(2)
	dens := alloc2D(2)
	m.velLA, m.velTA = vel[0], vel[1]
	m.densLA, m.densTA = dens[0], dens[1]

	for i := 0; i < NumFreqBins; i++ {
		omega := (float64(2*i+1) * m.freqBinWidth) / 2
		m.freq[i] = omega

		if omega <= la.MaxFreq {
			if v, k, ok := la.velocityAt(omega); ok && v > 0 {
				m.velLA[i] = v
				m.densLA[i] = (k * k) / (2 * math.Pi * math.Pi * v)
			}
		}
		if omega <= ta.MaxFreq {
			if v, k, ok := ta.velocityAt(omega); ok && v > 0 {
				m.velTA[i] = v
				// factor of two folds the TA degeneracy (two transverse
				// branches) into a single effective TA density of states.
				m.densTA[i] = (k * k) / (math.Pi * math.Pi * v)
			}
		}
	}
	return m, nil
}

// FreqBinWidth returns the shared frequency bin width (delta-omega).
func (m *Material) FreqBinWidth() float64 { return m.freqBinWidth }

// FreqAt returns the bin-center frequency of bin i.
func (m *Material) FreqAt(i int) float64 { return m.freq[i] }

// VelocityAt returns the group velocity of bin i for the given polarization.
func (m *Material) VelocityAt(i int, pol Polarization) float64 {
	if pol == LA {
		return m.velLA[i]
	}
	return m.velTA[i]
}

// MaxFreqFor returns the branch maximum frequency for pol.
func (m *Material) MaxFreqFor(pol Polarization) float64 {
	if pol == LA {
		return m.LA.MaxFreq
	}
	return m.TA.MaxFreq
}

// alloc2D allocates an n x NumFreqBins matrix via gosl/utl.
func alloc2D(n int) [][]float64 {
	return utl.Alloc(n, NumFreqBins)
}

// BaseEnergy returns the base table's total energy (heat capacity) at t.
func (m *Material) BaseEnergy(t float64) (float64, error) {
	tab, err := m.BaseTable(t)
	if err != nil {
		return 0, err
	}
	return tab.TotalEnergy, nil
}

// EmitEnergy returns the emit table's total energy (emitted power weight) at t.
func (m *Material) EmitEnergy(t float64) (float64, error) {
	tab, err := m.EmitTable(t)
	if err != nil {
		return 0, err
	}
	return tab.TotalEnergy, nil
}
