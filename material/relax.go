// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import "math"

// Physical constants (SI units).
const (
	hbar = 1.054571817e-34 // reduced Planck constant, J*s
	kB   = 1.380649e-23    // Boltzmann constant, J/K
)

// RelaxRates holds the five scattering-channel rates for one (omega, T, pol)
// evaluation; their sum is the total inverse relaxation time.
type RelaxRates struct {
	NormalLA, NormalTA, UmklappLA, UmklappTA, Impurity float64
}

// Total returns the sum of all channels.
func (r RelaxRates) Total() float64 {
	return r.NormalLA + r.NormalTA + r.UmklappLA + r.UmklappTA + r.Impurity
}

// RelaxRatesAt evaluates all relaxation channels for a phonon of frequency
// omega and polarization pol at temperature T. Only the channels relevant to
// pol are non-zero (Normal/Umklapp are branch specific); Impurity applies to
// both branches.
func (m *Material) RelaxRatesAt(omega, t float64, pol Polarization) RelaxRates {
	var r RelaxRates
	r.Impurity = m.R.Bi * omega * omega * omega * omega
	switch pol {
	case LA:
		r.NormalLA = m.R.Bl * omega * omega * t * t * t
		r.UmklappLA = r.NormalLA
	case TA:
		if omega < m.R.W {
			r.NormalTA = m.R.Btn * omega * t * t * t * t
		} else {
			x := hbar * omega / (kB * t)
			r.UmklappTA = m.R.Btu * omega * omega / math.Sinh(x)
		}
	}
	return r
}
