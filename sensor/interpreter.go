// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sensor

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// inversion tuning constants.
const (
	inversionTol        = 1e-4
	inversionMaxIters   = 40
	fullSimBoundSlack   = 10   // K
	phasorBoundSlack    = 1000 // K
)

// Interpreter converts a Sensor's accumulated per-step signed phonon counts
// into physical temperature and heat-flux histories. It is a pure reader:
// it never mutates the sensors it interprets.
type Interpreter struct {
	TEq    float64 // deviational equilibrium temperature; 0 means full simulation
	Phasor bool    // widens the full-simulation bisection bracket
	TMin   float64 // material temperature-grid bounds, for the full-sim bisection
	TMax   float64
}

// Flux returns the physical heat flux at step: the accumulated net-velocity
// sum scaled by the effective energy per phonon and the sensor's area.
func (in *Interpreter) Flux(s *Sensor, step int, effEnergy float64) ([2]float64, error) {
	if step < 0 || step >= s.Steps() {
		return [2]float64{}, chk.Err("sensor %d: step %d out of range", s.ID, step)
	}
	if s.Area <= 0 {
		return [2]float64{}, chk.Err("sensor %d: non-positive area", s.ID)
	}
	f := s.Flux()[step]
	scale := effEnergy / s.Area
	return [2]float64{f[0] * scale, f[1] * scale}, nil
}

// Temperature returns the physical temperature at step. When TEq != 0
// (deviational) this is a direct scaling; when TEq == 0 (full simulation)
// it is recovered by bisecting the material's theoretical energy curve.
func (in *Interpreter) Temperature(s *Sensor, step int, effEnergy float64) (float64, error) {
	if step < 0 || step >= s.Steps() {
		return 0, chk.Err("sensor %d: step %d out of range", s.ID, step)
	}
	if s.Area <= 0 {
		return 0, chk.Err("sensor %d: non-positive area", s.ID)
	}
	energy := float64(s.Energy()[step])

	if in.TEq != 0 {
		capacity, err := s.Controller.HeatCapacity(step)
		if err != nil {
			return 0, err
		}
		if capacity <= 0 {
			return 0, chk.Err("sensor %d: non-positive heat capacity at step %d", s.ID, step)
		}
		return energy*effEnergy/(s.Area*capacity) + in.TEq, nil
	}

	slack := fullSimBoundSlack
	if in.Phasor {
		slack = phasorBoundSlack
	}
	lo, hi := in.TMin-float64(slack), in.TMax+float64(slack)
	target := energy * effEnergy
	f := func(t float64) (float64, error) {
		e, err := s.Material.TheoreticalEnergy(t, false)
		if err != nil {
			return 0, err
		}
		return e*s.Area - target, nil
	}
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if flo > fhi { // ensure flo <= 0 <= fhi for the bisection below
		lo, hi = hi, lo
	}
	for i := 0; i < inversionMaxIters; i++ {
		mid := (lo + hi) / 2
		fm, err := f(mid)
		if err != nil {
			return 0, err
		}
		if math.Abs(hi-lo) < inversionTol {
			return mid, nil
		}
		if fm < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}

// SteadyResult is the mean +/- standard error temperature and flux over a
// sensor's final measurement segment.
type SteadyResult struct {
	Temp, StdTemp       float64
	XFlux, StdXFlux     float64
	YFlux, StdYFlux     float64
}

// TransientTemps returns the full per-step temperature and flux history,
// used by Periodic/Transient output.
func (in *Interpreter) TransientTemps(s *Sensor, effEnergy float64) ([]float64, [][2]float64, error) {
	temps := make([]float64, s.Steps())
	fluxes := make([][2]float64, s.Steps())
	for step := 0; step < s.Steps(); step++ {
		t, err := in.Temperature(s, step, effEnergy)
		if err != nil {
			return nil, nil, err
		}
		fl, err := in.Flux(s, step, effEnergy)
		if err != nil {
			return nil, nil, err
		}
		temps[step] = t
		fluxes[step] = fl
	}
	return temps, fluxes, nil
}
