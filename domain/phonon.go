// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/sensor"
)

// Phonon is a single stochastic transport carrier. A Phonon whose Cell is
// nil has been removed from the system (absorbed by an emitting boundary,
// or lost its cell through a bookkeeping error) and must not be driven any
// further.
type Phonon struct {
	Sign      int8 // +1 or -1
	Lifetime  float64
	LifeStep  int
	Px, Py    float64
	Dx, Dy    float64
	FreqIndex int
	Freq      float64
	Velocity  float64
	Polar     material.Polarization
	Cell      *Cell // non-owning; nil means removed from the system
}

// Position returns the phonon's current location.
func (p *Phonon) Position() geom.Point { return geom.Point{X: p.Px, Y: p.Py} }

// SetDirection sets the phonon's unit propagation direction.
func (p *Phonon) SetDirection(dx, dy float64) { p.Dx, p.Dy = dx, dy }

// SetRandDirection draws a uniform direction on the unit circle:
// dx = 2U-1, dy = sqrt(1-dx^2)*cos(2*pi*U).
func (p *Phonon) SetRandDirection(rng RNG) {
	p.Dx = 2*rng.Float64() - 1
	p.Dy = math.Sqrt(1-p.Dx*p.Dx) * math.Cos(2*math.Pi*rng.Float64())
}

// Drift advances the phonon's position by direction*velocity*dt.
func (p *Phonon) Drift(dt float64) {
	p.Px += p.Dx * p.Velocity * dt
	p.Py += p.Dy * p.Velocity * dt
}

// Detached reports whether the phonon has been removed from the system.
func (p *Phonon) Detached() bool { return p.Cell == nil }

// errDetached is returned by every accessor that requires an owning cell.
func errDetached() error {
	return chk.Err("phonon detached from system")
}

// CurrentSensor returns the sensor attributed to the phonon's owning cell.
func (p *Phonon) CurrentSensor() (*sensor.Sensor, error) {
	if p.Detached() {
		return nil, errDetached()
	}
	return p.Cell.Sensor, nil
}

// ScatterUpdate resamples (freq index, freq, velocity, polarization) from
// the owning cell's sensor's scatter table at the cell's current
// temperature estimate for the phonon's life step.
func (p *Phonon) ScatterUpdate(rng RNG) error {
	if p.Detached() {
		return errDetached()
	}
	s := p.Cell.Sensor
	t := s.Controller.SteadyTemp(p.LifeStep)
	tab, err := s.Material.ScatterTable(t)
	if err != nil {
		return err
	}
	idx, pol := material.FreqIndex(tab, rng.Float64(), rng.Float64())
	p.FreqIndex = idx
	p.Freq = s.Material.FreqAt(idx)
	p.Velocity = s.Material.VelocityAt(idx, pol)
	p.Polar = pol
	return nil
}
