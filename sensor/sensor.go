// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sensor

import (
	"sync"

	"github.com/cpmech/gosl/chk"

	"github.com/GwGibson/Psim/material"
)

// Sensor accumulates signed deviational energy and net velocity per
// measurement step for the cells attributed to it, and carries the
// controller that adapts that accumulation to the active simulation regime.
type Sensor struct {
	ID         int
	Material   *material.Material
	Controller Controller
	Area       float64 // total triangle area attributed to this sensor

	mu     sync.Mutex
	energy []int64
	flux   [][2]float64
}

// New builds a Sensor with steps measurement slots, all initialized to zero.
func New(id int, mat *material.Material, ctrl Controller, steps int) *Sensor {
	return &Sensor{
		ID:         id,
		Material:   mat,
		Controller: ctrl,
		energy:     make([]int64, steps),
		flux:       make([][2]float64, steps),
	}
}

// AddArea attributes additional cell area to this sensor.
func (s *Sensor) AddArea(a float64) { s.Area += a }

// UpdateHeatParams adds sign to this sensor's energy count at step and
// sign*(vx,vy) to its net velocity at step. It is safe for concurrent use
// across phonon workers; the lock is held only for the duration of the
// increment, matching the per-sensor mutex discipline described for
// parallel aggregation.
func (s *Sensor) UpdateHeatParams(step int, sign int64, vx, vy float64) error {
	if step < 0 || step >= len(s.energy) {
		return chk.Err("sensor %d: measurement step %d out of range [0,%d)", s.ID, step, len(s.energy))
	}
	s.mu.Lock()
	s.energy[step] += sign
	s.flux[step][0] += float64(sign) * vx
	s.flux[step][1] += float64(sign) * vy
	s.mu.Unlock()
	return nil
}

// Energy returns a copy of the per-step signed energy counts.
func (s *Sensor) Energy() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.energy))
	copy(out, s.energy)
	return out
}

// Flux returns a copy of the per-step net-velocity accumulation.
func (s *Sensor) Flux() [][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]float64, len(s.flux))
	copy(out, s.flux)
	return out
}

// ResetCounts zeroes the accumulated energy/flux ahead of a fresh run,
// leaving the controller's temperature estimates untouched (those persist
// across runs within one convergence iteration).
func (s *Sensor) ResetCounts() {
	s.mu.Lock()
	for i := range s.energy {
		s.energy[i] = 0
		s.flux[i] = [2]float64{}
	}
	s.mu.Unlock()
}

// Steps returns the number of measurement-step slots this sensor tracks.
func (s *Sensor) Steps() int { return len(s.energy) }
