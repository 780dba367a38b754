// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sensor implements per-cell measurement accumulation (Sensor),
// the three simulation-regime controllers (SteadyState/Periodic/Transient)
// and the numerical inversion from accumulated energy to temperature
// (SensorInterpreter).
package sensor

import (
	"github.com/cpmech/gosl/chk"

	"github.com/GwGibson/Psim/material"
)

// Regime identifies which simulation-type behavior a Controller implements.
type Regime int

const (
	SteadyState Regime = iota
	Periodic
	Transient
)

func (r Regime) String() string {
	switch r {
	case SteadyState:
		return "SteadyState"
	case Periodic:
		return "Periodic"
	case Transient:
		return "Transient"
	default:
		return "unknown"
	}
}

// Controller is the capability set shared by the three simulation regimes:
// a per-step temperature estimate used to pick material tables during the
// simulator's inner loop, plus the reset logic that decides whether the
// convergence loop needs another iteration.
type Controller interface {
	Regime() Regime
	// HeatCapacity returns the base-table total energy at the current
	// temperature estimate for step, used by the deviational temperature
	// inversion.
	HeatCapacity(step int) (float64, error)
	// InitTemp returns the temperature new phonons/builders should compare
	// against when deciding a phonon's sign (see material.Polarization and
	// phonon sign selection).
	InitTemp() float64
	// SteadyTemp returns the best current temperature estimate for step;
	// this is what the simulator looks up material tables against.
	SteadyTemp(step int) float64
	// InitialUpdate seeds the controller's mutable state ahead of a fresh
	// run of the same convergence iteration (SteadyState only: pulls the
	// init temperature forward from the prior run's steady temperature).
	InitialUpdate()
	// ResetRequired compares this run's computed per-step temperatures
	// against the ones recorded at the last reset and reports whether
	// another convergence iteration is needed.
	ResetRequired(newTemps []float64, tolerance float64) bool
	// Reset commits newTemps as the controller's new per-step estimate.
	Reset(newTemps []float64)
	// Temps returns the controller's current per-step temperature vector.
	Temps() []float64
	// ResetToInit restores the controller to its construction-time initial
	// temperature, undoing any forward pull from InitialUpdate. Used between
	// independent runs of a multi-run simulation (see Model.reset).
	ResetToInit()
}

type baseController struct {
	mat      *material.Material
	initTemp float64
	temps    []float64 // per measurement step
}

func newBase(mat *material.Material, initTemp float64, steps int) baseController {
	temps := make([]float64, steps)
	for i := range temps {
		temps[i] = initTemp
	}
	return baseController{mat: mat, initTemp: initTemp, temps: temps}
}

func (b *baseController) HeatCapacity(step int) (float64, error) {
	if step < 0 || step >= len(b.temps) {
		return 0, chk.Err("sensor controller: step %d out of range [0,%d)", step, len(b.temps))
	}
	tab, err := b.mat.BaseTable(b.temps[step])
	if err != nil {
		return 0, err
	}
	return tab.TotalEnergy, nil
}

func (b *baseController) SteadyTemp(step int) float64 {
	if step < 0 || step >= len(b.temps) {
		step = len(b.temps) - 1
	}
	return b.temps[step]
}

func (b *baseController) Temps() []float64 { return b.temps }

// SteadyStateController implements the single-table-pair regime: every
// measurement step shares one temperature estimate, and a reset pulls the
// next run's initial temperature forward from this run's steady value to
// accelerate convergence.
type SteadyStateController struct {
	baseController
	effectiveInit float64
}

// NewSteadyState builds a SteadyStateController with steps identical
// temperature slots, all seeded at initTemp.
func NewSteadyState(mat *material.Material, initTemp float64, steps int) *SteadyStateController {
	return &SteadyStateController{baseController: newBase(mat, initTemp, steps), effectiveInit: initTemp}
}

func (c *SteadyStateController) Regime() Regime   { return SteadyState }
func (c *SteadyStateController) InitTemp() float64 { return c.effectiveInit }

func (c *SteadyStateController) InitialUpdate() {
	if len(c.temps) > 0 {
		c.effectiveInit = c.temps[len(c.temps)-1]
	}
}

func (c *SteadyStateController) ResetRequired(newTemps []float64, tolerance float64) bool {
	return absDelta(c.temps[len(c.temps)-1], newTemps[len(newTemps)-1]) > tolerance
}

func (c *SteadyStateController) Reset(newTemps []float64) {
	copy(c.temps, newTemps)
}

func (c *SteadyStateController) ResetToInit() {
	c.effectiveInit = c.initTemp
	for i := range c.temps {
		c.temps[i] = c.initTemp
	}
}

// PeriodicController behaves like SteadyStateController for table lookups
// but never advances its init temperature across resets, so the periodic
// progression stays visible run over run.
type PeriodicController struct {
	baseController
}

// NewPeriodic builds a PeriodicController with steps identical temperature
// slots, all seeded at initTemp.
func NewPeriodic(mat *material.Material, initTemp float64, steps int) *PeriodicController {
	return &PeriodicController{baseController: newBase(mat, initTemp, steps)}
}

func (c *PeriodicController) Regime() Regime    { return Periodic }
func (c *PeriodicController) InitTemp() float64 { return c.initTemp }
func (c *PeriodicController) InitialUpdate()    {}

func (c *PeriodicController) ResetRequired(newTemps []float64, tolerance float64) bool {
	return absDelta(c.temps[len(c.temps)-1], newTemps[len(newTemps)-1]) > tolerance
}

func (c *PeriodicController) Reset(newTemps []float64) {
	copy(c.temps, newTemps)
}

func (c *PeriodicController) ResetToInit() {
	for i := range c.temps {
		c.temps[i] = c.initTemp
	}
}

// TransientController keeps one temperature estimate per measurement step
// (rather than a single shared value) and requires every step's estimate to
// match the previous run's before declaring convergence.
type TransientController struct {
	baseController
}

// NewTransient builds a TransientController with steps independent
// temperature slots, all seeded at initTemp.
func NewTransient(mat *material.Material, initTemp float64, steps int) *TransientController {
	return &TransientController{baseController: newBase(mat, initTemp, steps)}
}

func (c *TransientController) Regime() Regime    { return Transient }
func (c *TransientController) InitTemp() float64 { return c.initTemp }
func (c *TransientController) InitialUpdate()    {}

func (c *TransientController) ResetRequired(newTemps []float64, tolerance float64) bool {
	for i, t := range c.temps {
		if absDelta(t, newTemps[i]) > tolerance {
			return true
		}
	}
	return false
}

func (c *TransientController) Reset(newTemps []float64) {
	copy(c.temps, newTemps)
}

func (c *TransientController) ResetToInit() {
	for i := range c.temps {
		c.temps[i] = c.initTemp
	}
}

func absDelta(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
