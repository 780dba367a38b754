// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package model implements Model: the top-level object that owns every
// material, sensor and cell, drives the convergence loop, and hands finished
// per-sensor measurements to the output package.
package model

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/GwGibson/Psim/domain"
	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/sensor"
	"github.com/GwGibson/Psim/simulator"
)

// Convergence-loop tuning constants.
const (
	MaxIters           = 1     // TODO: reset has technical issues; raising this needs a fix first
	ResetThresholdPct  = 90.0  // percentage of sensors that must be stable to avoid a reset
	TEqThresholdPerMil = 5.0   // t_eq must be stable to 0.5% between runs
	TempBoundEPS       = 10.0  // Kelvin slack added to the observed temperature range
	PhasorTempBoundEPS = TempBoundEPS * 100
	SSStepsPercent     = 0.1 // fraction of measurement steps recorded for steady-state
	TempInterval       = 0.1 // material table temperature grid spacing

	resetTolerance     = 0.001 // SteadyState/Periodic relative stability tolerance
	transientTolerance = 0.02  // Transient relative stability tolerance
)

// Params configures a new Model ahead of materials/sensors/cells being
// added.
type Params struct {
	NumRuns          int
	MeasurementSteps int
	SimulationTime   float64
	NumPhonons       int
	TEq              float64
	PhasorSim        bool
}

// Result is one sensor's measurements from the most recently completed run:
// a steady-state aggregate over the recorded segment (the final 10% of
// measurement steps for SteadyState, the entire recorded history for
// Periodic/Transient) plus the full per-step history used by periodic and
// transient output.
type Result struct {
	ID          int
	Steady      sensor.SteadyResult
	FinalTemps  []float64
	FinalFluxes [][2]float64
}

// Model owns every material, sensor and cell and drives the simulation to
// completion.
type Model struct {
	params       Params
	regime       sensor.Regime
	stepInterval int
	startStep    int

	materials map[string]*material.Material
	sensors   map[int]*sensor.Sensor
	cells     []*domain.Cell

	sim    *simulator.Simulator
	interp sensor.Interpreter
	rng    *rand.Rand

	tEq       float64
	effEnergy float64
	results   []Result
}

// New builds a Model from params. Call SetSimulationType before adding
// sensors: a sensor's measurement-slot count depends on the regime.
func New(params Params) *Model {
	return &Model{
		params:    params,
		regime:    sensor.SteadyState,
		materials: make(map[string]*material.Material),
		sensors:   make(map[int]*sensor.Sensor),
		tEq:       params.TEq,
		sim:       simulator.New(params.MeasurementSteps, params.SimulationTime, params.PhasorSim),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSimulationType fixes the model's simulation regime. stepInterval is
// required (> 0) for Periodic and Transient simulations, used by output to
// average consecutive measurement steps together, and forbidden (must be 0)
// for SteadyState. Transient additionally requires a nonzero TEq, since it
// is a deviational-only regime.
func (m *Model) SetSimulationType(regime sensor.Regime, stepInterval int) error {
	switch regime {
	case sensor.Transient, sensor.Periodic:
		m.startStep = m.params.MeasurementSteps - int(float64(m.params.MeasurementSteps)*SSStepsPercent)
		if stepInterval == 0 {
			return chk.Err("step interval of 0 is invalid for transient and periodic simulations")
		}
	case sensor.SteadyState:
		m.startStep = m.params.MeasurementSteps - int(float64(m.params.MeasurementSteps)*SSStepsPercent)
		m.sim.SetStepAdjustment(m.startStep)
		if stepInterval > 0 {
			return chk.Err("step interval > 0 is invalid for steady-state simulations")
		}
	default:
		return chk.Err("unknown simulation regime %v", regime)
	}
	if regime == sensor.Transient && m.tEq == 0 {
		return chk.Err("transient simulations must be run using the deviational approach (t_eq != 0)")
	}
	m.regime = regime
	m.stepInterval = stepInterval
	return nil
}

// AddMaterial registers mat under name, failing on a duplicate name.
func (m *Model) AddMaterial(name string, mat *material.Material) error {
	if _, exists := m.materials[name]; exists {
		return chk.Err("a duplicate material name was detected: %q", name)
	}
	m.materials[name] = mat
	return nil
}

// sensorSteps returns how many measurement-step slots a sensor tracks under
// the active regime: the final SSStepsPercent fraction for SteadyState, or
// every measurement step otherwise.
func (m *Model) sensorSteps() int {
	if m.regime == sensor.SteadyState {
		return int(float64(m.params.MeasurementSteps) * SSStepsPercent)
	}
	return m.params.MeasurementSteps
}

// AddSensor registers a new Sensor with the given id, backed by the named
// material and initialized at tInit.
func (m *Model) AddSensor(id int, materialName string, tInit float64) error {
	if _, exists := m.sensors[id]; exists {
		return chk.Err("sensor with ID %d already exists", id)
	}
	mat, ok := m.materials[materialName]
	if !ok {
		return chk.Err("sensor %d: material %q does not exist", id, materialName)
	}
	steps := m.sensorSteps()
	var ctrl sensor.Controller
	switch m.regime {
	case sensor.SteadyState:
		ctrl = sensor.NewSteadyState(mat, tInit, steps)
	case sensor.Periodic:
		ctrl = sensor.NewPeriodic(mat, tInit, steps)
	case sensor.Transient:
		ctrl = sensor.NewTransient(mat, tInit, steps)
	}
	m.sensors[id] = sensor.New(id, mat, ctrl, steps)
	return nil
}

// AddCell registers a new triangular Cell attributed to sensorID, validating
// it against every previously added cell (no overlap, no containment, no
// duplicate placement) and wiring up any shared-edge TransitionSurfaces.
func (m *Model) AddCell(tri *geom.Triangle, sensorID int, specularity float64) (*domain.Cell, error) {
	s, ok := m.sensors[sensorID]
	if !ok {
		return nil, chk.Err("cell references unknown sensor %d", sensorID)
	}
	c := domain.NewCell(len(m.cells), tri, s, specularity)
	for _, existing := range m.cells {
		if c.ConflictsWith(existing) {
			return nil, chk.Err("cell %d conflicts with existing cell %d (overlap, containment or duplicate)", c.ID, existing.ID)
		}
	}
	for _, existing := range m.cells {
		if err := c.FindTransitionSurfaces(existing); err != nil {
			return nil, err
		}
	}
	m.cells = append(m.cells, c)
	return c, nil
}

// AddEmitSurface places an EmitSurface from p1 to p2 on whichever cell edge
// it lies along, emitting at temp for [startTime, startTime+duration) using
// that cell's own material. It fails when the bounds are invalid, when a
// genuinely transient window is requested outside a Transient simulation,
// or when the line does not lie on any cell edge.
func (m *Model) AddEmitSurface(p1, p2 geom.Point, temp, duration, startTime float64) error {
	simTime := m.params.SimulationTime
	if startTime < 0 || startTime >= simTime || duration < 0 || duration > simTime-startTime {
		return chk.Err("emit surface start_time/duration specification is invalid")
	}
	if (startTime > 0 || duration < simTime) && m.regime != sensor.Transient {
		return chk.Err("cannot add a transient emit surface to a non-transient simulation")
	}
	line, err := geom.NewLine(p1, p2)
	if err != nil {
		return err
	}
	for _, c := range m.cells {
		ok, err := c.SetEmitSurface(line, temp, duration, startTime)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return chk.Err("unable to add emitting surface: no cell edge contains %v-%v", p1, p2)
}

// totalInitialEnergy sums every cell's initial plus emitted energy budget
// over the whole simulation.
func (m *Model) totalInitialEnergy() (float64, error) {
	var total float64
	for _, c := range m.cells {
		init, err := c.InitEnergy(m.tEq)
		if err != nil {
			return 0, err
		}
		emit, err := c.EmitEnergy(m.tEq)
		if err != nil {
			return 0, err
		}
		total += init + emit
	}
	return total, nil
}

// refresh recomputes the total and per-phonon effective energy from the
// current t_eq, and pushes both into the interpreter.
func (m *Model) refresh() (totalEnergy, effEnergy float64, err error) {
	totalEnergy, err = m.totalInitialEnergy()
	if err != nil {
		return 0, 0, err
	}
	effEnergy = totalEnergy / float64(m.params.NumPhonons)
	m.interp.TEq = m.tEq
	m.interp.Phasor = m.params.PhasorSim
	m.effEnergy = effEnergy
	return totalEnergy, effEnergy, nil
}

// setTemperatureBounds scans every cell's initial temperature and every
// emit surface's temperature to find the observed range, then widens it by
// the appropriate slack and hands it to the interpreter for its bisection
// bracket. It returns the widened range.
func (m *Model) setTemperatureBounds() (low, high float64, err error) {
	low, high = math.Inf(1), math.Inf(-1)
	observe := func(t float64) {
		low = utl.Min(low, t)
		high = utl.Max(high, t)
	}
	for _, c := range m.cells {
		observe(c.Sensor.Controller.InitTemp())
		for _, edge := range c.Edges {
			for _, e := range edge.Emits {
				observe(e.EmitTemp())
			}
		}
	}
	if math.IsInf(low, 1) {
		return 0, 0, chk.Err("model has no cells to bound a temperature range over")
	}
	bound := TempBoundEPS
	if m.params.PhasorSim {
		bound = PhasorTempBoundEPS
	}
	m.interp.TMin = utl.Max(low-bound, 0)
	m.interp.TMax = high + bound
	return m.interp.TMin, m.interp.TMax, nil
}

// initializeMaterialTables populates every registered material's
// temperature-dependent cumulative distribution tables over
// [low-ish, high-ish]. The deviational (derivative) occupation form is used
// whenever t_eq != 0, the full Bose-Einstein form otherwise.
func (m *Model) initializeMaterialTables(low, high float64) error {
	for _, mat := range m.materials {
		if err := mat.InitializeTables(low, high, TempInterval, m.tEq != 0); err != nil {
			return err
		}
	}
	return nil
}

// avgTemp returns the area-weighted average of every sensor's current
// steady-temperature estimate, used as the candidate t_eq for a reset.
func (m *Model) avgTemp() float64 {
	var totalArea float64
	for _, s := range m.sensors {
		totalArea += s.Area
	}
	if totalArea == 0 {
		return m.tEq
	}
	var weighted float64
	for _, s := range m.sensors {
		weighted += s.Controller.SteadyTemp(0) * s.Area / totalArea
	}
	return weighted
}

// resetRequired checks every sensor's per-step temperature estimate against
// the estimate recorded at the end of the previous run, committing the new
// estimate as it goes, so the stability check and the reset decision stay
// decoupled. It returns the
// candidate t_eq for a reset and whether one is needed.
func (m *Model) resetRequired() (newTEq float64, unstable bool, err error) {
	stable := 0
	for _, s := range m.sensors {
		var candidate []float64
		var ref float64
		if m.regime != sensor.Transient {
			avg, e := m.averageFinalTemp(s)
			if e != nil {
				return 0, false, e
			}
			candidate = []float64{avg}
			ref = s.Controller.Temps()[len(s.Controller.Temps())-1]
			if !s.Controller.ResetRequired(candidate, math.Abs(ref)*resetTolerance) {
				stable++
			}
			s.Controller.Reset(repeat(avg, len(s.Controller.Temps())))
		} else {
			temps, _, e := m.interp.TransientTemps(s, m.effEnergy)
			if e != nil {
				return 0, false, e
			}
			if len(temps) > 0 {
				temps[0] = s.Controller.InitTemp()
			}
			ref = mean(temps)
			if !s.Controller.ResetRequired(temps, math.Abs(ref)*transientTolerance) {
				stable++
			}
			s.Controller.Reset(temps)
		}
	}
	io.Pf("Stable sensors: %d\n", stable)

	newTEq = m.tEq
	if m.tEq != 0 && m.regime != sensor.Transient {
		newTEq = m.avgTemp()
	}
	tDiff := math.Abs(newTEq-m.tEq) / math.Max(m.tEq, 1e-300) * 1000
	unstable = (stable*100/len(m.sensors) < int(ResetThresholdPct)) || tDiff > TEqThresholdPerMil
	return newTEq, unstable, nil
}

// averageFinalTemp returns the mean recovered temperature over a sensor's
// recorded segment starting at m.startStep (SteadyState/Periodic only; a
// Transient sensor's full per-step history is handled separately).
func (m *Model) averageFinalTemp(s *sensor.Sensor) (float64, error) {
	if s.Area == 0 {
		return 0, nil
	}
	temps, _, err := m.interp.TransientTemps(s, m.effEnergy)
	if err != nil {
		return 0, err
	}
	from := m.startStep
	if m.regime == sensor.SteadyState {
		from = 0 // a SteadyState sensor's slots already start at m.startStep
	}
	if from < 0 || from >= len(temps) {
		from = 0
	}
	return mean(temps[from:]), nil
}

// reset prepares the model for another convergence iteration (fullReset
// false) or another independent run (fullReset true): the simulator's
// builder set is cleared, sensor energy/flux accumulators are zeroed, and
// either each controller pulls its next initial temperature forward
// (SteadyState only) or every controller is restored to its construction
// initial temperature.
func (m *Model) reset(fullReset bool) {
	m.sim.Reset()
	for _, s := range m.sensors {
		s.ResetCounts()
		if fullReset {
			s.Controller.ResetToInit()
		} else {
			s.Controller.InitialUpdate()
		}
	}
}

// storeResults scales every sensor's accumulated counts into physical
// temperature/flux measurements for the run that just completed.
func (m *Model) storeResults() error {
	results := make([]Result, 0, len(m.sensors))
	for id, s := range m.sensors {
		temps, fluxes, err := m.interp.TransientTemps(s, m.effEnergy)
		if err != nil {
			return err
		}
		if len(temps) > 0 {
			temps[0] = s.Controller.InitTemp()
		}
		results = append(results, Result{
			ID:          id,
			Steady:      aggregate(temps, fluxes),
			FinalTemps:  temps,
			FinalFluxes: fluxes,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	m.results = results
	return nil
}

// RunSimulation drives every configured run to completion: per run, it
// rebounds and retabulates the materials, repeatedly seeds phonon builders
// and simulates them until the sensors stabilize or MaxIters is reached,
// then records that run's results. A fresh independent run starts every
// sensor back at its construction-time initial temperature.
func (m *Model) RunSimulation() error {
	if len(m.sensors) == 0 || len(m.cells) == 0 {
		return chk.Err("model has no sensors or no cells to simulate")
	}
	for run := 0; run < m.params.NumRuns; run++ {
		io.Pf("Run: %d\n", run+1)

		low, high, err := m.setTemperatureBounds()
		if err != nil {
			return err
		}
		if err := m.initializeMaterialTables(low, high); err != nil {
			return err
		}
		if _, _, err := m.refresh(); err != nil {
			return err
		}

		iter := 0
		keepGoing := true
		for keepGoing {
			iter++
			if iter > MaxIters {
				break
			}
			if err := m.sim.InitPhononBuilders(m.rng, m.cells, m.tEq, m.effEnergy); err != nil {
				return err
			}
			if err := m.sim.RunSimulation(); err != nil {
				return err
			}
			newTEq, unstable, err := m.resetRequired()
			if err != nil {
				return err
			}
			if unstable && iter < MaxIters && !m.params.PhasorSim {
				m.reset(false)
				m.tEq = newTEq
				io.Pf("system not stable\nupdated t_eq: %v\n", m.tEq)
			} else {
				keepGoing = false
			}
			if _, _, err := m.refresh(); err != nil {
				return err
			}
		}
		if iter >= MaxIters {
			io.Pf("System did not stabilize!!\n")
		}

		if err := m.storeResults(); err != nil {
			return err
		}
		if run+1 < m.params.NumRuns {
			m.reset(true)
		}
	}
	return nil
}

// Results returns the most recently completed run's per-sensor
// measurements, sorted by sensor ID.
func (m *Model) Results() []Result { return m.results }

// Regime returns the active simulation regime.
func (m *Model) Regime() sensor.Regime { return m.regime }

// StepInterval returns the configured periodic/transient averaging
// interval (0 for SteadyState).
func (m *Model) StepInterval() int { return m.stepInterval }

// NumRuns returns the configured number of independent runs. Results holds
// only the last run's measurements; runs are not averaged together.
func (m *Model) NumRuns() int { return m.params.NumRuns }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func aggregate(temps []float64, fluxes [][2]float64) sensor.SteadyResult {
	xs := make([]float64, len(fluxes))
	ys := make([]float64, len(fluxes))
	for i, f := range fluxes {
		xs[i], ys[i] = f[0], f[1]
	}
	mt, st := meanStderr(temps)
	mx, sx := meanStderr(xs)
	my, sy := meanStderr(ys)
	return sensor.SteadyResult{Temp: mt, StdTemp: st, XFlux: mx, StdXFlux: sx, YFlux: my, StdYFlux: sy}
}

func meanStderr(xs []float64) (mean, stderr float64) {
	n := len(xs)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	stderr = math.Sqrt(ss / float64(n-1) / float64(n))
	return mean, stderr
}
