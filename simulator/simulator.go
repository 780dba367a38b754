// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package simulator implements ModelSimulator: the drift/scatter/impact
// inner loop that drives a Phonon from birth to measurement-step exhaustion
// or absorption, and the parallel execution modes (per-phonon vs
// per-builder streaming).
package simulator

import (
	"math"

	"github.com/GwGibson/Psim/domain"
	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/sensor"
)

// Inner-loop tuning constants.
const (
	ScalingFactor     = 1e9       // scales the sampled scattering time (ns per second)
	PhononCutoff      = 5_000_000 // switch from materializing phonons to streaming builders
	velocityEPS       = 0.01      // velocity components below this are treated as zero for impact timing
	maxCollisions     = 100       // per-phonon safety limit against corner-thrash
	BuilderMaxPhonons = domain.BuilderMaxPhonons
)

// Simulator is the ModelSimulator: it owns the measurement-step schedule and
// the set of phonon builders for one simulation run, and drives every
// phonon's drift/scatter/impact loop.
type Simulator struct {
	stepTime       float64
	stepTimes      []float64
	phasorSim      bool
	stepAdjustment int

	builders     []domain.PhononBuilder
	totalPhonons int
}

// New builds a Simulator with measurementSteps equally-spaced measurement
// times over [0, simTime].
func New(measurementSteps int, simTime float64, phasorSim bool) *Simulator {
	s := &Simulator{
		stepTime:  simTime / float64(measurementSteps),
		phasorSim: phasorSim,
		stepTimes: make([]float64, measurementSteps),
	}
	for i := range s.stepTimes {
		s.stepTimes[i] = float64(i+1) * simTime / float64(measurementSteps)
	}
	return s
}

// StepTime returns the fixed time between measurement events.
func (s *Simulator) StepTime() float64 { return s.stepTime }

// SetStepAdjustment sets the measurement-step offset at which sensor
// accumulation begins (SteadyState records only the final segment).
func (s *Simulator) SetStepAdjustment(n int) { s.stepAdjustment = n }

// TotalPhonons returns how many phonons the current builder set will produce.
func (s *Simulator) TotalPhonons() int { return s.totalPhonons }

// Reset clears the builder set ahead of a fresh convergence iteration.
func (s *Simulator) Reset() {
	s.builders = nil
	s.totalPhonons = 0
}

// getPhonons converts a fractional phonon count (energy/effEnergy) into an
// integer count, stochastically rounding up by the fractional remainder so
// the expected phonon count matches the energy budget exactly.
func getPhonons(rng domain.RNG, fractionalEnergy, effEnergy float64) int {
	ratio := fractionalEnergy / effEnergy
	whole := math.Floor(ratio)
	frac := ratio - whole
	n := int(whole)
	if rng.Float64() < frac {
		n++
	}
	return n
}

// InitPhononBuilders builds the CellOrigin and Surface/Phasor builders for
// every cell's initial population and every emit surface's emission over
// this run, packing each builder instance to at most BuilderMaxPhonons/2 (for
// cell-origin quotas) or BuilderMaxPhonons (for surface/phasor emitters) so
// workers see balanced units.
func (s *Simulator) InitPhononBuilders(rng domain.RNG, cells []*domain.Cell, tEq, effEnergy float64) error {
	var quotas []domain.CellQuota
	quotaTotal := 0
	flushQuotas := func() {
		if len(quotas) == 0 {
			return
		}
		s.builders = append(s.builders, domain.NewCellOriginBuilder(tEq, quotas))
		quotas = nil
		quotaTotal = 0
	}

	for _, cell := range cells {
		initEnergy, err := cell.InitEnergy(tEq)
		if err != nil {
			return err
		}
		if n := getPhonons(rng, initEnergy, effEnergy); n > 0 {
			s.totalPhonons += n
			for n > 0 {
				take := n
				if take > BuilderMaxPhonons/2 {
					take = BuilderMaxPhonons / 2
				}
				if quotaTotal+take > BuilderMaxPhonons/2 && quotaTotal != 0 {
					flushQuotas()
				}
				quotas = append(quotas, domain.CellQuota{Cell: cell, Count: take})
				quotaTotal += take
				n -= take
			}
		}

		for _, edge := range cell.Edges {
			for _, e := range edge.Emits {
				emit, err := e.EmitMaterial().EmitEnergy(e.EmitTemp())
				if err != nil {
					return err
				}
				emitEnergy := e.Line.Length * e.Duration() * emit / 4
				if tEq != 0 {
					emitEnergy *= absDelta(tEq, e.EmitTemp())
				}
				count := getPhonons(rng, emitEnergy, effEnergy)
				s.totalPhonons += count
				for count > BuilderMaxPhonons {
					b, err := newEmitBuilder(s.phasorSim, cell, e, s.stepTime, tEq, BuilderMaxPhonons)
					if err != nil {
						return err
					}
					s.builders = append(s.builders, b)
					count -= BuilderMaxPhonons
				}
				if count > 0 {
					b, err := newEmitBuilder(s.phasorSim, cell, e, s.stepTime, tEq, count)
					if err != nil {
						return err
					}
					s.builders = append(s.builders, b)
				}
			}
		}
	}
	flushQuotas()
	return nil
}

func newEmitBuilder(phasor bool, cell *domain.Cell, surf *domain.Surface, stepTime, tEq float64, n int) (domain.PhononBuilder, error) {
	if phasor {
		return domain.NewPhasorBuilder(cell, surf, stepTime, tEq, n)
	}
	return domain.NewSurfaceOriginBuilder(cell, surf, stepTime, tEq, n)
}

func absDelta(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// componentTime returns the time to reach poiCoord travelling at vel from
// startCoord, falling back to maxTime when vel is within velocityEPS of zero
// (floating-point safety).
func componentTime(startCoord, poiCoord, vel, maxTime float64) float64 {
	if vel > velocityEPS || vel < -velocityEPS {
		return (poiCoord - startCoord) / vel
	}
	return maxTime
}

// nextImpact finds the nearest boundary-line impact within driftTime of ph's
// current cell, moves ph to the impact point and dispatches the collision to
// that edge's CompositeSurface. It returns the elapsed time and true when an
// impact was found, or (0, false) when ph drifts the full driftTime without
// touching a boundary.
func (s *Simulator) nextImpact(ph *domain.Phonon, driftTime float64, rng domain.RNG) (float64, bool) {
	cell := ph.Cell
	start := ph.Position()
	vx, vy := ph.Dx*ph.Velocity, ph.Dy*ph.Velocity
	end := geom.Point{X: start.X + driftTime*vx, Y: start.Y + driftTime*vy}
	if start.Equals(end) {
		return 0, false
	}
	path, err := geom.NewLine(start, end)
	if err != nil {
		return 0, false
	}

	best := driftTime
	bestIdx := -1
	var bestPoint geom.Point
	for i, edge := range cell.Triangle.Edges {
		poi, ok := edge.GetIntersection(path)
		if !ok || poi.Equals(start) {
			continue
		}
		tx := componentTime(start.X, poi.X, vx, driftTime)
		ty := componentTime(start.Y, poi.Y, vy, driftTime)
		t := tx
		if ty < t {
			t = ty
		}
		if t <= best {
			best = t
			bestIdx = i
			bestPoint = poi
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	ph.Px, ph.Py = bestPoint.X, bestPoint.Y
	_ = cell.HandlePhonon(bestIdx, ph, bestPoint, rng, s.stepTime)
	return best, true
}

// handleImpacts chains nextImpact calls until driftTime is exhausted, ph
// loses its cell (absorbed by an emit surface), ph enters a new sensor area
// (scatter time must be recomputed by the caller, so this returns
// immediately) or the per-phonon collision limiter kicks in (ph is
// repositioned to a random point in its current cell). It returns the
// elapsed time and whether ph is still alive.
func (s *Simulator) handleImpacts(ph *domain.Phonon, driftTime float64, sensorBefore *sensor.Sensor, rng domain.RNG) (float64, bool) {
	impactTime, ok := s.nextImpact(ph, driftTime, rng)
	var drifted float64
	collisions := 0
	for ok {
		if ph.Detached() {
			return 0, false
		}
		drifted += impactTime
		collisions++
		if collisions > maxCollisions {
			pos := ph.Cell.Triangle.GetRandPoint(rng.Float64(), rng.Float64())
			ph.Px, ph.Py = pos.X, pos.Y
			return driftTime, true
		}
		if ph.Cell.Sensor != sensorBefore {
			return drifted, true
		}
		impactTime, ok = s.nextImpact(ph, driftTime-drifted, rng)
	}
	if ph.Detached() {
		return 0, false
	}
	return drifted, true
}

// scatter resamples ph's frequency/polarization (Normal or Umklapp channel)
// or only its direction (impurity channel).
func scatter(ph *domain.Phonon, rates material.RelaxRates, rng domain.RNG) {
	total := rates.Total()
	if total <= 0 {
		return
	}
	normal := rates.NormalLA + rates.NormalTA
	umklapp := rates.UmklappLA + rates.UmklappTA
	u := rng.Float64()
	if u <= (normal+umklapp)/total {
		_ = ph.ScatterUpdate(rng)
		if u > normal/total {
			ph.SetRandDirection(rng)
		}
	} else if rates.Impurity > 0 {
		ph.SetRandDirection(rng)
	}
}

// simulatePhonon drives ph through drift/scatter/impact cycles until it
// exhausts its measurement steps or is absorbed by an emit surface,
// recording its contribution to the owning sensor at every completed
// measurement step past stepAdjustment.
func (s *Simulator) simulatePhonon(ph domain.Phonon, rng domain.RNG) error {
	age := ph.Lifetime
	step := int(age / s.stepTime)
	if step < 0 {
		step = 0
	}
	if step >= len(s.stepTimes) {
		step = len(s.stepTimes) - 1
	}
	ph.LifeStep = step

	var rates material.RelaxRates
	var timeToScatter, timeToMeasurement float64
	alive := true
	for alive {
		if ph.Detached() {
			break
		}
		if timeToScatter <= 0 {
			mat := ph.Cell.Sensor.Material
			temp := ph.Cell.Sensor.Controller.SteadyTemp(step)
			rates = mat.RelaxRatesAt(ph.Freq, temp, ph.Polar)
			timeToScatter = ScalingFactor * -math.Log(rng.Float64()) / rates.Total()
		}
		if timeToMeasurement <= 0 {
			timeToMeasurement = s.stepTimes[step] - age
		}
		drift := math.Min(timeToScatter, timeToMeasurement)
		sensorBefore := ph.Cell.Sensor

		drifted, ok := s.handleImpacts(&ph, drift, sensorBefore, rng)
		if !ok {
			alive = false
			break
		}
		if ph.Cell.Sensor != sensorBefore {
			drift = drifted
		}
		ph.Drift(drift - drifted)
		age += drift
		timeToMeasurement -= drift
		timeToScatter -= drift

		switch {
		case timeToMeasurement == 0:
			step++
			if step >= len(s.stepTimes) {
				alive = false
			} else {
				ph.LifeStep = step
				if step >= s.stepAdjustment {
					vx, vy := ph.Dx*ph.Velocity, ph.Dy*ph.Velocity
					if err := ph.Cell.Sensor.UpdateHeatParams(step-s.stepAdjustment, int64(ph.Sign), vx, vy); err != nil {
						return err
					}
				}
			}
		case !s.phasorSim && timeToScatter == 0:
			scatter(&ph, rates, rng)
		default:
			timeToScatter = 0
		}
	}
	return nil
}
