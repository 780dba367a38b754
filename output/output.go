// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package output writes a completed model.Model's per-sensor results to a
// text file: a header line followed by a
// steady-state body for SteadyState simulations, or a repeating
// step/sensor-count/measurement block for Periodic and Transient
// simulations (which share the same evolving-field format).
package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/GwGibson/Psim/model"
	"github.com/GwGibson/Psim/sensor"
)

// Write exports m's most recently completed run to a file derived from
// filepath: extension replaced with .txt, and prefixed ss_ (SteadyState) or
// per_ (Periodic/Transient). elapsed is reported in the header for
// informational purposes only.
func Write(path string, m *model.Model, elapsed time.Duration) error {
	results := m.Results()
	if len(results) == 0 {
		return chk.Err("model has no results to export; did RunSimulation run?")
	}
	switch m.Regime() {
	case sensor.SteadyState:
		return writeSteadyState(path, results, m.NumRuns(), elapsed)
	default:
		return writePeriodic(path, results, m.StepInterval(), m.NumRuns(), elapsed)
	}
}

// adjustPath replaces filepath's extension with .txt and prepends prefix to
// the filename.
func adjustPath(path, prefix string) string {
	dir := filepathDir(path)
	base := filepathBase(path)
	ext := filepathExt(base)
	base = strings.TrimSuffix(base, ext) + ".txt"
	return filepath.Join(dir, prefix+base)
}

func filepathDir(p string) string  { return filepath.Dir(p) }
func filepathBase(p string) string { return filepath.Base(p) }
func filepathExt(p string) string  { return filepath.Ext(p) }

func writeSteadyState(path string, results []model.Result, numRuns int, elapsed time.Duration) error {
	var buf bytes.Buffer
	buf.WriteString(io.Sf("Steady State Results from %s @ %s - Time Taken %v[s] over %d runs\n",
		filepathBase(path), currentDateTime(), elapsed.Seconds(), numRuns))
	for _, r := range results {
		s := r.Steady
		buf.WriteString(io.Sf("%v %v %v %v %v %v\n", s.Temp, s.StdTemp, s.XFlux, s.StdXFlux, s.YFlux, s.StdYFlux))
	}
	io.WriteFile(adjustPath(path, "ss_"), &buf)
	return nil
}

func writePeriodic(path string, results []model.Result, stepInterval, numRuns int, elapsed time.Duration) error {
	if stepInterval <= 0 {
		stepInterval = 1
	}
	steps := len(results[0].FinalTemps)

	var buf bytes.Buffer
	buf.WriteString(io.Sf("Periodic Results from %s @ %s - Time Taken %v[s] over %d runs\n",
		filepathBase(path), currentDateTime(), elapsed.Seconds(), numRuns))

	for step := 0; step+stepInterval <= steps; step += stepInterval {
		buf.WriteString(io.Sf("%d\n", step+stepInterval/2))
		buf.WriteString(io.Sf("%d\n", len(results)))
		for _, r := range results {
			temp := average(r.FinalTemps[step : step+stepInterval])
			xflux, yflux := averageFlux(r.FinalFluxes[step : step+stepInterval])
			buf.WriteString(io.Sf("%v %v %v\n", temp, xflux, yflux))
		}
	}
	io.WriteFile(adjustPath(path, "per_"), &buf)
	return nil
}

func average(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func averageFlux(fs [][2]float64) (x, y float64) {
	for _, f := range fs {
		x += f[0]
		y += f[1]
	}
	n := float64(len(fs))
	return x / n, y / n
}

func currentDateTime() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
