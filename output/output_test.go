// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"

	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/model"
	"github.com/GwGibson/Psim/sensor"
)

func testMaterial(tst *testing.T) *material.Material {
	la := material.Dispersion{A: -2e-7, B: 6000, MaxFreq: 8e13}
	ta := material.Dispersion{A: -4e-7, B: 2000, MaxFreq: 3e13}
	r := material.RelaxCoeffs{Bl: 2e-24, Btn: 9.3e-13, Btu: 5.5e-18, Bi: 1.32e-45, W: 2.4e13}
	m, err := material.New("silicon", la, ta, r)
	require.NoError(tst, err)
	return m
}

func buildSquareModel(tst *testing.T, regime sensor.Regime, stepInterval int) *model.Model {
	m := model.New(model.Params{
		NumRuns:          1,
		MeasurementSteps: 20,
		SimulationTime:   1e-9,
		NumPhonons:       500,
	})
	require.NoError(tst, m.SetSimulationType(regime, stepInterval))
	require.NoError(tst, m.AddMaterial("silicon", testMaterial(tst)))
	require.NoError(tst, m.AddSensor(0, "silicon", 300))

	tri1, err := geom.NewTriangle(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1})
	require.NoError(tst, err)
	_, err = m.AddCell(tri1, 0, 1.0)
	require.NoError(tst, err)
	tri2, err := geom.NewTriangle(geom.Point{X: 1, Y: 0}, geom.Point{X: 1, Y: 1}, geom.Point{X: 0, Y: 1})
	require.NoError(tst, err)
	_, err = m.AddCell(tri2, 0, 1.0)
	require.NoError(tst, err)
	return m
}

func TestWriteSteadyStateProducesTxtFile(tst *testing.T) {
	chk.PrintTitle("output.Write derives the ss_ prefixed .txt file for SteadyState runs")
	m := buildSquareModel(tst, sensor.SteadyState, 0)
	require.NoError(tst, m.RunSimulation())

	dir := tst.TempDir()
	path := filepath.Join(dir, "square.json")
	require.NoError(tst, Write(path, m, time.Millisecond))

	out := filepath.Join(dir, "ss_square.txt")
	data, err := os.ReadFile(out)
	require.NoError(tst, err)
	require.NotEmpty(tst, data)
}

func TestWritePeriodicProducesTxtFile(tst *testing.T) {
	chk.PrintTitle("output.Write derives the per_ prefixed .txt file for Periodic runs")
	m := buildSquareModel(tst, sensor.Periodic, 2)
	require.NoError(tst, m.RunSimulation())

	dir := tst.TempDir()
	path := filepath.Join(dir, "square.json")
	require.NoError(tst, Write(path, m, time.Millisecond))

	out := filepath.Join(dir, "per_square.txt")
	data, err := os.ReadFile(out)
	require.NoError(tst, err)
	require.NotEmpty(tst, data)
}

func TestWriteFailsWithoutResults(tst *testing.T) {
	chk.PrintTitle("output.Write rejects a model that has not been run")
	m := buildSquareModel(tst, sensor.SteadyState, 0)
	require.Error(tst, Write(filepath.Join(tst.TempDir(), "square.json"), m, 0))
}
