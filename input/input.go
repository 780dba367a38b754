// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package input decodes a simulation description from a JSON file into a
// fully built model.Model, following the settings/materials/sensors/cells/
// emit_surfaces schema.
package input

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/GwGibson/Psim/geom"
	"github.com/GwGibson/Psim/material"
	"github.com/GwGibson/Psim/model"
	"github.com/GwGibson/Psim/sensor"
)

// settingsData is the top-level "settings" object.
type settingsData struct {
	SimType         int     `json:"sim_type"` // 0 SteadyState, 1 Periodic, 2 Transient
	StepInterval    int     `json:"step_interval"`
	NumMeasurements int     `json:"num_measurements"`
	NumPhonons      int     `json:"num_phonons"`
	SimTime         float64 `json:"sim_time"`
	TEq             float64 `json:"t_eq"`
	PhasorSim       bool    `json:"phasor_sim"`
	NumRuns         int     `json:"num_runs"`
}

type dispersionData struct {
	LA        [3]float64 `json:"la_data"` // a, b, c quadratic coefficients
	TA        [3]float64 `json:"ta_data"`
	MaxFreqLA float64    `json:"max_freq_la"`
	MaxFreqTA float64    `json:"max_freq_ta"`
}

type relaxationData struct {
	Bl  float64 `json:"b_l"`
	Btn float64 `json:"b_tn"`
	Btu float64 `json:"b_tu"`
	Bi  float64 `json:"b_i"`
	W   float64 `json:"w"`
}

type materialData struct {
	Name   string         `json:"name"`
	Disp   dispersionData `json:"d_data"`
	Relax  relaxationData `json:"r_data"`
}

type sensorData struct {
	ID       int     `json:"id"`
	Material string  `json:"material"`
	TInit    float64 `json:"t_init"`
}

type pointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p pointData) point() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

type triangleData struct {
	P1 pointData `json:"p1"`
	P2 pointData `json:"p2"`
	P3 pointData `json:"p3"`
}

type cellData struct {
	Triangle    triangleData `json:"triangle"`
	SensorID    int          `json:"sensorID"`
	Specularity float64      `json:"specularity"`
}

type emitSurfaceData struct {
	P1        pointData `json:"p1"`
	P2        pointData `json:"p2"`
	Temp      float64   `json:"temp"`
	Duration  float64   `json:"duration"`
	StartTime float64   `json:"start_time"`
}

type fileData struct {
	Settings     settingsData      `json:"settings"`
	Materials    []materialData    `json:"materials"`
	Sensors      []sensorData      `json:"sensors"`
	Cells        []cellData        `json:"cells"`
	EmitSurfaces []emitSurfaceData `json:"emit_surfaces"`
}

func regimeFor(simType int) sensor.Regime {
	switch simType {
	case 1:
		return sensor.Periodic
	case 2:
		return sensor.Transient
	default:
		return sensor.SteadyState
	}
}

// Load reads and validates the JSON simulation description at filepath,
// building a fully wired model.Model ready for RunSimulation.
func Load(filepath string) (*model.Model, error) {
	raw := io.ReadFile(filepath)
	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, chk.Err("cannot parse simulation file %q: %v", filepath, err)
	}

	s := data.Settings
	numRuns := s.NumRuns
	if numRuns == 0 {
		numRuns = 1
	}
	m := model.New(model.Params{
		NumRuns:          numRuns,
		MeasurementSteps: s.NumMeasurements,
		SimulationTime:   s.SimTime,
		NumPhonons:       s.NumPhonons,
		TEq:              s.TEq,
		PhasorSim:        s.PhasorSim,
	})

	if err := m.SetSimulationType(regimeFor(s.SimType), s.StepInterval); err != nil {
		return nil, err
	}

	for _, md := range data.Materials {
		mat, err := buildMaterial(md)
		if err != nil {
			return nil, err
		}
		if err := m.AddMaterial(md.Name, mat); err != nil {
			return nil, err
		}
	}

	for _, sd := range data.Sensors {
		if err := m.AddSensor(sd.ID, sd.Material, sd.TInit); err != nil {
			return nil, err
		}
	}

	for _, cd := range data.Cells {
		tri, err := geom.NewTriangle(cd.Triangle.P1.point(), cd.Triangle.P2.point(), cd.Triangle.P3.point())
		if err != nil {
			return nil, err
		}
		if _, err := m.AddCell(tri, cd.SensorID, cd.Specularity); err != nil {
			return nil, err
		}
	}

	for _, ed := range data.EmitSurfaces {
		if err := m.AddEmitSurface(ed.P1.point(), ed.P2.point(), ed.Temp, ed.Duration, ed.StartTime); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func buildMaterial(md materialData) (*material.Material, error) {
	la := material.Dispersion{A: md.Disp.LA[0], B: md.Disp.LA[1], C: md.Disp.LA[2], MaxFreq: md.Disp.MaxFreqLA}
	ta := material.Dispersion{A: md.Disp.TA[0], B: md.Disp.TA[1], C: md.Disp.TA[2], MaxFreq: md.Disp.MaxFreqTA}
	r := material.RelaxCoeffs{
		Bl: md.Relax.Bl, Btn: md.Relax.Btn, Btu: md.Relax.Btu, Bi: md.Relax.Bi, W: md.Relax.W,
	}
	return material.New(md.Name, la, ta, r)
}
