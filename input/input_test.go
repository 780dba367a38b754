// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

const unitSquareJSON = `{
	"settings": {
		"sim_type": 0,
		"step_interval": 0,
		"num_measurements": 20,
		"num_phonons": 500,
		"sim_time": 1e-9,
		"t_eq": 0,
		"phasor_sim": false,
		"num_runs": 1
	},
	"materials": [
		{
			"name": "silicon",
			"d_data": {
				"la_data": [-2e-7, 6000, 0],
				"ta_data": [-4e-7, 2000, 0],
				"max_freq_la": 8e13,
				"max_freq_ta": 3e13
			},
			"r_data": {"b_l": 2e-24, "b_tn": 9.3e-13, "b_tu": 5.5e-18, "b_i": 1.32e-45, "w": 2.4e13}
		}
	],
	"sensors": [
		{"id": 0, "material": "silicon", "t_init": 300}
	],
	"cells": [
		{"triangle": {"p1": {"x": 0, "y": 0}, "p2": {"x": 1, "y": 0}, "p3": {"x": 0, "y": 1}}, "sensorID": 0, "specularity": 1.0},
		{"triangle": {"p1": {"x": 1, "y": 0}, "p2": {"x": 1, "y": 1}, "p3": {"x": 0, "y": 1}}, "sensorID": 0, "specularity": 1.0}
	],
	"emit_surfaces": []
}`

func TestLoadBuildsARunnableModel(tst *testing.T) {
	chk.PrintTitle("input.Load decodes a JSON simulation file into a runnable Model")
	dir := tst.TempDir()
	path := filepath.Join(dir, "square.json")
	require.NoError(tst, os.WriteFile(path, []byte(unitSquareJSON), 0644))

	m, err := Load(path)
	require.NoError(tst, err)
	require.NoError(tst, m.RunSimulation())
	require.Len(tst, m.Results(), 1)
}

func TestLoadRejectsUnknownSensorMaterial(tst *testing.T) {
	chk.PrintTitle("input.Load rejects a sensor referencing an undeclared material")
	dir := tst.TempDir()
	path := filepath.Join(dir, "bad.json")
	bad := `{"settings": {"sim_type": 0, "num_measurements": 10, "num_phonons": 10, "sim_time": 1e-9},
		"materials": [], "sensors": [{"id": 0, "material": "missing", "t_init": 300}], "cells": [], "emit_surfaces": []}`
	require.NoError(tst, os.WriteFile(path, []byte(bad), 0644))

	_, err := Load(path)
	require.Error(tst, err)
}
