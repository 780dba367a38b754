// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Psim is a command-line driver for the phonon transport Monte Carlo
// simulator: each argument names a JSON simulation file, which
// is loaded, run to completion and exported to a text results file
// alongside it. A failure on one file is reported and does not stop the
// remaining files from being attempted.
package main

import (
	"flag"
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/google/uuid"

	"github.com/GwGibson/Psim/input"
	"github.com/GwGibson/Psim/output"
)

func main() {
	io.PfWhite("\nPsim -- 2D Phonon Transport Monte Carlo Simulator\n\n")
	io.Pf("Copyright 2016 The Gofem Authors. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	flag.Parse()
	files := flag.Args()
	if len(files) == 0 {
		io.PfRed("ERROR: please provide at least one simulation file. Ex.: psim cavity.json\n")
		return
	}

	for _, fnamepath := range files {
		runFile(fnamepath)
	}
}

// runFile loads, simulates and exports a single simulation file, reporting
// and swallowing any error so the remaining files still run.
func runFile(fnamepath string) {
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v panicked while processing %q: %v\n", "psim", fnamepath, err)
		}
	}()

	runID := uuid.New()
	io.Pf("\n=== %s [run %s] ===\n", fnamepath, runID)
	start := time.Now()

	m, err := input.Load(fnamepath)
	if err != nil {
		io.PfRed("ERROR: %v\n", err)
		return
	}

	if err := m.RunSimulation(); err != nil {
		io.PfRed("ERROR: %v\n", err)
		return
	}

	elapsed := time.Since(start)
	if err := output.Write(fnamepath, m, elapsed); err != nil {
		io.PfRed("ERROR: %v\n", err)
		return
	}

	io.PfGreen("done in %v\n", elapsed)
}
