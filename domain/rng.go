// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package domain holds all Cells and the Sensor-referencing mesh they form,
// in addition to the Phonon state and builders the simulator drives through
// that mesh. Only elements reachable from a sealed Model are recorded here.
package domain

// RNG is the minimal uniform-random source every sampling routine in this
// package needs. *math/rand.Rand satisfies it; tests can substitute a
// deterministic stub.
type RNG interface {
	Float64() float64
}
