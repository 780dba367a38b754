// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import (
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/GwGibson/Psim/domain"
)

// newWorkerRNG returns a worker-local RNG seeded independently of every
// other worker from a nondeterministic source.
func newWorkerRNG(worker int) *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(worker)<<32))
}

// numWorkers returns the goroutine pool size used to data-parallelize phonon
// processing, matching the host's available CPUs.
func numWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return n
}

// RunSimulation drives every phonon produced by the current builder set to
// completion. Below PhononCutoff it materializes and shuffles the full
// phonon population before processing in parallel (decorrelating sensor-lock
// contention across measurement steps); at or above PhononCutoff it streams
// each builder's phonons in parallel without ever materializing the full
// set.
func (s *Simulator) RunSimulation() error {
	if s.totalPhonons < PhononCutoff {
		return s.runPhononByPhonon()
	}
	return s.runUsingBuilders()
}

func (s *Simulator) runPhononByPhonon() error {
	setupRNG := rand.New(rand.NewSource(time.Now().UnixNano()))
	phonons := make([]domain.Phonon, 0, s.totalPhonons)
	for _, b := range s.builders {
		for {
			ph, ok := b.Next(setupRNG)
			if !ok {
				break
			}
			phonons = append(phonons, ph)
		}
	}
	setupRNG.Shuffle(len(phonons), func(i, j int) { phonons[i], phonons[j] = phonons[j], phonons[i] })

	return s.runParallel(len(phonons), func(workerIdx int, rng *rand.Rand, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := s.simulatePhonon(phonons[i], rng); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Simulator) runUsingBuilders() error {
	return s.runParallelOverBuilders()
}

// runParallel splits [0,n) into numWorkers contiguous chunks, each processed
// by a goroutine with its own RNG, and returns the first worker error (if
// any) after all workers finish.
func (s *Simulator) runParallel(n int, work func(workerIdx int, rng *rand.Rand, lo, hi int) error) error {
	workers := numWorkers()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		return nil
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			errs[w] = work(w, newWorkerRNG(w), lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// runParallelOverBuilders assigns each builder to a worker goroutine (rather
// than materializing phonons up front), streaming phonons directly from the
// builder as it produces them.
func (s *Simulator) runParallelOverBuilders() error {
	workers := numWorkers()
	if workers > len(s.builders) {
		workers = len(s.builders)
	}
	if workers < 1 {
		return nil
	}

	jobs := make(chan domain.PhononBuilder, len(s.builders))
	for _, b := range s.builders {
		jobs <- b
	}
	close(jobs)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := newWorkerRNG(w)
			for b := range jobs {
				for {
					ph, ok := b.Next(rng)
					if !ok {
						break
					}
					if err := s.simulatePhonon(ph, rng); err != nil {
						errs[w] = err
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
