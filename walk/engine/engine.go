// Copyright 2025 Sonic Labs
// This file is part of Galton Quantum Walk Validation Suite
//
// Galton is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Galton is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Galton. If not, see <http://www.gnu.org/licenses/>.

// Package engine samples the outcome distribution of walk circuits.
//
// Every shot is an independent trajectory: decision units carry a single
// qubit amplitude pair, routing steps measure them and add the result to a
// classical accumulator. Because the accumulator only ever controls later
// rotations, this is the deferred measurement equivalent of the coherent walk
// and reproduces its outcome statistics exactly.
package engine

import (
	"math"
	"math/cmplx"
	"math/rand"
	"runtime"
	"sync"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/circuit"
	"github.com/cockroachdb/errors"
)

// ChunkSize is the number of shots sampled from one derived seed.
const ChunkSize = 4096

// Options configures an execution.
type Options struct {
	Optimize bool // run circuit.Optimize before sampling
	Workers  int  // number of sampling goroutines; runtime.NumCPU() if not positive
}

// Execute samples the circuit for the given number of shots and returns the
// observed count of every outcome. The counts only depend on the state of rg,
// not on the number of workers.
func Execute(rg *rand.Rand, c *circuit.Circuit, shots int, opts Options) (walk.EmpiricalTable, error) {
	if c == nil {
		return nil, errors.Wrap(walk.ErrExecution, "missing circuit")
	}
	if shots < 1 {
		return nil, errors.Wrapf(walk.ErrExecution, "number of shots must be positive, got %d", shots)
	}
	if rg == nil {
		return nil, errors.Wrap(walk.ErrExecution, "missing random generator")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(errors.Mark(err, walk.ErrExecution), "invalid circuit")
	}
	if opts.Optimize {
		c = circuit.Optimize(c)
	}

	chunks := (shots + ChunkSize - 1) / ChunkSize
	seeds := make([]int64, chunks)
	for i := range seeds {
		seeds[i] = rg.Int63()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, chunks)

	results := make([]walk.EmpiricalTable, chunks)
	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				n := min(ChunkSize, shots-i*ChunkSize)
				results[i] = sample(rand.New(rand.NewSource(seeds[i])), c, n)
			}
		}()
	}
	for i := 0; i < chunks; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	table := walk.NewEmpiricalTable(c.Depth())
	for _, r := range results {
		table.Add(r)
	}
	return table, nil
}

// sample runs n shots of a validated circuit.
func sample(rg *rand.Rand, c *circuit.Circuit, n int) walk.EmpiricalTable {
	table := walk.NewEmpiricalTable(c.Depth())
	t := newTrajectory(c.Depth())
	for s := 0; s < n; s++ {
		t.reset()
		for i := 0; i < c.Len(); i++ {
			t.apply(rg, c.Op(i), c.Accumulator())
		}
		table[c.Decode(t.decisions)]++
	}
	return table
}

// trajectory is the state of a single shot.
type trajectory struct {
	amp       [][2]complex128 // amplitudes of |0> and |1> per decision unit
	acc       int             // accumulator value
	decisions uint64          // recorded decision bits
	last      int             // unit of the most recent routing step
	fired     bool            // whether the previous operation took effect
}

func newTrajectory(depth int) *trajectory {
	return &trajectory{amp: make([][2]complex128, depth)}
}

func (t *trajectory) reset() {
	for i := range t.amp {
		t.amp[i] = [2]complex128{1, 0}
	}
	t.acc = 0
	t.decisions = 0
	t.last = -1
	t.fired = false
}

func (t *trajectory) apply(rg *rand.Rand, op circuit.Op, accumulator int) {
	switch op.Kind {
	case circuit.RotateY:
		t.rotate(op.Target, op.Angle)
		t.fired = true
	case circuit.ConditionalRotateY:
		t.fired = t.acc == op.Condition
		if t.fired {
			t.rotate(op.Target, op.Angle)
		}
	case circuit.Accumulate:
		t.route(rg, op.Target)
		t.fired = true
	case circuit.Depolarize:
		if !t.fired || rg.Float64() >= op.Prob {
			return
		}
		if op.Target == accumulator {
			t.redraw(rg)
		} else {
			t.pauli(op.Target, rg.Intn(4))
		}
	}
}

// rotate applies Ry(theta) to a decision unit.
func (t *trajectory) rotate(unit int, theta float64) {
	s, c := math.Sincos(theta / 2)
	a := t.amp[unit]
	t.amp[unit] = [2]complex128{
		complex(c, 0)*a[0] - complex(s, 0)*a[1],
		complex(s, 0)*a[0] + complex(c, 0)*a[1],
	}
}

// route measures a decision unit, records the bit and adds it to the accumulator.
func (t *trajectory) route(rg *rand.Rand, unit int) {
	a := t.amp[unit]
	p0, p1 := sqAbs(a[0]), sqAbs(a[1])
	bit := 0
	if rg.Float64()*(p0+p1) < p1 {
		bit = 1
	}
	t.amp[unit] = [2]complex128{complex(float64(1-bit), 0), complex(float64(bit), 0)}
	t.record(unit, bit)
}

func (t *trajectory) record(unit, bit int) {
	if bit == 1 {
		t.decisions |= 1 << uint(unit)
		t.acc++
	} else {
		t.decisions &^= 1 << uint(unit)
	}
	t.last = unit
}

// redraw replaces the most recent routing decision by a uniformly random one.
func (t *trajectory) redraw(rg *rand.Rand) {
	if t.last < 0 {
		return
	}
	if t.decisions&(1<<uint(t.last)) != 0 {
		t.acc--
	}
	t.record(t.last, rg.Intn(2))
}

// pauli applies I, X, Y or Z to a decision unit.
func (t *trajectory) pauli(unit, which int) {
	a := t.amp[unit]
	switch which {
	case 1:
		t.amp[unit] = [2]complex128{a[1], a[0]}
	case 2:
		t.amp[unit] = [2]complex128{-1i * a[1], 1i * a[0]}
	case 3:
		t.amp[unit] = [2]complex128{a[0], -a[1]}
	}
}

func sqAbs(z complex128) float64 {
	r := cmplx.Abs(z)
	return r * r
}
