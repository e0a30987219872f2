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

package walk

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EmpiricalTable holds the observed count of every outcome index 0..L.
type EmpiricalTable []uint64

// NewEmpiricalTable creates an all-zero table for a walk of the given depth.
func NewEmpiricalTable(depth int) EmpiricalTable {
	return make(EmpiricalTable, depth+1)
}

// Depth is the number of layers the table was produced for.
func (t EmpiricalTable) Depth() int {
	return len(t) - 1
}

// Shots is the total number of observations.
func (t EmpiricalTable) Shots() uint64 {
	total := uint64(0)
	for _, c := range t {
		total += c
	}
	return total
}

// Add accumulates the counts of another table of the same depth.
func (t EmpiricalTable) Add(other EmpiricalTable) {
	for i := range t {
		t[i] += other[i]
	}
}

// Frequencies returns the relative frequency of each outcome; all zero for an empty table.
func (t EmpiricalTable) Frequencies() []float64 {
	f := make([]float64, len(t))
	total := t.Shots()
	if total == 0 {
		return f
	}
	for i, c := range t {
		f[i] = float64(c) / float64(total)
	}
	return f
}

// Mean returns the average outcome index and its standard deviation.
func (t EmpiricalTable) Mean() (float64, float64) {
	if t.Shots() == 0 {
		return 0, 0
	}
	weights := make([]float64, len(t))
	for i, c := range t {
		weights[i] = float64(c)
	}
	return stat.MeanStdDev(outcomes(len(t)), weights)
}

// TheoreticalTable holds the exact probability mass of every outcome 0..L.
type TheoreticalTable []float64

// Depth is the number of layers the table was produced for.
func (t TheoreticalTable) Depth() int {
	return len(t) - 1
}

// Mean returns the expected outcome index.
func (t TheoreticalTable) Mean() float64 {
	return floats.Dot(outcomes(len(t)), t)
}

// Check verifies that the table is a probability mass function: all
// entries are in [0,1] and they sum to one within 1e-9.
func (t TheoreticalTable) Check() error {
	if len(t) < 2 {
		return errors.Newf("table needs at least two outcomes, got %d", len(t))
	}
	total := 0.0
	for k, p := range t {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return errors.Newf("invalid probability %v of outcome %d", p, k)
		}
		total += p
	}
	if math.Abs(total-1.0) > 1e-9 {
		return errors.Newf("total probability is not one (%v)", total)
	}
	return nil
}

// outcomes enumerates the outcome indices 0..n-1 as floats.
func outcomes(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}
