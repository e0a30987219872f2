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

package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/circuit"
	"github.com/0xsoniclabs/galton/walk/noise"
	"github.com/0xsoniclabs/galton/walk/schedule"
	"github.com/0xsoniclabs/galton/walk/theory"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func build(t *testing.T, depth int, family walk.Family, rate float64) *circuit.Circuit {
	t.Helper()
	s, err := schedule.Generate(depth, family, rate)
	require.NoError(t, err)
	c, err := circuit.Build(s, depth)
	require.NoError(t, err)
	return c
}

// checkGoodnessOfFit runs a chi-squared test of observed counts against
// expected probabilities at significance level alpha.
func checkGoodnessOfFit(t *testing.T, counts walk.EmpiricalTable, expected walk.TheoreticalTable, alpha float64) {
	t.Helper()
	n := float64(counts.Shots())
	chi2 := 0.0
	bins := 0
	for k, p := range expected {
		e := n * p
		if e < 5 {
			continue
		}
		d := float64(counts[k]) - e
		chi2 += d * d / e
		bins++
	}
	require.Greater(t, bins, 1)
	df := float64(bins - 1)
	critical := distuv.ChiSquared{K: df, Src: nil}.Quantile(1 - alpha)
	if chi2 > critical {
		t.Errorf("observed counts %v do not fit %v: chi2=%.2f > %.2f", counts, expected, chi2, critical)
	}
}

// TestEngine_CountsSumToShots checks that every shot lands in exactly one bin.
func TestEngine_CountsSumToShots(t *testing.T) {
	c := build(t, 5, walk.Exponential, 0.8)
	for _, shots := range []int{1, 7, ChunkSize, ChunkSize + 1, 3*ChunkSize - 5} {
		table, err := Execute(rand.New(rand.NewSource(1)), c, shots, Options{})
		require.NoError(t, err)
		assert.Len(t, table, 6)
		assert.Equal(t, uint64(shots), table.Shots())
	}
}

// TestEngine_BinomialMean checks the centre of a symmetric walk.
func TestEngine_BinomialMean(t *testing.T) {
	c := build(t, 10, walk.Binomial, 0)
	table, err := Execute(rand.New(rand.NewSource(42)), c, 100000, Options{})
	require.NoError(t, err)
	mean, std := table.Mean()
	assert.InDelta(t, 5.0, mean, 0.1)
	assert.InDelta(t, math.Sqrt(2.5), std, 0.05)
}

// TestEngine_MatchesTheory checks ideal executions against the exact targets.
func TestEngine_MatchesTheory(t *testing.T) {
	tests := map[string]struct {
		depth  int
		family walk.Family
		rate   float64
	}{
		"binomial":         {8, walk.Binomial, 0},
		"exponential":      {8, walk.Exponential, 0.5},
		"exponential-deep": {14, walk.Exponential, walk.DefaultRate(14)},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c := build(t, test.depth, test.family, test.rate)
			expected, err := theory.Table(test.depth, test.family, test.rate)
			require.NoError(t, err)
			table, err := Execute(rand.New(rand.NewSource(7)), c, 200000, Options{Workers: 4})
			require.NoError(t, err)
			checkGoodnessOfFit(t, table, expected, 0.001)
		})
	}
}

// TestEngine_IsDeterministic checks that results only depend on the seed.
func TestEngine_IsDeterministic(t *testing.T) {
	c, err := noise.Inject(build(t, 6, walk.Exponential, 0.4), 0.05)
	require.NoError(t, err)
	shots := 5*ChunkSize + 17
	a, err := Execute(rand.New(rand.NewSource(3)), c, shots, Options{Workers: 1})
	require.NoError(t, err)
	b, err := Execute(rand.New(rand.NewSource(3)), c, shots, Options{Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	d, err := Execute(rand.New(rand.NewSource(4)), c, shots, Options{Workers: 8})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

// TestEngine_ZeroNoiseEqualsIdeal checks that a channel-free injection changes nothing.
func TestEngine_ZeroNoiseEqualsIdeal(t *testing.T) {
	c := build(t, 7, walk.Exponential, 0.6)
	n, err := noise.Inject(c, 0)
	require.NoError(t, err)
	a, err := Execute(rand.New(rand.NewSource(11)), c, 20000, Options{})
	require.NoError(t, err)
	b, err := Execute(rand.New(rand.NewSource(11)), n, 20000, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// TestEngine_OptimizePreservesDistribution checks that the optimised circuit
// samples the same outcomes.
func TestEngine_OptimizePreservesDistribution(t *testing.T) {
	ideal := build(t, 9, walk.Exponential, 0.35)
	noisy, err := noise.Inject(ideal, 0.02)
	require.NoError(t, err)
	for name, c := range map[string]*circuit.Circuit{"ideal": ideal, "noisy": noisy} {
		t.Run(name, func(t *testing.T) {
			a, err := Execute(rand.New(rand.NewSource(5)), c, 30000, Options{})
			require.NoError(t, err)
			b, err := Execute(rand.New(rand.NewSource(5)), c, 30000, Options{Optimize: true})
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

// TestEngine_NoiseDistortsExponential checks that strong noise moves mass away
// from the target.
func TestEngine_NoiseDistortsExponential(t *testing.T) {
	ideal := build(t, 8, walk.Exponential, 0.9)
	noisy, err := noise.Inject(ideal, 0.3)
	require.NoError(t, err)
	a, err := Execute(rand.New(rand.NewSource(9)), ideal, 50000, Options{})
	require.NoError(t, err)
	b, err := Execute(rand.New(rand.NewSource(9)), noisy, 50000, Options{})
	require.NoError(t, err)
	meanIdeal, _ := a.Mean()
	meanNoisy, _ := b.Mean()
	assert.Greater(t, meanNoisy, meanIdeal+0.2)
}

// TestEngine_NoiseKeepsBinomialSymmetric checks that Pauli errors on fair
// coins leave the distribution unchanged.
func TestEngine_NoiseKeepsBinomialSymmetric(t *testing.T) {
	noisy, err := noise.Inject(build(t, 8, walk.Binomial, 0), 0.2)
	require.NoError(t, err)
	table, err := Execute(rand.New(rand.NewSource(13)), noisy, 200000, Options{})
	require.NoError(t, err)
	checkGoodnessOfFit(t, table, theory.Binomial(8), 0.001)
}

// TestEngine_RejectsInvalidInput checks execution errors.
func TestEngine_RejectsInvalidInput(t *testing.T) {
	rg := rand.New(rand.NewSource(1))
	c := build(t, 3, walk.Binomial, 0)

	_, err := Execute(rg, c, 0, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))
	_, err = Execute(rg, c, -5, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))
	_, err = Execute(rg, nil, 10, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))
	_, err = Execute(nil, c, 10, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))

	outside := circuit.New(3, []circuit.Op{{Kind: circuit.RotateY, Target: 7, Angle: 1}})
	_, err = Execute(rg, outside, 10, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))

	badProb := circuit.New(3, []circuit.Op{
		{Kind: circuit.RotateY, Target: 0, Angle: 1},
		{Kind: circuit.Depolarize, Target: 0, Prob: 2},
	})
	_, err = Execute(rg, badProb, 10, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))

	// a second accumulation would count the same decision twice
	twice := circuit.New(3, []circuit.Op{
		{Kind: circuit.RotateY, Target: 0, Angle: math.Pi},
		{Kind: circuit.Accumulate, Target: 0},
		{Kind: circuit.Accumulate, Target: 0},
	})
	_, err = Execute(rg, twice, 10, Options{})
	assert.True(t, errors.Is(err, walk.ErrExecution))
}

// TestEngine_PauliErrors checks the single unit error operators.
func TestEngine_PauliErrors(t *testing.T) {
	tr := newTrajectory(1)
	tr.reset()
	tr.rotate(0, math.Pi/3)
	before := tr.amp[0]
	for which := 0; which < 4; which++ {
		tr.amp[0] = before
		tr.pauli(0, which)
		p1 := sqAbs(tr.amp[0][1])
		if which == 1 || which == 2 {
			assert.InDelta(t, sqAbs(before[0]), p1, 1e-12)
		} else {
			assert.InDelta(t, sqAbs(before[1]), p1, 1e-12)
		}
	}
}

// TestEngine_RedrawKeepsAccumulatorConsistent checks routing errors.
func TestEngine_RedrawKeepsAccumulatorConsistent(t *testing.T) {
	rg := rand.New(rand.NewSource(2))
	tr := newTrajectory(4)
	for n := 0; n < 100; n++ {
		tr.reset()
		tr.record(0, 1)
		tr.record(1, 0)
		tr.redraw(rg)
		c := circuit.New(4, nil)
		assert.Equal(t, c.Decode(tr.decisions), tr.acc)
	}
}
