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

package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/circuit"
	"github.com/0xsoniclabs/galton/walk/engine"
	"github.com/0xsoniclabs/galton/walk/noise"
	"github.com/0xsoniclabs/galton/walk/schedule"
	"github.com/0xsoniclabs/galton/walk/theory"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// scaled returns a table whose counts follow the target up to rounding.
func scaled(target walk.TheoreticalTable, shots float64) walk.EmpiricalTable {
	t := walk.NewEmpiricalTable(target.Depth())
	for k, p := range target {
		t[k] = uint64(math.Round(p * shots))
	}
	return t
}

// TestAnalysis_Smooth checks normalisation and the pseudo count.
func TestAnalysis_Smooth(t *testing.T) {
	p := Smooth(walk.EmpiricalTable{3, 0, 1})
	assert.InDeltaSlice(t, []float64{3.5 / 5.5, 0.5 / 5.5, 1.5 / 5.5}, p, 1e-15)
	total := 0.0
	for _, v := range p {
		total += v
		assert.Greater(t, v, 0.0)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

// TestAnalysis_KL checks known divergences.
func TestAnalysis_KL(t *testing.T) {
	q := walk.TheoreticalTable{0.5, 0.5}
	assert.Equal(t, 0.0, KL([]float64{0.5, 0.5}, q))
	assert.InDelta(t, math.Ln2, KL([]float64{1, 0}, q), 1e-15)
	assert.InDelta(t, 0.75*math.Log(1.5)+0.25*math.Log(0.5), KL([]float64{0.75, 0.25}, q), 1e-15)
}

// TestAnalysis_IntervalContainsEstimate checks the interval for several tables.
func TestAnalysis_IntervalContainsEstimate(t *testing.T) {
	target := theory.Binomial(6)
	tables := []walk.EmpiricalTable{
		scaled(target, 8192),
		{1, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 5000, 0, 0, 0},
		{10, 60, 150, 200, 150, 60, 10},
	}
	for _, table := range tables {
		r, err := Analyze(rand.New(rand.NewSource(1)), table, target, 200, 0.95)
		require.NoError(t, err)
		assert.LessOrEqual(t, r.Lower, r.Divergence)
		assert.GreaterOrEqual(t, r.Upper, r.Divergence)
		assert.GreaterOrEqual(t, r.Divergence, 0.0)
		assert.Equal(t, 200, r.Resamples)
		assert.Equal(t, 0.95, r.Confidence)
		assert.Greater(t, r.BootstrapMean, 0.0)
	}
}

// TestAnalysis_IntervalWidensWithConfidence checks nesting of intervals drawn
// from the same resamples.
func TestAnalysis_IntervalWidensWithConfidence(t *testing.T) {
	target := theory.Binomial(8)
	table := walk.EmpiricalTable{2, 30, 110, 220, 270, 220, 110, 30, 8}
	narrow, err := Analyze(rand.New(rand.NewSource(5)), table, target, 500, 0.5)
	require.NoError(t, err)
	wide, err := Analyze(rand.New(rand.NewSource(5)), table, target, 500, 0.99)
	require.NoError(t, err)
	assert.LessOrEqual(t, wide.Lower, narrow.Lower)
	assert.GreaterOrEqual(t, wide.Upper, narrow.Upper)
	assert.Equal(t, narrow.Divergence, wide.Divergence)
	assert.Equal(t, narrow.BootstrapMean, wide.BootstrapMean)
}

// TestAnalysis_IntervalShrinksWithShots checks that larger samples give
// tighter intervals.
func TestAnalysis_IntervalShrinksWithShots(t *testing.T) {
	target, err := theory.Exponential(10, 0.4)
	require.NoError(t, err)
	small, err := Analyze(rand.New(rand.NewSource(2)), scaled(target, 1000), target, 300, 0.95)
	require.NoError(t, err)
	large, err := Analyze(rand.New(rand.NewSource(2)), scaled(target, 100000), target, 300, 0.95)
	require.NoError(t, err)
	assert.Less(t, large.Upper-large.Lower, small.Upper-small.Lower)
	assert.Less(t, large.Divergence, small.Divergence)
}

// TestAnalysis_IsDeterministic checks that results only depend on the seed.
func TestAnalysis_IsDeterministic(t *testing.T) {
	target := theory.Binomial(5)
	table := walk.EmpiricalTable{40, 150, 320, 300, 160, 30}
	a, err := Analyze(rand.New(rand.NewSource(9)), table, target, 400, 0.9)
	require.NoError(t, err)
	b, err := Analyze(rand.New(rand.NewSource(9)), table, target, 400, 0.9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// TestAnalysis_WorkersDoNotChangeResult checks that the number of resampling
// goroutines only affects scheduling.
func TestAnalysis_WorkersDoNotChangeResult(t *testing.T) {
	target := theory.Binomial(5)
	table := walk.EmpiricalTable{40, 150, 320, 300, 160, 30}
	single, err := AnalyzeWithWorkers(rand.New(rand.NewSource(4)), table, target, 300, 0.95, 1)
	require.NoError(t, err)
	for _, workers := range []int{0, 3, 1000} {
		r, err := AnalyzeWithWorkers(rand.New(rand.NewSource(4)), table, target, 300, 0.95, workers)
		require.NoError(t, err)
		assert.Equal(t, single, r, "workers %d", workers)
	}
	all, err := Analyze(rand.New(rand.NewSource(4)), table, target, 300, 0.95)
	require.NoError(t, err)
	assert.Equal(t, single, all)
}

// TestAnalysis_BoundsStabiliseWithResamples checks that more resamples reduce
// the Monte Carlo error of the interval bounds. For a fixed table the bounds
// converge to the percentiles of the exact bootstrap distribution, so their
// spread over independent seeds falls as the resample count grows while the
// interval width settles.
func TestAnalysis_BoundsStabiliseWithResamples(t *testing.T) {
	// a mismatched target keeps the point estimate inside the bootstrap
	// distribution, so neither bound is pinned to it
	target, err := theory.Exponential(8, 0.3)
	require.NoError(t, err)
	table := scaled(theory.Binomial(8), 2000)
	spread := func(resamples int) (lower, upper, width float64) {
		const seeds = 12
		var lo, hi, w []float64
		for seed := 0; seed < seeds; seed++ {
			r, err := AnalyzeWithWorkers(rand.New(rand.NewSource(int64(seed))), table, target, resamples, 0.95, 0)
			require.NoError(t, err)
			lo = append(lo, r.Lower)
			hi = append(hi, r.Upper)
			w = append(w, r.Upper-r.Lower)
		}
		return stat.StdDev(lo, nil), stat.StdDev(hi, nil), stat.Mean(w, nil)
	}
	fewLower, fewUpper, fewWidth := spread(100)
	manyLower, manyUpper, manyWidth := spread(10000)
	assert.Less(t, manyLower, fewLower)
	assert.Less(t, manyUpper, fewUpper)
	assert.InEpsilon(t, manyWidth, fewWidth, 0.5)
}

// TestAnalysis_NoiseIncreasesDivergence runs the pipeline with and without errors.
func TestAnalysis_NoiseIncreasesDivergence(t *testing.T) {
	depth := 10
	rate := walk.DefaultRate(depth)
	s, err := schedule.Generate(depth, walk.Exponential, rate)
	require.NoError(t, err)
	ideal, err := circuit.Build(s, depth)
	require.NoError(t, err)
	noisy, err := noise.Inject(ideal, 0.05)
	require.NoError(t, err)
	target, err := theory.Table(depth, walk.Exponential, rate)
	require.NoError(t, err)

	divergence := func(c *circuit.Circuit) *Result {
		rg := rand.New(rand.NewSource(42))
		table, err := engine.Execute(rg, c, 8192, engine.Options{})
		require.NoError(t, err)
		r, err := Analyze(rg, table, target, 200, 0.95)
		require.NoError(t, err)
		return r
	}
	a := divergence(ideal)
	b := divergence(noisy)
	assert.Less(t, a.Divergence, b.Divergence)
	assert.Less(t, a.Upper, b.Lower)
}

// TestAnalysis_ResampleKeepsSupportAndSize checks the multinomial resampling.
func TestAnalysis_ResampleKeepsSupportAndSize(t *testing.T) {
	observed := walk.EmpiricalTable{0, 12, 0, 300, 7, 0, 1}
	out := walk.NewEmpiricalTable(observed.Depth())
	src := xrand.NewSource(3)
	for n := 0; n < 200; n++ {
		resample(src, observed, out)
		assert.Equal(t, observed.Shots(), out.Shots())
		for k, c := range observed {
			if c == 0 {
				assert.Zero(t, out[k])
			}
		}
	}
}

// TestAnalysis_RejectsInvalidInput checks analysis errors.
func TestAnalysis_RejectsInvalidInput(t *testing.T) {
	rg := rand.New(rand.NewSource(1))
	target := walk.TheoreticalTable{0.25, 0.5, 0.25}
	table := walk.EmpiricalTable{1, 2, 1}
	tests := map[string]func() error{
		"length mismatch": func() error {
			_, err := Analyze(rg, walk.EmpiricalTable{1, 2}, target, 10, 0.95)
			return err
		},
		"no resamples": func() error {
			_, err := Analyze(rg, table, target, 0, 0.95)
			return err
		},
		"confidence zero": func() error {
			_, err := Analyze(rg, table, target, 10, 0)
			return err
		},
		"confidence one": func() error {
			_, err := Analyze(rg, table, target, 10, 1)
			return err
		},
		"confidence nan": func() error {
			_, err := Analyze(rg, table, target, 10, math.NaN())
			return err
		},
		"empty table": func() error {
			_, err := Analyze(rg, walk.EmpiricalTable{0, 0, 0}, target, 10, 0.95)
			return err
		},
		"zero mass": func() error {
			_, err := Analyze(rg, table, walk.TheoreticalTable{0.5, 0, 0.5}, 10, 0.95)
			return err
		},
		"not normalised": func() error {
			_, err := Analyze(rg, table, walk.TheoreticalTable{0.5, 0.5, 0.5}, 10, 0.95)
			return err
		},
		"missing generator": func() error {
			_, err := Analyze(nil, table, target, 10, 0.95)
			return err
		},
	}
	for name, run := range tests {
		t.Run(name, func(t *testing.T) {
			err := run()
			assert.True(t, errors.Is(err, walk.ErrAnalysis), "got %v", err)
		})
	}
}
