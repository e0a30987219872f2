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

// Package analysis measures how far an empirical outcome distribution is from
// its theoretical target and bootstraps a confidence interval for the
// distance.
package analysis

import (
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/cockroachdb/errors"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// SmoothingPseudoCount is added to every observed count before
	// normalising, so unobserved outcomes keep a finite divergence.
	SmoothingPseudoCount = 0.5
	DefaultResamples     = 1000
	DefaultConfidence    = 0.95
)

// Result summarises the divergence of one empirical table.
type Result struct {
	Divergence    float64 `json:"kl"`             // KL(smoothed empirical || theoretical)
	Lower         float64 `json:"ci_lower"`       // lower confidence bound
	Upper         float64 `json:"ci_upper"`       // upper confidence bound
	Confidence    float64 `json:"confidence"`     // confidence level of the interval
	Resamples     int     `json:"resamples"`      // number of bootstrap resamples
	BootstrapMean float64 `json:"bootstrap_mean"` // mean divergence over all resamples
}

// Smooth turns counts into probabilities after adding SmoothingPseudoCount
// to every outcome.
func Smooth(counts walk.EmpiricalTable) []float64 {
	total := float64(counts.Shots()) + SmoothingPseudoCount*float64(len(counts))
	p := make([]float64, len(counts))
	for k, c := range counts {
		p[k] = (float64(c) + SmoothingPseudoCount) / total
	}
	return p
}

// KL computes the Kullback-Leibler divergence sum p log(p/q) in nats. Terms
// with p = 0 contribute nothing.
func KL(p []float64, q walk.TheoreticalTable) float64 {
	d := 0.0
	for k := range p {
		if p[k] > 0 {
			d += p[k] * math.Log(p[k]/q[k])
		}
	}
	return d
}

// Analyze computes the divergence of the empirical table from the theoretical
// one and a percentile bootstrap confidence interval at the given level. The
// interval always contains the point estimate. Resamples are drawn in
// parallel on all CPUs; the result only depends on the state of rg.
func Analyze(rg *rand.Rand, empirical walk.EmpiricalTable, theoretical walk.TheoreticalTable, resamples int, confidence float64) (*Result, error) {
	return AnalyzeWithWorkers(rg, empirical, theoretical, resamples, confidence, 0)
}

// AnalyzeWithWorkers is Analyze with the number of resampling goroutines
// bounded by workers; runtime.NumCPU() is used if workers is not positive.
// The worker count does not affect the result.
func AnalyzeWithWorkers(rg *rand.Rand, empirical walk.EmpiricalTable, theoretical walk.TheoreticalTable, resamples int, confidence float64, workers int) (*Result, error) {
	if err := check(rg, empirical, theoretical, resamples, confidence); err != nil {
		return nil, err
	}
	kl := KL(Smooth(empirical), theoretical)

	seeds := make([]uint64, resamples)
	for i := range seeds {
		seeds[i] = rg.Uint64()
	}
	values := make([]float64, resamples)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, resamples)
	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resampled := walk.NewEmpiricalTable(empirical.Depth())
			for i := range work {
				resample(xrand.NewSource(seeds[i]), empirical, resampled)
				values[i] = KL(Smooth(resampled), theoretical)
			}
		}()
	}
	for i := 0; i < resamples; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	sort.Float64s(values)
	alpha := (1 - confidence) / 2
	return &Result{
		Divergence:    kl,
		Lower:         math.Min(kl, stat.Quantile(alpha, stat.Empirical, values, nil)),
		Upper:         math.Max(kl, stat.Quantile(1-alpha, stat.Empirical, values, nil)),
		Confidence:    confidence,
		Resamples:     resamples,
		BootstrapMean: stat.Mean(values, nil),
	}, nil
}

func check(rg *rand.Rand, empirical walk.EmpiricalTable, theoretical walk.TheoreticalTable, resamples int, confidence float64) error {
	if rg == nil {
		return errors.Wrap(walk.ErrAnalysis, "missing random generator")
	}
	if len(empirical) != len(theoretical) {
		return errors.Wrapf(walk.ErrAnalysis, "empirical table has %d outcomes, theoretical table %d", len(empirical), len(theoretical))
	}
	if resamples < 1 {
		return errors.Wrapf(walk.ErrAnalysis, "number of resamples must be positive, got %d", resamples)
	}
	if !(confidence > 0 && confidence < 1) {
		return errors.Wrapf(walk.ErrAnalysis, "confidence level %v is not in (0, 1)", confidence)
	}
	if empirical.Shots() == 0 {
		return errors.Wrap(walk.ErrAnalysis, "empirical table is empty")
	}
	if err := theoretical.Check(); err != nil {
		return errors.Wrap(errors.Mark(err, walk.ErrAnalysis), "invalid theoretical table")
	}
	for k, q := range theoretical {
		if q == 0 {
			return errors.Wrapf(walk.ErrAnalysis, "theoretical table assigns no mass to outcome %d", k)
		}
	}
	return nil
}

// resample draws a multinomial sample of the same size as the observed table
// with the observed frequencies, as a chain of conditional binomials.
func resample(src xrand.Source, observed, out walk.EmpiricalTable) {
	remaining := observed.Shots()
	left := remaining // observed mass of the outcomes not yet drawn
	for k, c := range observed {
		var n uint64
		switch {
		case remaining == 0 || c == 0:
			n = 0
		case c == left || k == len(observed)-1:
			n = remaining
		default:
			b := distuv.Binomial{N: float64(remaining), P: float64(c) / float64(left), Src: src}
			n = uint64(b.Rand())
		}
		out[k] = n
		remaining -= n
		left -= c
	}
}
