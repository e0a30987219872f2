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

// Package experiment wires schedule generation, circuit construction, noise,
// execution, theory and analysis into validation runs.
package experiment

import (
	"math/rand"
	"time"

	"github.com/0xsoniclabs/galton/logger"
	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/analysis"
	"github.com/0xsoniclabs/galton/walk/circuit"
	"github.com/0xsoniclabs/galton/walk/engine"
	"github.com/0xsoniclabs/galton/walk/noise"
	"github.com/0xsoniclabs/galton/walk/schedule"
	"github.com/0xsoniclabs/galton/walk/theory"
	"github.com/cockroachdb/errors"
)

// Case describes a single validation run.
type Case struct {
	Name       string
	Family     walk.Family
	Depth      int
	Rate       float64 // exponential decay rate; 0 selects walk.DefaultRate
	Noise      float64 // depolarizing error probability
	Shots      int
	Resamples  int
	Confidence float64
	Optimize   bool
	Workers    int
}

// DefaultCases returns the ideal and noisy runs of both families with the
// default settings.
func DefaultCases() []Case {
	var cases []Case
	for _, family := range []walk.Family{walk.Binomial, walk.Exponential} {
		for _, p := range []float64{0, 0.01} {
			c := Case{
				Family:     family,
				Depth:      14,
				Noise:      p,
				Shots:      8192,
				Resamples:  analysis.DefaultResamples,
				Confidence: analysis.DefaultConfidence,
			}
			c.Name = c.label()
			cases = append(cases, c)
		}
	}
	return cases
}

func (c Case) label() string {
	if c.Noise == 0 {
		return c.Family.String() + "-ideal"
	}
	return c.Family.String() + "-noisy"
}

// EffectiveRate returns the exponential rate used by the case; zero for the
// binomial family.
func (c Case) EffectiveRate() float64 {
	if c.Family != walk.Exponential {
		return 0
	}
	if c.Rate == 0 {
		return walk.DefaultRate(c.Depth)
	}
	return c.Rate
}

// Report collects the outcome of a single run.
type Report struct {
	Case            string                `json:"case"`
	Family          string                `json:"family"`
	Depth           int                   `json:"depth"`
	Rate            float64               `json:"rate"`
	Noise           float64               `json:"noise"`
	Shots           int                   `json:"shots"`
	Optimized       bool                  `json:"optimized"`
	Circuit         circuit.Stats         `json:"circuit"`
	Empirical       walk.EmpiricalTable   `json:"empirical"`
	Theoretical     walk.TheoreticalTable `json:"theoretical"`
	EmpiricalMean   float64               `json:"empirical_mean"`
	EmpiricalStd    float64               `json:"empirical_std"`
	TheoreticalMean float64               `json:"theoretical_mean"`
	Analysis        analysis.Result       `json:"analysis"`
}

// Run executes a single case.
func Run(rg *rand.Rand, c Case, log logger.Logger) (*Report, error) {
	reports, err := Sweep(rg, c, []float64{c.Noise}, log)
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// Sweep executes the case once per noise level on the same ideal circuit.
// Levels are processed in order, so results only depend on the state of rg.
func Sweep(rg *rand.Rand, c Case, noiseLevels []float64, log logger.Logger) ([]*Report, error) {
	if len(noiseLevels) == 0 {
		return nil, errors.Wrap(walk.ErrInvalidParameter, "no noise levels")
	}
	for _, p := range noiseLevels {
		if err := noise.CheckProbability(p); err != nil {
			return nil, err
		}
	}
	rate := c.EffectiveRate()
	s, err := schedule.Generate(c.Depth, c.Family, rate)
	if err != nil {
		return nil, errors.Wrapf(err, "case %s", c.Name)
	}
	ideal, err := circuit.Build(s, c.Depth)
	if err != nil {
		return nil, errors.Wrapf(err, "case %s", c.Name)
	}
	target, err := theory.Table(c.Depth, c.Family, rate)
	if err != nil {
		return nil, errors.Wrapf(err, "case %s", c.Name)
	}

	reports := make([]*Report, 0, len(noiseLevels))
	for _, p := range noiseLevels {
		r, err := execute(rg, c, ideal, target, rate, p, log)
		if err != nil {
			return nil, errors.Wrapf(err, "case %s at noise %v", c.Name, p)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func execute(rg *rand.Rand, c Case, ideal *circuit.Circuit, target walk.TheoreticalTable, rate, p float64, log logger.Logger) (*Report, error) {
	start := time.Now()
	log.Noticef("Run %s: depth %d, noise %v, %d shots", c.Name, c.Depth, p, c.Shots)

	circ, err := noise.Inject(ideal, p)
	if err != nil {
		return nil, err
	}
	if c.Optimize {
		circ = circuit.Optimize(circ)
	}
	stats := circ.Stats()
	log.Infof("Circuit of %d operations, depth %d, %v", stats.Total, stats.Depth, stats.Ops)

	counts, err := engine.Execute(rg, circ, c.Shots, engine.Options{Workers: c.Workers})
	if err != nil {
		return nil, err
	}
	log.Debugf("Counts: %v", counts)

	result, err := analysis.AnalyzeWithWorkers(rg, counts, target, c.Resamples, c.Confidence, c.Workers)
	if err != nil {
		return nil, err
	}
	mean, std := counts.Mean()

	hours, minutes, seconds := logger.ParseTime(time.Since(start))
	log.Infof("KL %.6f [%.6f, %.6f] at %.0f%% confidence; elapsed %vh %vm %vs",
		result.Divergence, result.Lower, result.Upper, 100*result.Confidence, hours, minutes, seconds)

	return &Report{
		Case:            c.Name,
		Family:          c.Family.String(),
		Depth:           c.Depth,
		Rate:            rate,
		Noise:           p,
		Shots:           c.Shots,
		Optimized:       c.Optimize,
		Circuit:         stats,
		Empirical:       counts,
		Theoretical:     target,
		EmpiricalMean:   mean,
		EmpiricalStd:    std,
		TheoreticalMean: target.Mean(),
		Analysis:        *result,
	}, nil
}
