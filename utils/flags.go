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

package utils

import (
	"github.com/urfave/cli/v2"
)

// Command line options for common flags in walk validation tools.
var (
	FamilyFlag = cli.StringFlag{
		Name:  "family",
		Usage: "target distribution family (\"binomial\", \"exponential\")",
		Value: "binomial",
	}
	DepthFlag = cli.IntFlag{
		Name:  "depth",
		Usage: "number of walk layers (pegs); outcomes range over 0..depth",
		Value: 14,
	}
	RateFlag = cli.Float64Flag{
		Name:  "rate",
		Usage: "decay rate of the exponential target; 0 derives the rate from depth",
		Value: 0,
	}
	NoiseFlag = cli.Float64Flag{
		Name:  "noise",
		Usage: "depolarizing error probability attached to every operation, in [0,1)",
		Value: 0,
	}
	NoiseLevelsFlag = cli.Float64SliceFlag{
		Name:  "noise-levels",
		Usage: "list of depolarizing error probabilities evaluated by a sweep",
		Value: cli.NewFloat64Slice(0, 0.001, 0.01, 0.05),
	}
	ShotsFlag = cli.IntFlag{
		Name:  "shots",
		Usage: "number of circuit executions",
		Value: 8192,
	}
	ResamplesFlag = cli.IntFlag{
		Name:  "resamples",
		Usage: "number of bootstrap resamples",
		Value: 1000,
	}
	ConfidenceFlag = cli.Float64Flag{
		Name:  "confidence",
		Usage: "confidence level of the bootstrap interval",
		Value: 0.95,
	}
	RandomSeedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "seed for the random number generator",
		Value: 42,
	}
	OptimizeFlag = cli.BoolFlag{
		Name:  "optimize",
		Usage: "run the operation fusion/cancellation pass before execution",
	}
	WorkersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "number of worker goroutines for shots and resamples; 0 uses all CPUs",
		Value: 0,
	}
	OutputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "JSON summary file (gzip compressed if the name ends with .gz)",
	}
	DbFlag = cli.StringFlag{
		Name:  "db",
		Usage: "sqlite3 database receiving the numeric summaries",
	}
	AllCasesFlag = cli.BoolFlag{
		Name:  "all",
		Usage: "run the ideal and noisy cases of both families instead of a single case",
	}
	QuietFlag = cli.BoolFlag{
		Name:  "quiet",
		Usage: "disable the console summary table",
	}
)
