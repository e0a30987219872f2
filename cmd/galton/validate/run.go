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

package validate

import (
	"math/rand"

	"github.com/0xsoniclabs/galton/logger"
	"github.com/0xsoniclabs/galton/utils"
	"github.com/0xsoniclabs/galton/walk/experiment"
	"github.com/urfave/cli/v2"
)

// RunCommand executes validation cases.
var RunCommand = cli.Command{
	Action:    runAction,
	Name:      "run",
	Usage:     "sample a walk circuit and compare it against its target distribution",
	ArgsUsage: "",
	Flags: append(caseFlags(),
		&utils.NoiseFlag,
		&utils.AllCasesFlag,
	),
	Description: "The run command builds the walk circuit of the configured family, executes it " +
		"with optional depolarizing noise and reports the KL divergence to the exact target " +
		"with a bootstrap confidence interval. With --all the ideal and noisy cases of both " +
		"families are evaluated.",
}

func runAction(ctx *cli.Context) error {
	cfg, err := utils.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "Run")

	cases := []experiment.Case{newCase(cfg)}
	if cfg.AllCases {
		cases = experiment.DefaultCases()
		for i := range cases {
			cases[i].Depth = cfg.Depth
			cases[i].Rate = cfg.Rate
			cases[i].Shots = cfg.Shots
			cases[i].Resamples = cfg.Resamples
			cases[i].Confidence = cfg.Confidence
			cases[i].Optimize = cfg.Optimize
			cases[i].Workers = cfg.Workers
			if cfg.Noise > 0 && cases[i].Noise > 0 {
				cases[i].Noise = cfg.Noise
			}
		}
	}

	rg := rand.New(rand.NewSource(cfg.RandomSeed))
	reports := make([]*experiment.Report, 0, len(cases))
	for _, c := range cases {
		r, err := experiment.Run(rg, c, log)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}
	return publish(cfg, reports, log)
}
