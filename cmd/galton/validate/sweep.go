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

// SweepCommand evaluates one walk under several noise levels.
var SweepCommand = cli.Command{
	Action:      sweepAction,
	Name:        "sweep",
	Usage:       "evaluate the divergence of a walk for a list of noise levels",
	ArgsUsage:   "",
	Flags:       append(caseFlags(), &utils.NoiseLevelsFlag),
	Description: "The sweep command executes the same walk circuit once per noise level.",
}

func sweepAction(ctx *cli.Context) error {
	cfg, err := utils.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "Sweep")
	log.Infof("Sweep %v noise levels: %v", cfg.Family, cfg.NoiseLevels)

	rg := rand.New(rand.NewSource(cfg.RandomSeed))
	reports, err := experiment.Sweep(rg, newCase(cfg), cfg.NoiseLevels, log)
	if err != nil {
		return err
	}
	return publish(cfg, reports, log)
}
