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
	"github.com/0xsoniclabs/galton/logger"
	"github.com/0xsoniclabs/galton/utils"
	"github.com/0xsoniclabs/galton/walk/circuit"
	"github.com/0xsoniclabs/galton/walk/noise"
	"github.com/0xsoniclabs/galton/walk/schedule"
	"github.com/urfave/cli/v2"
)

// CircuitCommand exports a walk circuit as OpenQASM.
var CircuitCommand = cli.Command{
	Action:    circuitAction,
	Name:      "circuit",
	Usage:     "print the walk circuit as an OpenQASM 3 program",
	ArgsUsage: "",
	Flags: []cli.Flag{
		&logger.LogLevelFlag,
		&utils.FamilyFlag,
		&utils.DepthFlag,
		&utils.RateFlag,
		&utils.NoiseFlag,
		&utils.OptimizeFlag,
		&utils.OutputFlag,
	},
	Description: "The circuit command writes the walk circuit to the console or, with --output, appends it to a file.",
}

func circuitAction(ctx *cli.Context) error {
	cfg, err := utils.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "Circuit")

	c, err := buildCircuit(cfg)
	if err != nil {
		return err
	}
	stats := c.Stats()
	log.Infof("Circuit of %d operations, depth %d, %v", stats.Total, stats.Depth, stats.Ops)

	printers := utils.NewPrinters()
	defer printers.Close()
	program := c.QASM
	printers.AddPrinterToConsole(cfg.Output != "", program)
	printers.AddPrinterToFile(cfg.Output, program)
	return printers.Print()
}

func buildCircuit(cfg *utils.Config) (*circuit.Circuit, error) {
	s, err := schedule.Generate(cfg.Depth, cfg.Family, cfg.ExponentialRate())
	if err != nil {
		return nil, err
	}
	c, err := circuit.Build(s, cfg.Depth)
	if err != nil {
		return nil, err
	}
	if c, err = noise.Inject(c, cfg.Noise); err != nil {
		return nil, err
	}
	if cfg.Optimize {
		c = circuit.Optimize(c)
	}
	return c, nil
}
