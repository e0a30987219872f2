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

package main

import (
	"fmt"
	"os"

	"github.com/0xsoniclabs/galton/cmd/galton/validate"
	"github.com/urfave/cli/v2"
)

var galtonApp = &cli.App{
	Name:      "Galton quantum walk validation",
	HelpName:  "galton",
	Usage:     "synthesise binomial and exponential distributions with quantum walks and validate them",
	Copyright: "(c) 2025 Sonic Labs",
	Commands: []*cli.Command{
		&validate.RunCommand,
		&validate.SweepCommand,
		&validate.CircuitCommand,
	},
}

func main() {
	if err := galtonApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
