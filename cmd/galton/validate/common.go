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
	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/experiment"
	"github.com/urfave/cli/v2"
)

// caseFlags are accepted by all commands executing walks.
func caseFlags() []cli.Flag {
	return []cli.Flag{
		&logger.LogLevelFlag,
		&utils.FamilyFlag,
		&utils.DepthFlag,
		&utils.RateFlag,
		&utils.ShotsFlag,
		&utils.ResamplesFlag,
		&utils.ConfidenceFlag,
		&utils.RandomSeedFlag,
		&utils.OptimizeFlag,
		&utils.WorkersFlag,
		&utils.OutputFlag,
		&utils.DbFlag,
		&utils.QuietFlag,
	}
}

// newCase derives the configured validation case.
func newCase(cfg *utils.Config) experiment.Case {
	c := experiment.Case{
		Family:     cfg.Family,
		Depth:      cfg.Depth,
		Noise:      cfg.Noise,
		Shots:      cfg.Shots,
		Resamples:  cfg.Resamples,
		Confidence: cfg.Confidence,
		Optimize:   cfg.Optimize,
		Workers:    cfg.Workers,
	}
	if cfg.Family == walk.Exponential {
		c.Rate = cfg.ExponentialRate()
	}
	c.Name = c.Family.String()
	return c
}

// publish hands the reports to all configured outputs.
func publish(cfg *utils.Config, reports []*experiment.Report, log logger.Logger) error {
	if cfg.Output != "" {
		log.Noticef("Write summary to %v", cfg.Output)
		if err := experiment.WriteJSON(cfg.Output, reports); err != nil {
			return err
		}
	}

	printers := utils.NewPrinters()
	defer printers.Close()
	printers.AddPrinterToConsole(cfg.Quiet, func() string {
		return experiment.RenderTable(reports)
	})
	if cfg.Db != "" {
		log.Noticef("Insert %d rows into %v", len(reports), cfg.Db)
		if _, err := printers.AddPrinterToSqlite3(cfg.Db, experiment.CreateReportsSQL, experiment.InsertReportSQL, func() [][]any {
			return experiment.Rows(reports)
		}); err != nil {
			return err
		}
	}
	return printers.Print()
}
