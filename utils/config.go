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
	"math"

	"github.com/0xsoniclabs/galton/logger"
	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/noise"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// Config summarises the command line options of a walk validation command.
type Config struct {
	AppName     string
	CommandName string

	Family      walk.Family // target distribution family
	Depth       int         // number of walk layers
	Rate        float64     // exponential decay rate; 0 derives it from Depth
	Noise       float64     // depolarizing error probability of a single run
	NoiseLevels []float64   // error probabilities evaluated by a sweep
	Shots       int         // number of circuit executions
	Resamples   int         // number of bootstrap resamples
	Confidence  float64     // confidence level of the bootstrap interval
	RandomSeed  int64       // seed of the random number generator
	Optimize    bool        // run the optimisation pass before execution
	AllCases    bool        // run the default cases of both families
	Workers     int         // number of worker goroutines
	Output      string      // JSON summary file
	Db          string      // sqlite3 summary database
	Quiet       bool        // disable the console table
	LogLevel    string      // level of the logger
}

// NewConfig creates and validates the configuration of the command bound to ctx.
// Options the command does not declare keep their default values.
func NewConfig(ctx *cli.Context) (*Config, error) {
	cfg := &Config{
		AppName:     ctx.App.HelpName,
		Depth:       getFlagValue(ctx, DepthFlag).(int),
		Rate:        getFlagValue(ctx, RateFlag).(float64),
		Noise:       getFlagValue(ctx, NoiseFlag).(float64),
		NoiseLevels: getFlagValue(ctx, NoiseLevelsFlag).([]float64),
		Shots:       getFlagValue(ctx, ShotsFlag).(int),
		Resamples:   getFlagValue(ctx, ResamplesFlag).(int),
		Confidence:  getFlagValue(ctx, ConfidenceFlag).(float64),
		RandomSeed:  getFlagValue(ctx, RandomSeedFlag).(int64),
		Optimize:    getFlagValue(ctx, OptimizeFlag).(bool),
		AllCases:    getFlagValue(ctx, AllCasesFlag).(bool),
		Workers:     getFlagValue(ctx, WorkersFlag).(int),
		Output:      getFlagValue(ctx, OutputFlag).(string),
		Db:          getFlagValue(ctx, DbFlag).(string),
		Quiet:       getFlagValue(ctx, QuietFlag).(bool),
		LogLevel:    getFlagValue(ctx, logger.LogLevelFlag).(string),
	}
	if ctx.Command != nil {
		cfg.CommandName = ctx.Command.Name
	}
	family, err := walk.ParseFamily(getFlagValue(ctx, FamilyFlag).(string))
	if err != nil {
		return nil, err
	}
	cfg.Family = family
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges of all options.
func (cfg *Config) Validate() error {
	if err := walk.CheckDepth(cfg.Depth); err != nil {
		return err
	}
	if cfg.Family == walk.Exponential && cfg.Rate != 0 {
		if err := walk.CheckRate(cfg.Rate); err != nil {
			return err
		}
	}
	if math.IsNaN(cfg.Rate) || cfg.Rate < 0 {
		return errors.Wrapf(walk.ErrInvalidParameter, "rate %v must not be negative", cfg.Rate)
	}
	if err := noise.CheckProbability(cfg.Noise); err != nil {
		return err
	}
	for _, p := range cfg.NoiseLevels {
		if err := noise.CheckProbability(p); err != nil {
			return err
		}
	}
	if cfg.Shots < 1 {
		return errors.Wrapf(walk.ErrInvalidParameter, "number of shots must be positive, got %d", cfg.Shots)
	}
	if cfg.Resamples < 1 {
		return errors.Wrapf(walk.ErrInvalidParameter, "number of resamples must be positive, got %d", cfg.Resamples)
	}
	if !(cfg.Confidence > 0 && cfg.Confidence < 1) {
		return errors.Wrapf(walk.ErrInvalidParameter, "confidence level %v is not in (0, 1)", cfg.Confidence)
	}
	if cfg.Workers < 0 {
		return errors.Wrapf(walk.ErrInvalidParameter, "number of workers must not be negative, got %d", cfg.Workers)
	}
	return nil
}

// ExponentialRate returns the rate the exponential family runs with.
func (cfg *Config) ExponentialRate() float64 {
	if cfg.Rate == 0 {
		return walk.DefaultRate(cfg.Depth)
	}
	return cfg.Rate
}

// getFlagValue returns the value of a flag declared by the current command,
// or the default value of the flag otherwise.
func getFlagValue(ctx *cli.Context, flag interface{}) interface{} {
	if ctx.Command != nil {
		for _, cmdFlag := range ctx.Command.Flags {
			switch f := flag.(type) {
			case cli.IntFlag:
				if cmdFlag.Names()[0] == f.Name {
					return ctx.Int(f.Name)
				}
			case cli.Int64Flag:
				if cmdFlag.Names()[0] == f.Name {
					return ctx.Int64(f.Name)
				}
			case cli.Float64Flag:
				if cmdFlag.Names()[0] == f.Name {
					return ctx.Float64(f.Name)
				}
			case cli.StringFlag:
				if cmdFlag.Names()[0] == f.Name {
					return ctx.String(f.Name)
				}
			case cli.BoolFlag:
				if cmdFlag.Names()[0] == f.Name {
					return ctx.Bool(f.Name)
				}
			case cli.Float64SliceFlag:
				if cmdFlag.Names()[0] == f.Name {
					return ctx.Float64Slice(f.Name)
				}
			}
		}
	}

	switch f := flag.(type) {
	case cli.IntFlag:
		return f.Value
	case cli.Int64Flag:
		return f.Value
	case cli.Float64Flag:
		return f.Value
	case cli.StringFlag:
		return f.Value
	case cli.BoolFlag:
		return f.Value
	case cli.Float64SliceFlag:
		if f.Value == nil {
			return []float64{}
		}
		return f.Value.Value()
	}
	return nil
}
