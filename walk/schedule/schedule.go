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

// Package schedule derives the per-layer bias angles of a walk.
//
// A bias angle θ rotates a decision unit so that the right branch is taken
// with probability sin²(θ/2).
package schedule

import (
	"math"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/cockroachdb/errors"
)

// Schedule is the immutable bias schedule of a walk. Binomial schedules hold
// one angle per layer; exponential schedules hold one angle per layer and
// walk position.
type Schedule struct {
	family walk.Family
	depth  int
	rate   float64
	angles [][]float64 // layer x position; a single column if position independent
}

// Generate derives the bias schedule for a walk of the given depth and family.
// The rate is only used by the exponential family.
func Generate(depth int, family walk.Family, rate float64) (*Schedule, error) {
	if err := walk.CheckDepth(depth); err != nil {
		return nil, err
	}
	var (
		angles [][]float64
		err    error
	)
	switch family {
	case walk.Binomial:
		angles = binomialAngles(depth)
		rate = 0
	case walk.Exponential:
		if err := walk.CheckRate(rate); err != nil {
			return nil, err
		}
		angles, err = exponentialAngles(depth, rate)
	default:
		return nil, errors.Wrapf(walk.ErrInvalidParameter, "unknown distribution family %v", family)
	}
	if err != nil {
		return nil, err
	}
	for i, row := range angles {
		for j, theta := range row {
			if !(theta >= 0 && theta <= math.Pi) {
				return nil, errors.Wrapf(walk.ErrInvalidParameter, "derived angle %v of layer %d, position %d is outside [0, pi]", theta, i, j)
			}
		}
	}
	return &Schedule{family: family, depth: depth, rate: rate, angles: angles}, nil
}

// binomialAngles gives every layer an even split of the walker.
func binomialAngles(depth int) [][]float64 {
	angles := make([][]float64, depth)
	for i := 0; i < depth; i++ {
		angles[i] = []float64{math.Pi / 2}
	}
	return angles
}

// exponentialAngles derives the angles of a walk whose final position k has
// probability proportional to exp(-rate*k).
//
// A walker that is still at position 0 before layer i leaves it with the
// hazard h_i = w_k / C_k for k = depth-i, where w is the target weight and C
// its cumulative sum. Once it has left position 0 it moves right in every
// remaining layer, so it ends at depth-i. The hazard grows with the layer
// index. Positions beyond the layer index are unreachable and keep angle 0.
func exponentialAngles(depth int, rate float64) ([][]float64, error) {
	angles := make([][]float64, depth)
	for i := 0; i < depth; i++ {
		h := hazard(depth-i, rate)
		if math.IsNaN(h) || h < 0 || h > 1 {
			return nil, errors.Wrapf(walk.ErrInvalidParameter, "hazard %v of layer %d is not a probability", h, i)
		}
		row := make([]float64, depth+1)
		row[0] = AngleFor(h)
		for j := 1; j <= i; j++ {
			row[j] = math.Pi
		}
		angles[i] = row
	}
	return angles, nil
}

// hazard computes w_k / C_k = e^{-rate k} (1 - e^{-rate}) / (1 - e^{-rate (k+1)}).
func hazard(k int, rate float64) float64 {
	return math.Exp(-rate*float64(k)) * math.Expm1(-rate) / math.Expm1(-rate*float64(k+1))
}

// AngleFor returns the rotation angle whose right-branch probability is p.
func AngleFor(p float64) float64 {
	return 2 * math.Asin(math.Sqrt(p))
}

// RightProbability returns the probability of taking the right branch after
// a rotation by theta.
func RightProbability(theta float64) float64 {
	s := math.Sin(theta / 2)
	return s * s
}

// Family returns the distribution family of the schedule.
func (s *Schedule) Family() walk.Family {
	return s.family
}

// Depth returns the number of layers.
func (s *Schedule) Depth() int {
	return s.depth
}

// Rate returns the exponential decay rate; zero for other families.
func (s *Schedule) Rate() float64 {
	return s.rate
}

// PositionDependent reports whether angles differ per walk position.
func (s *Schedule) PositionDependent() bool {
	return s.family == walk.Exponential
}

// Angle returns the bias angle applied in the given layer when the walker
// is at the given position.
func (s *Schedule) Angle(layer, position int) float64 {
	row := s.angles[layer]
	if len(row) == 1 {
		return row[0]
	}
	return row[position]
}

// Layer returns a copy of the angles of one layer.
func (s *Schedule) Layer(layer int) []float64 {
	return append([]float64(nil), s.angles[layer]...)
}
