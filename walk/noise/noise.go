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

// Package noise attaches depolarizing error channels to walk circuits.
package noise

import (
	"math"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/circuit"
	"github.com/cockroachdb/errors"
)

// Inject returns a circuit in which every operation is followed by a
// depolarizing channel of probability p. Rotations are disturbed on their
// decision unit and routing steps on the accumulator. For p = 0 the result is
// identical to the input. Circuits that already carry channels are rejected.
func Inject(c *circuit.Circuit, p float64) (*circuit.Circuit, error) {
	if c == nil {
		return nil, errors.Wrap(walk.ErrInvalidParameter, "missing circuit")
	}
	if err := CheckProbability(p); err != nil {
		return nil, err
	}
	if p == 0 {
		return c, nil
	}
	ops := make([]circuit.Op, 0, 2*c.Len())
	for _, op := range c.Ops() {
		if op.Kind == circuit.Depolarize {
			return nil, errors.Wrapf(walk.ErrInvalidParameter, "circuit already contains error channel %v", op)
		}
		ops = append(ops, op, channel(c, op, p))
	}
	return circuit.New(c.Depth(), ops), nil
}

// CheckProbability validates a noise level.
func CheckProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p >= 1 {
		return errors.Wrapf(walk.ErrInvalidParameter, "noise probability %v is not in [0, 1)", p)
	}
	return nil
}

func channel(c *circuit.Circuit, op circuit.Op, p float64) circuit.Op {
	target := op.Target
	if op.Kind == circuit.Accumulate {
		target = c.Accumulator()
	}
	return circuit.Op{Kind: circuit.Depolarize, Target: target, Prob: p}
}
