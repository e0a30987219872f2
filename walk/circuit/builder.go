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

package circuit

import (
	"github.com/0xsoniclabs/galton/walk"
	"github.com/0xsoniclabs/galton/walk/schedule"
	"github.com/cockroachdb/errors"
)

// Build assembles the walk circuit of a bias schedule. Every layer rotates
// its decision unit by the bias angle and routes the measured decision into
// the accumulator, so the accumulator holds the walk position after each
// layer. Position dependent schedules emit one conditional rotation per
// position; the accumulator value selects the one that fires.
func Build(s *schedule.Schedule, depth int) (*Circuit, error) {
	if s == nil {
		return nil, errors.Wrap(walk.ErrInvalidParameter, "missing bias schedule")
	}
	if err := walk.CheckDepth(depth); err != nil {
		return nil, err
	}
	if s.Depth() != depth {
		return nil, errors.Wrapf(walk.ErrInvalidParameter, "schedule depth %d does not match circuit depth %d", s.Depth(), depth)
	}

	ops := make([]Op, 0, opCount(s))
	for layer := 0; layer < depth; layer++ {
		if s.PositionDependent() {
			for position := 0; position <= depth; position++ {
				ops = append(ops, Op{
					Kind:      ConditionalRotateY,
					Target:    layer,
					Angle:     s.Angle(layer, position),
					Condition: position,
				})
			}
		} else {
			ops = append(ops, Op{Kind: RotateY, Target: layer, Angle: s.Angle(layer, 0)})
		}
		ops = append(ops, Op{Kind: Accumulate, Target: layer})
	}
	return &Circuit{depth: depth, ops: ops}, nil
}

func opCount(s *schedule.Schedule) int {
	perLayer := 2
	if s.PositionDependent() {
		perLayer = s.Depth() + 2
	}
	return perLayer * s.Depth()
}
