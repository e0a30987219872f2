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

import "math"

// Optimize returns a circuit with fewer operations that induces the same
// outcome distribution. Every rewrite is an identity of the execution model:
//
//   - Before the k-th routing step the accumulator holds at most k-1, so
//     rotations conditioned on larger values never fire. They are dropped
//     together with their error channel, which only acts on fired operations.
//   - Before the first routing step the accumulator is zero; rotations
//     conditioned on zero become unconditional.
//   - Ry(a) followed by Ry(b) on the same unit under the same condition is
//     Ry(a+b), provided no error channel sits between them.
//   - A noise-free Ry by a multiple of 2π changes the unit by a global phase
//     only and is removed.
//
// The input circuit is not modified.
func Optimize(c *Circuit) *Circuit {
	ops := dropUnreachable(c.ops)
	ops = fuseRotations(ops)
	ops = dropIdentities(ops)
	return &Circuit{depth: c.depth, ops: ops}
}

// dropUnreachable removes conditional rotations that can never fire and
// resolves the ones that always fire.
func dropUnreachable(in []Op) []Op {
	out := make([]Op, 0, len(in))
	routed := 0
	for i := 0; i < len(in); i++ {
		op := in[i]
		if op.Kind == ConditionalRotateY {
			if op.Condition > routed {
				// skip the attached error channel as well
				if i+1 < len(in) && in[i+1].Kind == Depolarize {
					i++
				}
				continue
			}
			if routed == 0 {
				op.Kind = RotateY
				op.Condition = 0
			}
		}
		if op.Kind == Accumulate {
			routed++
		}
		out = append(out, op)
	}
	return out
}

// fuseRotations merges adjacent noise-free rotations of the same unit.
func fuseRotations(in []Op) []Op {
	out := make([]Op, 0, len(in))
	for _, op := range in {
		if n := len(out); n > 0 && fusable(out[n-1], op) {
			out[n-1].Angle += op.Angle
			continue
		}
		out = append(out, op)
	}
	return out
}

func fusable(prev, next Op) bool {
	if prev.Kind != next.Kind || prev.Target != next.Target {
		return false
	}
	switch prev.Kind {
	case RotateY:
		return true
	case ConditionalRotateY:
		return prev.Condition == next.Condition
	}
	return false
}

// dropIdentities removes noise-free rotations by multiples of 2π.
func dropIdentities(in []Op) []Op {
	out := make([]Op, 0, len(in))
	for i, op := range in {
		rotation := op.Kind == RotateY || op.Kind == ConditionalRotateY
		noisy := i+1 < len(in) && in[i+1].Kind == Depolarize
		if rotation && !noisy && math.Mod(op.Angle, 2*math.Pi) == 0 {
			continue
		}
		out = append(out, op)
	}
	return out
}
