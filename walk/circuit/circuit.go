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
	"fmt"
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// Kind classifies the operations of a walk circuit.
type Kind uint8

const (
	RotateY            Kind = iota // Ry(angle) on a decision unit
	ConditionalRotateY             // Ry(angle) on a decision unit if the accumulator holds Condition
	Accumulate                     // measure a decision unit and add its bit to the accumulator
	Depolarize                     // depolarizing channel with probability Prob on Target
	numKinds
)

var kindNames = [numKinds]string{"ry", "cond_ry", "accumulate", "depolarize"}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Op is a single operation of a circuit.
type Op struct {
	Kind      Kind
	Target    int     // register unit the operation acts on
	Angle     float64 // rotation angle of RotateY and ConditionalRotateY
	Condition int     // accumulator value enabling a ConditionalRotateY
	Prob      float64 // error probability of Depolarize
}

func (o Op) String() string {
	switch o.Kind {
	case RotateY:
		return fmt.Sprintf("ry(%.6f) u%d", o.Angle, o.Target)
	case ConditionalRotateY:
		return fmt.Sprintf("if(acc==%d) ry(%.6f) u%d", o.Condition, o.Angle, o.Target)
	case Accumulate:
		return fmt.Sprintf("acc += measure u%d", o.Target)
	case Depolarize:
		return fmt.Sprintf("depolarize(%.6f) u%d", o.Prob, o.Target)
	}
	return o.Kind.String()
}

// Circuit is an immutable walk circuit. Its register consists of one decision
// unit per layer (units 0..depth-1) followed by the accumulator unit (unit
// depth) that routes the decisions of all layers into the walk position.
type Circuit struct {
	depth int
	ops   []Op
}

// New creates a circuit over a register for the given depth. The operations
// are copied.
func New(depth int, ops []Op) *Circuit {
	return &Circuit{depth: depth, ops: append([]Op(nil), ops...)}
}

// Depth returns the number of walk layers.
func (c *Circuit) Depth() int {
	return c.depth
}

// Units returns the declared register size.
func (c *Circuit) Units() int {
	return c.depth + 1
}

// Accumulator returns the register index of the accumulator unit.
func (c *Circuit) Accumulator() int {
	return c.depth
}

// RoutingBits returns the number of qubits needed to hold the accumulator.
func (c *Circuit) RoutingBits() int {
	return bits.Len(uint(c.depth))
}

// Len returns the number of operations.
func (c *Circuit) Len() int {
	return len(c.ops)
}

// Op returns the i-th operation.
func (c *Circuit) Op(i int) Op {
	return c.ops[i]
}

// Ops returns a copy of all operations.
func (c *Circuit) Ops() []Op {
	return append([]Op(nil), c.ops...)
}

// Decode maps the recorded decision bits of one shot to the outcome index,
// the number of right branches taken.
func (c *Circuit) Decode(decisions uint64) int {
	mask := uint64(1)<<uint(c.depth) - 1
	return bits.OnesCount64(decisions & mask)
}

// Equal reports whether two circuits are structurally identical.
func (c *Circuit) Equal(other *Circuit) bool {
	if c.depth != other.depth || len(c.ops) != len(other.ops) {
		return false
	}
	for i := range c.ops {
		if c.ops[i] != other.ops[i] {
			return false
		}
	}
	return true
}

// Validate checks that all operations refer to units of the declared register
// and carry meaningful parameters.
func (c *Circuit) Validate() error {
	if c.depth < 1 || c.depth > 63 {
		return errors.Newf("register depth %d is not supported", c.depth)
	}
	routed := make([]bool, c.depth)
	for i, op := range c.ops {
		if op.Target < 0 || op.Target >= c.Units() {
			return errors.Newf("operation %d (%v) references unit %d outside the register of %d units", i, op, op.Target, c.Units())
		}
		switch op.Kind {
		case RotateY, ConditionalRotateY:
			if op.Target == c.Accumulator() {
				return errors.Newf("operation %d (%v) rotates the accumulator", i, op)
			}
			if math.IsNaN(op.Angle) || math.IsInf(op.Angle, 0) {
				return errors.Newf("operation %d has invalid angle %v", i, op.Angle)
			}
			if op.Kind == ConditionalRotateY && (op.Condition < 0 || op.Condition > c.depth) {
				return errors.Newf("operation %d conditions on accumulator value %d outside [0, %d]", i, op.Condition, c.depth)
			}
		case Accumulate:
			if op.Target == c.Accumulator() {
				return errors.Newf("operation %d (%v) accumulates the accumulator", i, op)
			}
			if routed[op.Target] {
				return errors.Newf("operation %d (%v) accumulates unit %d a second time", i, op, op.Target)
			}
			routed[op.Target] = true
		case Depolarize:
			if i == 0 || c.ops[i-1].Kind == Depolarize {
				return errors.Newf("operation %d is an error channel without a preceding operation", i)
			}
			if op.Target == c.Accumulator() && c.ops[i-1].Kind != Accumulate {
				return errors.Newf("operation %d disturbs the accumulator after %v", i, c.ops[i-1])
			}
			if !(op.Prob >= 0 && op.Prob < 1) {
				return errors.Newf("operation %d has invalid error probability %v", i, op.Prob)
			}
		default:
			return errors.Newf("operation %d has unknown kind %v", i, op.Kind)
		}
	}
	return nil
}

// Stats summarises a circuit by operation counts and layered depth.
type Stats struct {
	Ops   map[string]int `json:"ops"`
	Total int            `json:"total"`
	Depth int            `json:"depth"`
}

// Stats counts the operations per kind and computes the circuit depth, the
// length of the longest chain of operations over shared units. Conditional
// rotations and accumulations also occupy the accumulator.
func (c *Circuit) Stats() Stats {
	s := Stats{Ops: map[string]int{}, Total: len(c.ops)}
	level := make([]int, c.Units())
	for _, op := range c.ops {
		s.Ops[op.Kind.String()]++
		if op.Target < 0 || op.Target >= len(level) {
			continue
		}
		units := []int{op.Target}
		if op.Kind == ConditionalRotateY || op.Kind == Accumulate {
			units = append(units, c.Accumulator())
		}
		next := 0
		for _, u := range units {
			next = max(next, level[u]+1)
		}
		for _, u := range units {
			level[u] = next
		}
		s.Depth = max(s.Depth, next)
	}
	return s
}
