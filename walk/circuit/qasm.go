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
	"strings"
)

// QASM renders the circuit as an OpenQASM 3 program. Decision units become
// qubits and the accumulator becomes a classical unsigned integer updated by
// mid-circuit measurements. Error channels have no OpenQASM counterpart and
// are emitted as comments.
func (c *Circuit) QASM() string {
	var b strings.Builder
	b.WriteString("OPENQASM 3.0;\n")
	b.WriteString("include \"stdgates.inc\";\n\n")
	fmt.Fprintf(&b, "qubit[%d] q;\n", c.depth)
	fmt.Fprintf(&b, "bit[%d] d;\n", c.depth)
	fmt.Fprintf(&b, "uint[%d] acc = 0;\n\n", c.RoutingBits())
	for _, op := range c.ops {
		switch op.Kind {
		case RotateY:
			fmt.Fprintf(&b, "ry(%s) q[%d];\n", formatAngle(op.Angle), op.Target)
		case ConditionalRotateY:
			fmt.Fprintf(&b, "if (acc == %d) { ry(%s) q[%d]; }\n", op.Condition, formatAngle(op.Angle), op.Target)
		case Accumulate:
			fmt.Fprintf(&b, "d[%d] = measure q[%d];\n", op.Target, op.Target)
			fmt.Fprintf(&b, "if (d[%d]) { acc += 1; }\n", op.Target)
		case Depolarize:
			if op.Target == c.Accumulator() {
				fmt.Fprintf(&b, "// depolarize(%g) acc\n", op.Prob)
			} else {
				fmt.Fprintf(&b, "// depolarize(%g) q[%d]\n", op.Prob, op.Target)
			}
		}
	}
	return b.String()
}

func formatAngle(theta float64) string {
	return fmt.Sprintf("%.15g", theta)
}
