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

package walk

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// MaxDepth is the largest supported number of walk layers. Decision bits of
// one shot fit into a uint64 and binomial coefficients stay exact.
const MaxDepth = 48

// Error classes of the walk pipeline. Failures wrap one of these and are
// classified with errors.Is.
var (
	// ErrInvalidParameter reports malformed depth, family, noise or rate inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrExecution reports an invalid shot count or an inconsistent circuit.
	ErrExecution = errors.New("execution error")
	// ErrAnalysis reports mismatched table domains or invalid resampling settings.
	ErrAnalysis = errors.New("analysis error")
)

// Family is the target distribution family of a walk.
type Family int

const (
	Binomial    Family = iota // symmetric walk, Binomial(L, 1/2)
	Exponential               // truncated geometric law over 0..L
)

func (f Family) String() string {
	switch f {
	case Binomial:
		return "binomial"
	case Exponential:
		return "exponential"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f == Binomial || f == Exponential
}

// ParseFamily converts a family name. "normal" is accepted as an alias of
// the binomial family whose shape approaches a Gaussian.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binomial", "normal", "gaussian":
		return Binomial, nil
	case "exponential", "geometric":
		return Exponential, nil
	}
	return 0, errors.Wrapf(ErrInvalidParameter, "unknown distribution family %q", name)
}

// CheckDepth validates the number of layers.
func CheckDepth(depth int) error {
	if depth < 1 || depth > MaxDepth {
		return errors.Wrapf(ErrInvalidParameter, "depth %d is not in [1, %d]", depth, MaxDepth)
	}
	return nil
}

// CheckRate validates the decay rate of the exponential family.
func CheckRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "exponential rate %v must be positive and finite", rate)
	}
	return nil
}

// DefaultRate is the exponential decay rate used when none is given. The
// untruncated geometric law then has mean depth/4.
func DefaultRate(depth int) float64 {
	return math.Log1p(4 / float64(depth))
}
