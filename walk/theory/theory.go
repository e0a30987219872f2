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

// Package theory computes the exact outcome distributions targeted by walk
// circuits.
package theory

import (
	"math"

	"github.com/0xsoniclabs/galton/walk"
	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/stat/combin"
)

// CacheSize is the number of tables kept by Table.
const CacheSize = 128

type key struct {
	depth  int
	family walk.Family
	rate   float64
}

var cache *lru.Cache[key, walk.TheoreticalTable]

func init() {
	var err error
	cache, err = lru.New[key, walk.TheoreticalTable](CacheSize)
	if err != nil {
		panic(err)
	}
}

// Table returns the exact probability of every outcome 0..depth. The rate is
// only used by the exponential family. Results are memoised; every call
// returns a fresh copy.
func Table(depth int, family walk.Family, rate float64) (walk.TheoreticalTable, error) {
	if err := walk.CheckDepth(depth); err != nil {
		return nil, err
	}
	if family == walk.Binomial {
		rate = 0
	}
	k := key{depth: depth, family: family, rate: rate}
	if t, ok := cache.Get(k); ok {
		return clone(t), nil
	}

	var (
		t   walk.TheoreticalTable
		err error
	)
	switch family {
	case walk.Binomial:
		t = Binomial(depth)
	case walk.Exponential:
		t, err = Exponential(depth, rate)
	default:
		err = errors.Wrapf(walk.ErrInvalidParameter, "unknown distribution family %v", family)
	}
	if err != nil {
		return nil, err
	}
	cache.Add(k, t)
	return clone(t), nil
}

// Binomial returns C(depth, k) / 2^depth for k = 0..depth. The depth must be
// valid.
func Binomial(depth int) walk.TheoreticalTable {
	t := make(walk.TheoreticalTable, depth+1)
	for k := range t {
		t[k] = math.Ldexp(float64(combin.Binomial(depth, k)), -depth)
	}
	return t
}

// Exponential returns the truncated geometric law
// e^{-rate k} (1 - e^{-rate}) / (1 - e^{-rate (depth+1)}) for k = 0..depth.
func Exponential(depth int, rate float64) (walk.TheoreticalTable, error) {
	if err := walk.CheckDepth(depth); err != nil {
		return nil, err
	}
	if err := walk.CheckRate(rate); err != nil {
		return nil, err
	}
	norm := math.Expm1(-rate) / math.Expm1(-rate*float64(depth+1))
	t := make(walk.TheoreticalTable, depth+1)
	for k := range t {
		t[k] = math.Exp(-rate*float64(k)) * norm
	}
	return t, nil
}

func clone(t walk.TheoreticalTable) walk.TheoreticalTable {
	return append(walk.TheoreticalTable(nil), t...)
}
