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

package experiment

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/klauspost/compress/gzip"
)

// SQL statements of the sqlite summary table.
const (
	CreateReportsSQL = `CREATE TABLE IF NOT EXISTS reports (
		run_case TEXT, family TEXT, depth INTEGER, rate REAL, noise REAL, shots INTEGER,
		optimized INTEGER, operations INTEGER, circuit_depth INTEGER,
		kl REAL, ci_lower REAL, ci_upper REAL, confidence REAL, resamples INTEGER,
		bootstrap_mean REAL, empirical_mean REAL, theoretical_mean REAL)`
	InsertReportSQL = `INSERT INTO reports VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// WriteJSON stores the reports as a JSON array. Files whose name ends with
// ".gz" are gzip compressed.
func WriteJSON(filename string, reports []*Report) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", filename)
	}
	var (
		w      io.Writer = file
		closer io.Closer = file
	)
	if strings.HasSuffix(filename, ".gz") {
		zw := gzip.NewWriter(file)
		w = zw
		closer = multiCloser{zw, file}
	}
	buffer := bufio.NewWriter(w)
	defer func() {
		err = errors.Join(err, buffer.Flush(), closer.Close())
	}()

	encoder := json.NewEncoder(buffer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

// ReadJSON loads reports written by WriteJSON.
func ReadJSON(filename string) (reports []*Report, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", filename)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	var r io.Reader = file
	if strings.HasSuffix(filename, ".gz") {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot decompress %s", filename)
		}
		defer zr.Close()
		r = zr
	}
	if err := json.NewDecoder(r).Decode(&reports); err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", filename)
	}
	return reports, nil
}

// multiCloser closes all closers in order.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for _, c := range m {
		err = errors.Join(err, c.Close())
	}
	return err
}

// RenderTable formats the reports as a console table.
func RenderTable(reports []*Report) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"case", "family", "depth", "noise", "shots", "ops", "mean", "target mean", "KL", "CI", "bootstrap mean"})
	for _, r := range reports {
		t.AppendRow(table.Row{
			r.Case,
			r.Family,
			r.Depth,
			r.Noise,
			r.Shots,
			r.Circuit.Total,
			fmt.Sprintf("%.3f", r.EmpiricalMean),
			fmt.Sprintf("%.3f", r.TheoreticalMean),
			fmt.Sprintf("%.6f", r.Analysis.Divergence),
			fmt.Sprintf("[%.6f, %.6f] @ %.0f%%", r.Analysis.Lower, r.Analysis.Upper, 100*r.Analysis.Confidence),
			fmt.Sprintf("%.6f", r.Analysis.BootstrapMean),
		})
	}
	return t.Render()
}

// Rows converts the reports into rows of the sqlite summary table.
func Rows(reports []*Report) [][]any {
	rows := make([][]any, 0, len(reports))
	for _, r := range reports {
		optimized := 0
		if r.Optimized {
			optimized = 1
		}
		rows = append(rows, []any{
			r.Case, r.Family, r.Depth, r.Rate, r.Noise, r.Shots,
			optimized, r.Circuit.Total, r.Circuit.Depth,
			r.Analysis.Divergence, r.Analysis.Lower, r.Analysis.Upper, r.Analysis.Confidence, r.Analysis.Resamples,
			r.Analysis.BootstrapMean, r.EmpiricalMean, r.TheoreticalMean,
		})
	}
	return rows
}
