// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package features holds the precomputed TF-IDF feature matrix. Rows
// are aligned with catalog rows; the matrix is immutable after load and
// shared without locking.
package features

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when a query vector's length does
// not match the matrix column count.
var ErrDimensionMismatch = errors.New("features: dimension mismatch")

// Vector is one sparse row: parallel index/value slices sorted by index.
type Vector struct {
	Indices []int
	Values  []float64
}

// Matrix is a sparse row-major matrix with precomputed row norms.
type Matrix struct {
	rows  []Vector
	norms []float64
	cols  int
}

// NewMatrix builds a matrix from sparse rows, validating that every
// index is within [0, cols).
func NewMatrix(rows []Vector, cols int) (*Matrix, error) {
	if cols <= 0 {
		return nil, fmt.Errorf("features: column count must be positive, got %d", cols)
	}
	norms := make([]float64, len(rows))
	for r, row := range rows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("features: row %d has %d indices but %d values",
				r, len(row.Indices), len(row.Values))
		}
		sum := 0.0
		for k, idx := range row.Indices {
			if idx < 0 || idx >= cols {
				return nil, fmt.Errorf("features: row %d index %d out of range [0,%d)", r, idx, cols)
			}
			sum += row.Values[k] * row.Values[k]
		}
		norms[r] = math.Sqrt(sum)
	}
	return &Matrix{rows: rows, norms: norms, cols: cols}, nil
}

// FromDense builds a matrix from dense rows. Intended for tests and
// small fixtures; zero entries are dropped.
func FromDense(dense [][]float64) (*Matrix, error) {
	if len(dense) == 0 {
		return nil, errors.New("features: no rows")
	}
	cols := len(dense[0])
	rows := make([]Vector, len(dense))
	for r, d := range dense {
		if len(d) != cols {
			return nil, fmt.Errorf("features: row %d has %d columns, want %d", r, len(d), cols)
		}
		var v Vector
		for i, x := range d {
			if x != 0 {
				v.Indices = append(v.Indices, i)
				v.Values = append(v.Values, x)
			}
		}
		rows[r] = v
	}
	return NewMatrix(rows, cols)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.rows) }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Centroid returns the dense column-wise mean of the given rows. An
// empty row set yields nil.
func (m *Matrix) Centroid(rowIdx []int) []float64 {
	if len(rowIdx) == 0 {
		return nil
	}
	out := make([]float64, m.cols)
	for _, r := range rowIdx {
		row := m.rows[r]
		for k, idx := range row.Indices {
			out[idx] += row.Values[k]
		}
	}
	inv := 1.0 / float64(len(rowIdx))
	for i := range out {
		out[i] *= inv
	}
	return out
}

// CosineAll returns the cosine similarity of query against every row,
// in row order. Similarity involving a zero vector is 0.
func (m *Matrix) CosineAll(query []float64) ([]float64, error) {
	if len(query) != m.cols {
		return nil, fmt.Errorf("%w: query has %d dimensions, matrix has %d",
			ErrDimensionMismatch, len(query), m.cols)
	}

	qnorm := 0.0
	for _, x := range query {
		qnorm += x * x
	}
	qnorm = math.Sqrt(qnorm)

	scores := make([]float64, len(m.rows))
	if qnorm == 0 {
		return scores, nil
	}

	for r, row := range m.rows {
		if m.norms[r] == 0 {
			continue
		}
		dot := 0.0
		for k, idx := range row.Indices {
			dot += row.Values[k] * query[idx]
		}
		scores[r] = dot / (m.norms[r] * qnorm)
	}
	return scores, nil
}
