/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package frame holds the in-memory tabular structure the pipelines work on:
// named columns over positionally aligned rows. Row batches and frames are
// transient, created per pipeline invocation and discarded after the write.
package frame

import "sort"

// Row is a single record keyed by column name. Values are warehouse-native
// scalars (string, int64, float64, bool, time.Time, civil.Date, civil.Time)
// or nil.
type Row = map[string]any

// Frame is an ordered set of columns over a slice of rows.
type Frame struct {
	cols []string
	rows []Row
}

// New builds a frame from a record batch. The column set is the union of the
// keys of every record, sorted for determinism; rows keep their input order.
func New(records []Row) *Frame {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	return &Frame{cols: cols, rows: records}
}

// Empty returns a frame with no columns and no rows.
func Empty() *Frame {
	return &Frame{}
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) IsEmpty() bool {
	return len(f.rows) == 0
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.cols {
		if c == name {
			return true
		}
	}
	return false
}

// Rows exposes the underlying rows. Mutating a returned row mutates the
// frame; transformers rely on this for derived-column computation.
func (f *Frame) Rows() []Row {
	return f.rows
}

// Value returns the named cell of row i, or nil when the column is absent.
func (f *Frame) Value(i int, col string) any {
	if i < 0 || i >= len(f.rows) {
		return nil
	}
	return f.rows[i][col]
}

// SetColumn computes a derived column row-wise. The function receives each
// row (including columns derived by earlier calls) and its return value is
// stored under name. The column is appended to the order if new.
func (f *Frame) SetColumn(name string, fn func(Row) any) {
	for _, r := range f.rows {
		r[name] = fn(r)
	}
	if !f.HasColumn(name) {
		f.cols = append(f.cols, name)
	}
}

// EnsureColumns registers column names that were written directly onto rows,
// appending any that are new to the column order.
func (f *Frame) EnsureColumns(names ...string) {
	for _, n := range names {
		if !f.HasColumn(n) {
			f.cols = append(f.cols, n)
		}
	}
}

// Drop removes the named columns from every row and from the column order.
// Dropping an absent column is a no-op.
func (f *Frame) Drop(names ...string) {
	dropped := make(map[string]struct{}, len(names))
	for _, n := range names {
		dropped[n] = struct{}{}
	}

	kept := f.cols[:0]
	for _, c := range f.cols {
		if _, ok := dropped[c]; !ok {
			kept = append(kept, c)
		}
	}
	f.cols = kept

	for _, r := range f.rows {
		for n := range dropped {
			delete(r, n)
		}
	}
}

// Rename changes a column's name in every row, preserving its position.
func (f *Frame) Rename(from, to string) {
	for i, c := range f.cols {
		if c == from {
			f.cols[i] = to
		}
	}
	for _, r := range f.rows {
		if v, ok := r[from]; ok {
			delete(r, from)
			r[to] = v
		}
	}
}
