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

// Package validate checks raw record batches at the warehouse-read boundary
// before any transformation runs.
package validate

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
)

// Kind is the coarse value type a column is allowed to carry.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBool
	KindTimestamp
	KindDate
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// ErrValidation reports missing or mistyped columns in a record batch. It is
// fatal to the pipeline run and never retried.
type ErrValidation struct {
	Msg string
	Err error
}

func (e *ErrValidation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("validation error: %s", e.Msg)
}

func (e *ErrValidation) Unwrap() error {
	return e.Err
}

// Validator turns record batches into frames, failing fast on shape problems.
type Validator struct {
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Validator {
	return &Validator{logger: logger}
}

// Frame validates a record batch against the required column list and the
// optional per-column allowed-type map.
//
// An empty batch is not an error: it yields an empty frame and the caller
// must skip transformation and the write. A required column missing from
// every record, or a present column whose values are outside the allowed
// kinds, fails with ErrValidation naming the offender.
func (v *Validator) Frame(records []frame.Row, required []string, types map[string][]Kind, process string) (*frame.Frame, error) {
	if len(records) == 0 {
		v.logger.Infow("no data received", "process", process)
		return frame.Empty(), nil
	}

	f := frame.New(records)
	v.logger.Infow("validating record batch", "process", process, "rows", f.Len(), "columns", len(f.Columns()))

	var missing []string
	for _, col := range required {
		if !f.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &ErrValidation{Msg: fmt.Sprintf("missing required columns: [%s]", strings.Join(missing, ", "))}
	}

	for col, allowed := range types {
		if !f.HasColumn(col) {
			continue
		}
		val, ok := firstNonNil(f, col)
		if !ok {
			// A column of all NULLs carries no type information.
			continue
		}
		k, known := kindOf(val)
		if !known {
			return nil, &ErrValidation{Msg: fmt.Sprintf("column %s has unsupported value type %T", col, val)}
		}
		if !kindAllowed(k, allowed) {
			return nil, &ErrValidation{Msg: fmt.Sprintf("column %s has incorrect type: %s", col, k)}
		}
	}

	return f, nil
}

func firstNonNil(f *frame.Frame, col string) (any, bool) {
	for _, r := range f.Rows() {
		if v, ok := r[col]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func kindOf(v any) (Kind, bool) {
	switch v.(type) {
	case int, int32, int64:
		return KindInt, true
	case float32, float64, *big.Rat:
		return KindFloat, true
	case string:
		return KindString, true
	case bool:
		return KindBool, true
	case time.Time:
		return KindTimestamp, true
	case civil.Date:
		return KindDate, true
	case civil.Time:
		return KindTime, true
	default:
		return 0, false
	}
}

func kindAllowed(k Kind, allowed []Kind) bool {
	for _, a := range allowed {
		if a == k {
			return true
		}
	}
	return false
}
