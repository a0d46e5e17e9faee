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

// Package transform holds the two business-rule transformations mapping
// validated source batches to helper-table frames.
package transform

import (
	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/validate"
)

// Transformer validates and transforms source record batches.
type Transformer struct {
	logger    *zap.SugaredLogger
	validator *validate.Validator
}

func New(logger *zap.SugaredLogger) *Transformer {
	return &Transformer{
		logger:    logger,
		validator: validate.New(logger),
	}
}

// SubscriptionHelper replaces the preferred-schedule triple with a single
// constrainedTime flag: true iff the subscription names at least one
// preferred day and both window bounds are after midnight. All three
// conditions must independently hold.
func (t *Transformer) SubscriptionHelper(records []frame.Row) (*frame.Frame, error) {
	required := []string{ColPreferredDays, ColPreferredStart, ColPreferredEnd}
	types := map[string][]validate.Kind{
		ColPreferredDays:  {validate.KindInt},
		ColPreferredStart: {validate.KindTime},
		ColPreferredEnd:   {validate.KindTime},
	}

	f, err := t.validator.Frame(records, required, types, "subscription")
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return f, nil
	}

	f.SetColumn(ColConstrainedTime, func(r frame.Row) any {
		days, _ := frame.AsInt(r[ColPreferredDays])
		start, startOK := r[ColPreferredStart].(civil.Time)
		end, endOK := r[ColPreferredEnd].(civil.Time)
		return days > 0 &&
			startOK && afterMidnight(start) &&
			endOK && afterMidnight(end)
	})

	f.Drop(ColPreferredDays, ColPreferredStart, ColPreferredEnd)

	t.logger.Infow("subscription transformation completed", "rows", f.Len())
	return f, nil
}

func afterMidnight(t civil.Time) bool {
	return t.Hour > 0 || t.Minute > 0 || t.Second > 0 || t.Nanosecond > 0
}
