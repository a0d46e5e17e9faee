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
package transform

import (
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/validate"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/warehouse"
)

// groupKey is the only grouping key the appointment aggregations use.
type groupKey struct {
	account int64
	date    civil.Date
}

// groupStat accumulates per-(account, date) aggregates over completed rows.
type groupStat struct {
	completed   int64
	durationSum float64
	minTimeIn   time.Time
	maxTimeOut  time.Time
	hasSpan     bool
}

// timeSpanMinutes is the minutes between the group's earliest time-in and
// latest time-out among completed rows, 0 when no completed row carried both.
func (g *groupStat) timeSpanMinutes() float64 {
	if !g.hasSpan {
		return 0
	}
	return g.maxTimeOut.Sub(g.minTimeIn).Minutes()
}

// AppointmentHelper derives the appointment helper columns. The steps run in
// order because later columns depend on earlier ones; see the package tests
// for the per-step contracts.
func (t *Transformer) AppointmentHelper(records []frame.Row) (*frame.Frame, error) {
	required := []string{
		ColMasterAccountID, ColAppointmentDate, ColStatus,
		ColCRMMinutes, ColDuration, ColValue, ColAverageMinutes,
	}
	types := map[string][]validate.Kind{
		ColMasterAccountID: {validate.KindInt},
		ColStatus:          {validate.KindInt},
		ColCRMMinutes:      {validate.KindFloat, validate.KindInt},
		ColDuration:        {validate.KindFloat, validate.KindInt},
	}

	f, err := t.validator.Frame(records, required, types, "appointment")
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return f, nil
	}

	rows := f.Rows()
	keys := make([]groupKey, len(rows))
	for i, r := range rows {
		k, err := keyOf(r)
		if err != nil {
			return nil, &ErrTransformation{Msg: fmt.Sprintf("appointment row %d", i), Err: err}
		}
		keys[i] = k
	}

	stats := aggregateGroups(rows, keys)

	// Steps 1–7: group broadcasts and row-wise derivations.
	for i, r := range rows {
		st := stats[keys[i]]
		status, _ := frame.AsInt(r[ColStatus])
		duration, _ := frame.AsFloat(r[ColDuration])
		crmMinutes, _ := frame.AsFloat(r[ColCRMMinutes])

		multivisit := st.completed > 1
		r[ColMultivisit] = multivisit

		isError := crmMinutes == 0.0
		r[ColIsError] = isError

		outlierOut := 0.0
		if status == statusCompleted {
			outlierOut = math.Max(math.Min(crmMinutes, duration*2), duration*0.25)
		}
		r[ColMinutesOutlierOut] = outlierOut

		if isError {
			r[ColFillInErrors] = r[ColAverageMinutes]
		} else {
			r[ColFillInErrors] = outlierOut
		}

		// Broadcast to every row in the group, non-completed rows included.
		r[ColMultivisitDuration] = st.durationSum

		// NOTE: the operand order mirrors the outlier clamp with min and max
		// swapped, so for well-formed data this resolves to the smaller of
		// duration*0.25 and the clamped time span. Kept as the reporting
		// rules specify it; confirm with the data owner before changing.
		crmTime := 0.0
		if multivisit && status == statusCompleted {
			crmTime = math.Min(duration*0.25, math.Max(duration*2, st.timeSpanMinutes()))
		}
		r[ColMultivisitCRMTime] = crmTime

		r[ColMultivisitCount] = st.completed
	}
	f.EnsureColumns(
		ColMultivisit, ColIsError, ColMinutesOutlierOut, ColFillInErrors,
		ColMultivisitDuration, ColMultivisitCRMTime, ColMultivisitCount,
	)

	// Step 8: lenient numeric coercion; unparseable values become nil.
	for _, col := range []string{
		ColMultivisitCRMTime, ColMultivisitCount, ColValue,
		ColFillInErrors, ColMinutesOutlierOut,
	} {
		name := col
		f.SetColumn(name, func(r frame.Row) any {
			return frame.ToNumeric(r[name])
		})
	}

	// Steps 9–11: allocation formulas over the coerced columns.
	f.SetColumn(ColMultivisitAdjustedMinutes, func(r frame.Row) any {
		if multivisit, _ := frame.AsBool(r[ColMultivisit]); multivisit {
			return divide(r[ColMultivisitCRMTime], r[ColMultivisitCount])
		}
		return r[ColFillInErrors]
	})

	f.SetColumn(ColDriveTime, func(r frame.Row) any {
		return divide(r[ColValue], r[ColMultivisitCount])
	})

	f.SetColumn(ColTotalTime, func(r frame.Row) any {
		drive, _ := frame.AsFloat(r[ColDriveTime])
		adjusted, _ := frame.AsFloat(r[ColMultivisitAdjustedMinutes])
		return drive + adjusted
	})

	// Step 12: the working columns existed only to compute the derivations.
	f.Drop(
		ColMasterAccountID, ColAppointmentDate, ColTimeIn, ColTimeOut,
		ColStatus, ColDuration, ColValue, ColAverageMinutes,
	)

	// Step 13: align the remaining columns with the target table's types.
	warehouse.CoerceToSchema(f, AppointmentColumnTypes)

	t.logger.Infow("appointment transformation completed", "rows", f.Len(), "groups", len(stats))
	return f, nil
}

func keyOf(r frame.Row) (groupKey, error) {
	account, ok := frame.AsInt(r[ColMasterAccountID])
	if !ok {
		return groupKey{}, fmt.Errorf("masterAccountID %v is not an integer", r[ColMasterAccountID])
	}

	var date civil.Date
	switch d := r[ColAppointmentDate].(type) {
	case civil.Date:
		date = d
	case time.Time:
		date = civil.DateOf(d)
	case string:
		parsed, err := civil.ParseDate(d)
		if err != nil {
			return groupKey{}, fmt.Errorf("appointmentDate %q is not a date", d)
		}
		date = parsed
	default:
		return groupKey{}, fmt.Errorf("appointmentDate %v is not a date", r[ColAppointmentDate])
	}

	return groupKey{account: account, date: date}, nil
}

// aggregateGroups runs the single pass collecting completed-row counts,
// duration sums and time-in/time-out extremes per (account, date) group.
func aggregateGroups(rows []frame.Row, keys []groupKey) map[groupKey]*groupStat {
	stats := make(map[groupKey]*groupStat)
	for i, r := range rows {
		st, ok := stats[keys[i]]
		if !ok {
			st = &groupStat{}
			stats[keys[i]] = st
		}

		status, _ := frame.AsInt(r[ColStatus])
		if status != statusCompleted {
			continue
		}
		st.completed++
		if d, ok := frame.AsFloat(r[ColDuration]); ok {
			st.durationSum += d
		}

		in, inOK := r[ColTimeIn].(time.Time)
		out, outOK := r[ColTimeOut].(time.Time)
		if !inOK || !outOK {
			continue
		}
		if !st.hasSpan {
			st.minTimeIn = in
			st.maxTimeOut = out
			st.hasSpan = true
			continue
		}
		if in.Before(st.minTimeIn) {
			st.minTimeIn = in
		}
		if out.After(st.maxTimeOut) {
			st.maxTimeOut = out
		}
	}
	return stats
}

// divide returns a/b as float64, or nil when either operand is nil,
// non-numeric, or b is zero. A zero multivisit count must yield null drive
// time, not infinity.
func divide(a, b any) any {
	x, okA := frame.AsFloat(a)
	y, okB := frame.AsFloat(b)
	if !okA || !okB || y == 0 {
		return nil
	}
	return x / y
}
