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
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/logging"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/validate"
)

func subscriptionRow(days int64, start, end civil.Time) frame.Row {
	return frame.Row{
		"subscriptionID":  int64(100),
		ColPreferredDays:  days,
		ColPreferredStart: start,
		ColPreferredEnd:   end,
	}
}

func TestSubscriptionHelperConstrainedTime(t *testing.T) {
	eight := civil.Time{Hour: 8}
	seventeen := civil.Time{Hour: 17}
	midnight := civil.Time{}

	tests := []struct {
		name string
		row  frame.Row
		want bool
	}{
		{"all constraints set", subscriptionRow(3, eight, seventeen), true},
		{"no preferred days", subscriptionRow(0, eight, seventeen), false},
		{"start at midnight", subscriptionRow(3, midnight, seventeen), false},
		{"end at midnight", subscriptionRow(3, eight, midnight), false},
		{"one minute past midnight", subscriptionRow(1, civil.Time{Minute: 1}, civil.Time{Second: 30}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(logging.NewNop())
			f, err := tr.SubscriptionHelper([]frame.Row{tt.row})
			require.NoError(t, err)
			require.Equal(t, 1, f.Len())
			assert.Equal(t, tt.want, f.Value(0, ColConstrainedTime))
		})
	}
}

func TestSubscriptionHelperNullSchedule(t *testing.T) {
	tr := New(logging.NewNop())

	f, err := tr.SubscriptionHelper([]frame.Row{{
		"subscriptionID":  int64(7),
		ColPreferredDays:  nil,
		ColPreferredStart: nil,
		ColPreferredEnd:   nil,
	}})
	require.NoError(t, err)
	assert.Equal(t, false, f.Value(0, ColConstrainedTime))
}

func TestSubscriptionHelperDropsScheduleColumns(t *testing.T) {
	tr := New(logging.NewNop())

	f, err := tr.SubscriptionHelper([]frame.Row{
		subscriptionRow(2, civil.Time{Hour: 9}, civil.Time{Hour: 12}),
	})
	require.NoError(t, err)

	for _, col := range []string{ColPreferredDays, ColPreferredStart, ColPreferredEnd} {
		assert.False(t, f.HasColumn(col), "column %s should be dropped", col)
	}
	assert.True(t, f.HasColumn("subscriptionID"), "pass-through columns must survive")
}

func TestSubscriptionHelperMissingColumns(t *testing.T) {
	tr := New(logging.NewNop())

	_, err := tr.SubscriptionHelper([]frame.Row{{"subscriptionID": int64(1)}})
	var verr *validate.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestSubscriptionHelperEmptyBatch(t *testing.T) {
	tr := New(logging.NewNop())

	f, err := tr.SubscriptionHelper(nil)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}
