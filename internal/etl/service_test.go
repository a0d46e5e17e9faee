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
package etl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/config"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/logging"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/warehouse"
)

// fakeWarehouse scripts per-table behavior and records every interaction.
type fakeWarehouse struct {
	watermarks map[string]*time.Time
	rows       map[string][]frame.Row

	watermarkErr error
	readErr      error
	appendErr    error

	readCalls    []readCall
	appendCalls  []writeCall
	emptyCalls   []writeCall
	failAppendOn string
}

type readCall struct {
	query     string
	watermark *time.Time
	limit     int64
}

type writeCall struct {
	table warehouse.TableRef
	rows  []frame.Row
}

func (f *fakeWarehouse) MaxTimestamp(ctx context.Context, table warehouse.TableRef) (*time.Time, error) {
	if f.watermarkErr != nil {
		return nil, f.watermarkErr
	}
	return f.watermarks[table.Table], nil
}

func (f *fakeWarehouse) Read(ctx context.Context, query string, watermark *time.Time, limit int64) ([]frame.Row, error) {
	f.readCalls = append(f.readCalls, readCall{query: query, watermark: watermark, limit: limit})
	if f.readErr != nil {
		return nil, f.readErr
	}
	for name, rows := range f.rows {
		if strings.Contains(query, name) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeWarehouse) Append(ctx context.Context, table warehouse.TableRef, rows []frame.Row) error {
	if f.appendErr != nil && (f.failAppendOn == "" || f.failAppendOn == table.Table) {
		return f.appendErr
	}
	f.appendCalls = append(f.appendCalls, writeCall{table: table, rows: rows})
	return nil
}

func (f *fakeWarehouse) WriteEmpty(ctx context.Context, table warehouse.TableRef, rows []frame.Row) error {
	f.emptyCalls = append(f.emptyCalls, writeCall{table: table, rows: rows})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ProjectID:               "test-project",
		DatasetID:               "raw_layer",
		TransformationLayer:     "transformation_layer",
		SubscriptionHelperTable: "t_subscription_helper",
		AppointmentHelperTable:  "t_appointment_helper",
	}
}

func subscriptionRows() []frame.Row {
	return []frame.Row{{
		"subscriptionID":  int64(1),
		"preferredDays":   int64(3),
		"preferredStart":  civil.Time{Hour: 8},
		"preferredEnd":    civil.Time{Hour: 17},
		"recordCreatedAt": time.Now(),
	}}
}

func appointmentRows() []frame.Row {
	return []frame.Row{{
		"appointmentID":   int64(1),
		"masterAccountID": int64(10),
		"appointmentDate": civil.Date{Year: 2026, Month: 1, Day: 5},
		"status":          int64(1),
		"crmMinutes":      45.0,
		"duration":        60.0,
		"value":           5.0,
		"AverageMinutes":  30.0,
	}}
}

func TestRunBothPipelines(t *testing.T) {
	wh := &fakeWarehouse{
		rows: map[string][]frame.Row{
			"t_subscription": subscriptionRows(),
			"t_appointment":  appointmentRows(),
		},
	}
	svc := NewService(wh, testConfig(), logging.NewNop(), 0)

	err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, wh.appendCalls, 2)
	assert.Equal(t, "t_subscription_helper", wh.appendCalls[0].table.Table)
	assert.Equal(t, "t_appointment_helper", wh.appendCalls[1].table.Table)

	// First run against empty targets: no watermark bound.
	require.Len(t, wh.readCalls, 2)
	assert.Nil(t, wh.readCalls[0].watermark)

	// Transformed subscription rows carry the derived flag, not the inputs.
	row := wh.appendCalls[0].rows[0]
	assert.Equal(t, true, row["constrainedTime"])
	assert.NotContains(t, row, "preferredDays")
}

func TestRunPassesWatermark(t *testing.T) {
	wm := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	wh := &fakeWarehouse{
		watermarks: map[string]*time.Time{
			"t_subscription_helper": &wm,
			"t_appointment_helper":  &wm,
		},
	}
	svc := NewService(wh, testConfig(), logging.NewNop(), 500)

	err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, wh.readCalls, 2)
	for _, call := range wh.readCalls {
		require.NotNil(t, call.watermark)
		assert.True(t, call.watermark.Equal(wm))
		assert.Equal(t, int64(500), call.limit)
	}
}

func TestRunSkipsWriteOnEmptyRead(t *testing.T) {
	wh := &fakeWarehouse{}
	svc := NewService(wh, testConfig(), logging.NewNop(), 0)

	err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, wh.appendCalls, "no rows should be written for an empty read")
}

func TestRunContinuesAfterPipelineFailure(t *testing.T) {
	wh := &fakeWarehouse{
		rows: map[string][]frame.Row{
			"t_subscription": subscriptionRows(),
			"t_appointment":  appointmentRows(),
		},
		appendErr:    errors.New("quota exceeded"),
		failAppendOn: "t_subscription_helper",
	}
	svc := NewService(wh, testConfig(), logging.NewNop(), 0)

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription pipeline")
	assert.NotContains(t, err.Error(), "appointment pipeline")

	// The appointment pipeline still ran and wrote.
	require.Len(t, wh.appendCalls, 1)
	assert.Equal(t, "t_appointment_helper", wh.appendCalls[0].table.Table)
}

func TestRunWatermarkFailureStopsPipeline(t *testing.T) {
	wh := &fakeWarehouse{watermarkErr: errors.New("permission denied")}
	svc := NewService(wh, testConfig(), logging.NewNop(), 0)

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, wh.readCalls, "no read should happen without a watermark answer")
}

func TestFullRefreshUsesEmptyWrite(t *testing.T) {
	wh := &fakeWarehouse{
		watermarks: map[string]*time.Time{
			"t_subscription_helper": {},
		},
		rows: map[string][]frame.Row{
			"t_subscription": subscriptionRows(),
			"t_appointment":  appointmentRows(),
		},
	}
	svc := NewService(wh, testConfig(), logging.NewNop(), 0)

	err := svc.FullRefresh(context.Background())
	require.NoError(t, err)

	assert.Empty(t, wh.appendCalls)
	require.Len(t, wh.emptyCalls, 2)

	// Refresh reads the full history regardless of any stored watermark.
	for _, call := range wh.readCalls {
		assert.Nil(t, call.watermark)
	}
}

func TestTargets(t *testing.T) {
	svc := NewService(&fakeWarehouse{}, testConfig(), logging.NewNop(), 0)

	assert.Equal(t, "test-project.transformation_layer.t_subscription_helper", svc.SubscriptionTarget().Path())
	assert.Equal(t, "test-project.transformation_layer.t_appointment_helper", svc.AppointmentTarget().Path())
}
