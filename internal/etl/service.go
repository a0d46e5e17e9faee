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

// Package etl orchestrates the two helper-table pipelines: watermark fetch,
// incremental read, transformation, append.
package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/config"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/transform"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/warehouse"
)

// Warehouse is the query/load surface the orchestrator needs. Satisfied by
// *warehouse.Client; tests substitute a fake.
type Warehouse interface {
	MaxTimestamp(ctx context.Context, table warehouse.TableRef) (*time.Time, error)
	Read(ctx context.Context, query string, watermark *time.Time, limit int64) ([]frame.Row, error)
	Append(ctx context.Context, table warehouse.TableRef, rows []frame.Row) error
	WriteEmpty(ctx context.Context, table warehouse.TableRef, rows []frame.Row) error
}

// Service runs the subscription and appointment pipelines sequentially.
// Single-threaded; no state is shared between pipeline runs.
type Service struct {
	wh          Warehouse
	transformer *transform.Transformer
	cfg         *config.Config
	logger      *zap.SugaredLogger

	// limit > 0 truncates source reads, for testing and backfill control.
	limit int64
}

func NewService(wh Warehouse, cfg *config.Config, logger *zap.SugaredLogger, limit int64) *Service {
	return &Service{
		wh:          wh,
		transformer: transform.New(logger),
		cfg:         cfg,
		logger:      logger,
		limit:       limit,
	}
}

// Run executes both pipelines. The pipelines are independent: a failure in
// one does not prevent attempting the other, but the joined error reflects
// overall failure.
func (s *Service) Run(ctx context.Context) error {
	var errs []error
	if err := s.ProcessSubscription(ctx); err != nil {
		errs = append(errs, fmt.Errorf("subscription pipeline: %w", err))
	}
	if err := s.ProcessAppointment(ctx); err != nil {
		errs = append(errs, fmt.Errorf("appointment pipeline: %w", err))
	}
	return errors.Join(errs...)
}

// FullRefresh reruns both pipelines without a watermark bound and loads with
// empty-write semantics, failing if a target already holds rows.
func (s *Service) FullRefresh(ctx context.Context) error {
	var errs []error
	if err := s.process(ctx, "subscription", s.subscriptionQuery(), s.SubscriptionTarget(), s.transformer.SubscriptionHelper, true); err != nil {
		errs = append(errs, fmt.Errorf("subscription pipeline: %w", err))
	}
	if err := s.process(ctx, "appointment", s.appointmentQuery(), s.AppointmentTarget(), s.transformer.AppointmentHelper, true); err != nil {
		errs = append(errs, fmt.Errorf("appointment pipeline: %w", err))
	}
	return errors.Join(errs...)
}

// ProcessSubscription runs the incremental subscription pipeline.
func (s *Service) ProcessSubscription(ctx context.Context) error {
	return s.process(ctx, "subscription", s.subscriptionQuery(), s.SubscriptionTarget(), s.transformer.SubscriptionHelper, false)
}

// ProcessAppointment runs the incremental appointment pipeline.
func (s *Service) ProcessAppointment(ctx context.Context) error {
	return s.process(ctx, "appointment", s.appointmentQuery(), s.AppointmentTarget(), s.transformer.AppointmentHelper, false)
}

// process is the shared pipeline body. States: watermark fetched → source
// read → (empty: skipped) | (transformed → written) → completed; any error
// is logged with context and returned, leaving nothing partially written.
func (s *Service) process(
	ctx context.Context,
	name string,
	query string,
	target warehouse.TableRef,
	transformFn func([]frame.Row) (*frame.Frame, error),
	fullRefresh bool,
) error {
	logger := s.logger.With("process", name, "table", target.Path())
	start := time.Now()
	logger.Infow("starting data processing")

	var watermark *time.Time
	if !fullRefresh {
		wm, err := s.wh.MaxTimestamp(ctx, target)
		if err != nil {
			logger.Errorw("watermark fetch failed", "error", err)
			return err
		}
		watermark = wm
	}

	rows, err := s.wh.Read(ctx, query, watermark, s.limit)
	if err != nil {
		logger.Errorw("source read failed", "error", err)
		return err
	}
	if len(rows) == 0 {
		logger.Infow("no new source rows, skipping", "duration", time.Since(start))
		return nil
	}

	f, err := transformFn(rows)
	if err != nil {
		logger.Errorw("transformation failed", "error", err)
		return err
	}
	if f.IsEmpty() {
		logger.Infow("empty frame after validation, skipping write")
		return nil
	}

	write := s.wh.Append
	if fullRefresh {
		write = s.wh.WriteEmpty
	}
	if err := write(ctx, target, f.Rows()); err != nil {
		logger.Errorw("load failed", "error", err)
		return err
	}

	logger.Infow("completed data processing", "rows", f.Len(), "duration", time.Since(start))
	return nil
}

// SubscriptionTarget resolves the subscription helper table identity.
func (s *Service) SubscriptionTarget() warehouse.TableRef {
	return warehouse.TableRef{
		Project: s.cfg.ProjectID,
		Dataset: s.cfg.TransformationLayer,
		Table:   s.cfg.SubscriptionHelperTable,
	}
}

// AppointmentTarget resolves the appointment helper table identity.
func (s *Service) AppointmentTarget() warehouse.TableRef {
	return warehouse.TableRef{
		Project: s.cfg.ProjectID,
		Dataset: s.cfg.TransformationLayer,
		Table:   s.cfg.AppointmentHelperTable,
	}
}

func (s *Service) subscriptionQuery() string {
	return warehouse.SubscriptionHelperQuery(s.cfg.ProjectID, s.cfg.TransformationLayer, s.cfg.DatasetID)
}

func (s *Service) appointmentQuery() string {
	return warehouse.AppointmentHelperQuery(s.cfg.ProjectID, s.cfg.TransformationLayer, s.cfg.DatasetID)
}
