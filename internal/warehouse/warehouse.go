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

// Package warehouse wraps the BigQuery SDK: parameterized reads, watermark
// lookup, batch load jobs and schema-driven type coercion.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
)

// TableRef identifies a table as a (project, dataset, table) triple.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

// Path renders the fully qualified table path.
func (t TableRef) Path() string {
	return fmt.Sprintf("%s.%s.%s", t.Project, t.Dataset, t.Table)
}

// Client is a thin wrapper over the BigQuery SDK. All operations are
// synchronous and blocking; cancellation comes from the caller's context.
type Client struct {
	bq     *bigquery.Client
	logger *zap.SugaredLogger
}

func New(ctx context.Context, projectID string, logger *zap.SugaredLogger) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, &ErrWarehouse{Msg: "creating BigQuery client", Err: err}
	}
	return &Client{bq: bq, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.bq.Close()
}

// MaxTimestamp fetches the watermark of a target table: the maximum
// recordCreatedAt already loaded. Returns nil on first run (empty target).
func (c *Client) MaxTimestamp(ctx context.Context, table TableRef) (*time.Time, error) {
	q := c.bq.Query(fmt.Sprintf("SELECT MAX(recordCreatedAt) AS %s FROM `%s`", maxTimestampParam, table.Path()))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, &ErrWarehouse{Msg: fmt.Sprintf("fetching watermark for %s", table.Path()), Err: err}
	}

	var row struct {
		Max bigquery.NullTimestamp `bigquery:"max_timestamp"`
	}
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, nil
		}
		return nil, &ErrWarehouse{Msg: fmt.Sprintf("reading watermark for %s", table.Path()), Err: err}
	}
	if !row.Max.Valid {
		c.logger.Infow("no watermark found, full read", "table", table.Path())
		return nil, nil
	}

	ts := row.Max.Timestamp
	c.logger.Infow("watermark fetched", "table", table.Path(), "watermark", ts)
	return &ts, nil
}

// Read executes a source query and returns the rows as a record batch. A
// non-nil watermark bounds the read to rows created after it, injected as a
// typed TIMESTAMP parameter. A positive limit truncates the read; it exists
// for testing and backfill control.
func (c *Client) Read(ctx context.Context, query string, watermark *time.Time, limit int64) ([]frame.Row, error) {
	text := query
	if watermark != nil {
		text += watermarkCondition
	}
	if limit > 0 {
		text += fmt.Sprintf(" LIMIT %d", limit)
	}

	q := c.bq.Query(text)
	if watermark != nil {
		q.Parameters = []bigquery.QueryParameter{
			{Name: maxTimestampParam, Value: *watermark},
		}
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, &ErrWarehouse{Msg: "executing source query", Err: err}
	}

	var rows []frame.Row
	for {
		var values map[string]bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &ErrWarehouse{Msg: "iterating source query results", Err: err}
		}
		row := make(frame.Row, len(values))
		for k, v := range values {
			row[k] = v
		}
		rows = append(rows, row)
	}

	c.logger.Infow("source query executed", "rows", len(rows))
	return rows, nil
}

// Schema fetches the declared schema of a target table.
func (c *Client) Schema(ctx context.Context, table TableRef) (bigquery.Schema, error) {
	md, err := c.bq.Dataset(table.Dataset).Table(table.Table).Metadata(ctx)
	if err != nil {
		return nil, &ErrWarehouse{Msg: fmt.Sprintf("fetching schema for %s", table.Path()), Err: err}
	}
	return md.Schema, nil
}

// Append loads a row batch into the target with append semantics. Writes
// never overwrite prior rows.
func (c *Client) Append(ctx context.Context, table TableRef, rows []frame.Row) error {
	return c.load(ctx, table, rows, bigquery.WriteAppend)
}

// WriteEmpty loads a row batch into the target only if it holds no rows;
// the load job fails otherwise. Used by the full-refresh path.
func (c *Client) WriteEmpty(ctx context.Context, table TableRef, rows []frame.Row) error {
	return c.load(ctx, table, rows, bigquery.WriteEmpty)
}

func (c *Client) load(ctx context.Context, table TableRef, rows []frame.Row, disposition bigquery.TableWriteDisposition) error {
	schema, err := c.Schema(ctx, table)
	if err != nil {
		return err
	}

	body, err := serializeRows(rows)
	if err != nil {
		return &ErrWarehouse{Msg: fmt.Sprintf("serializing rows for %s", table.Path()), Err: err}
	}

	source := bigquery.NewReaderSource(bytes.NewReader(body))
	source.SourceFormat = bigquery.JSON
	source.Schema = schema

	loader := c.bq.Dataset(table.Dataset).Table(table.Table).LoaderFrom(source)
	loader.WriteDisposition = disposition

	c.logger.Infow("initiating load job", "table", table.Path(), "rows", len(rows), "disposition", string(disposition))
	job, err := loader.Run(ctx)
	if err != nil {
		return &ErrWarehouse{Msg: fmt.Sprintf("starting load job for %s", table.Path()), Err: err}
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return &ErrWarehouse{Msg: fmt.Sprintf("waiting for load job for %s", table.Path()), Err: err}
	}
	if err := status.Err(); err != nil {
		return &ErrWarehouse{Msg: fmt.Sprintf("load job for %s failed", table.Path()), Err: err}
	}

	c.logger.Infow("load job completed", "table", table.Path(), "rows", len(rows))
	return nil
}

// serializeRows renders a batch as newline-delimited JSON for the load job.
// Timestamps become RFC 3339 strings; DATE and TIME values use their civil
// string forms, which BigQuery accepts natively.
func serializeRows(rows []frame.Row) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		record := make(map[string]any, len(r))
		for k, v := range r {
			record[k] = serializeValue(v)
		}
		if err := enc.Encode(record); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func serializeValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	case civil.DateTime:
		return x.String()
	case *big.Rat:
		if x == nil {
			return nil
		}
		f, _ := x.Float64()
		return f
	default:
		return v
	}
}
