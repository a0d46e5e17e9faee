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
package warehouse

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/frame"
)

// SchemaTypes flattens a fetched schema into the column→type map used for
// coercion.
func SchemaTypes(schema bigquery.Schema) map[string]bigquery.FieldType {
	types := make(map[string]bigquery.FieldType, len(schema))
	for _, field := range schema {
		types[field.Name] = field.Type
	}
	return types
}

// CoerceToSchema converts every frame column present in the type map to its
// declared warehouse type. Unparseable values become nil rather than
// raising; columns absent from the map pass through untouched.
func CoerceToSchema(f *frame.Frame, types map[string]bigquery.FieldType) *frame.Frame {
	for _, col := range f.Columns() {
		target, ok := types[col]
		if !ok {
			continue
		}
		name := col
		f.SetColumn(name, func(r frame.Row) any {
			return coerceValue(r[name], target)
		})
	}
	return f
}

func coerceValue(v any, target bigquery.FieldType) any {
	if v == nil {
		return nil
	}
	switch target {
	case bigquery.StringFieldType:
		return coerceString(v)
	case bigquery.IntegerFieldType:
		if n, ok := frame.AsInt(v); ok {
			return n
		}
		return nil
	case bigquery.FloatFieldType, bigquery.NumericFieldType:
		if f, ok := frame.AsFloat(v); ok {
			return f
		}
		return nil
	case bigquery.BooleanFieldType:
		if b, ok := frame.AsBool(v); ok {
			return b
		}
		return nil
	case bigquery.TimestampFieldType, bigquery.DateTimeFieldType:
		return coerceTimestamp(v)
	case bigquery.DateFieldType:
		return coerceDate(v)
	case bigquery.TimeFieldType:
		return coerceTime(v)
	default:
		return v
	}
}

func coerceString(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func coerceTimestamp(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x
	case civil.DateTime:
		return x.In(time.UTC)
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t
			}
		}
		return nil
	default:
		return nil
	}
}

func coerceDate(v any) any {
	switch x := v.(type) {
	case civil.Date:
		return x
	case time.Time:
		return civil.DateOf(x)
	case string:
		if d, err := civil.ParseDate(x); err == nil {
			return d
		}
		return nil
	default:
		return nil
	}
}

func coerceTime(v any) any {
	switch x := v.(type) {
	case civil.Time:
		return x
	case time.Time:
		return civil.TimeOf(x)
	case string:
		if t, err := civil.ParseTime(x); err == nil {
			return t
		}
		return nil
	default:
		return nil
	}
}
