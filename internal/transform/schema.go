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

import "cloud.google.com/go/bigquery"

// AppointmentColumnTypes declares the t_appointment_helper column types the
// transformed frame is coerced to before the load job. Must stay in sync
// with the target table's DDL.
var AppointmentColumnTypes = map[string]bigquery.FieldType{
	"appointmentID":     bigquery.IntegerFieldType,
	"crmMinutes":        bigquery.FloatFieldType,
	"serviceTypeText":   bigquery.StringFieldType,
	"isReservice":       bigquery.BooleanFieldType,
	"includedType":      bigquery.BooleanFieldType,
	"countForReservice": bigquery.BooleanFieldType,

	"residentialGreenPest": bigquery.BooleanFieldType,
	"commercialGreenPest":  bigquery.BooleanFieldType,
	"woodDestroying":       bigquery.BooleanFieldType,
	"mosquito":             bigquery.BooleanFieldType,
	"other":                bigquery.BooleanFieldType,
	"residentialBasic":     bigquery.BooleanFieldType,
	"residentialPremium":   bigquery.BooleanFieldType,
	"residentialPlus":      bigquery.BooleanFieldType,

	ColMultivisit:                bigquery.BooleanFieldType,
	ColIsError:                   bigquery.BooleanFieldType,
	ColMinutesOutlierOut:         bigquery.FloatFieldType,
	ColFillInErrors:              bigquery.FloatFieldType,
	ColMultivisitDuration:        bigquery.FloatFieldType,
	ColMultivisitCRMTime:         bigquery.FloatFieldType,
	ColMultivisitCount:           bigquery.IntegerFieldType,
	ColMultivisitAdjustedMinutes: bigquery.FloatFieldType,
	ColDriveTime:                 bigquery.FloatFieldType,
	ColTotalTime:                 bigquery.FloatFieldType,

	"recordCreatedAt": bigquery.TimestampFieldType,
	"clientId":        bigquery.IntegerFieldType,
	"crmSource":       bigquery.StringFieldType,
}
