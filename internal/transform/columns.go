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

// Source and derived column names. The casing follows the warehouse views,
// AverageMinutes included.
const (
	// Subscription source columns.
	ColPreferredDays  = "preferredDays"
	ColPreferredStart = "preferredStart"
	ColPreferredEnd   = "preferredEnd"

	// Subscription derived column.
	ColConstrainedTime = "constrainedTime"

	// Appointment source columns.
	ColMasterAccountID = "masterAccountID"
	ColAppointmentDate = "appointmentDate"
	ColStatus          = "status"
	ColCRMMinutes      = "crmMinutes"
	ColDuration        = "duration"
	ColTimeIn          = "timeIn"
	ColTimeOut         = "timeOut"
	ColValue           = "value"
	ColAverageMinutes  = "AverageMinutes"

	// Appointment derived columns.
	ColMultivisit                = "multivisit"
	ColIsError                   = "isError"
	ColMinutesOutlierOut         = "minutesOutlierOut"
	ColFillInErrors              = "fillInErrors"
	ColMultivisitDuration        = "multivisitDuration"
	ColMultivisitCRMTime         = "multivisitCrmTime"
	ColMultivisitCount           = "multivisitCount"
	ColMultivisitAdjustedMinutes = "multivisitAdjustedMinutes"
	ColDriveTime                 = "driveTime"
	ColTotalTime                 = "totalTime"
)

// statusCompleted marks an appointment that actually happened; every grouped
// aggregation filters on it.
const statusCompleted = 1
