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

import "fmt"

// maxTimestampParam is the name of the bound query parameter carrying the
// watermark. It is always injected as a typed TIMESTAMP parameter, never
// interpolated into the query text.
const maxTimestampParam = "max_timestamp"

// watermarkCondition bounds an incremental read to rows created after the
// previously loaded maximum. The source queries alias their driving table as
// `sub`, so the condition can be appended verbatim.
const watermarkCondition = " WHERE sub.recordCreatedAt > @" + maxTimestampParam

// subscriptionHelperQuery is the subscription source read. Placeholders:
// %[1]s project, %[2]s transformation layer, %[3]s raw-layer dataset.
const subscriptionHelperQuery = `
SELECT
  sub.subscriptionID,
  cus.isCommercial as commercial,
  sub.preferredDays,
  sub.preferredStart,
  sub.preferredEnd,
  lkp.allocateReservices as reserviceableContract,
  lkp.isRecurring as includedContract,
  CASE
      WHEN sub.active = 1 THEN TIMESTAMP("2199-01-01 00:00:00")
      ELSE CAST(dateCancelled AS TIMESTAMP)
    END AS adjEndDate,
  lkp.majorRecurringBucket as majorBucket,
  lkp.minorRecurringBucket as minorBucket,
  CASE
    WHEN lkp.majorRecurringBucket = 'Residential - General Pest' then TRUE
    else FALSE
  END AS residentialGeneralPest,
  CASE
    WHEN lkp.majorRecurringBucket = 'Commercial - General Pest' then TRUE
    else FALSE
  END as commercialGeneralPest,
  CASE
    WHEN lkp.majorRecurringBucket = 'Wood Destroying' then TRUE
    else FALSE
  END as woodDestroying,
  CASE
    WHEN lkp.majorRecurringBucket = 'Mosquito' then TRUE
    else FALSE
  END as mosquito,
  CASE
    WHEN lkp.majorRecurringBucket = 'Other' then TRUE
    else FALSE
  END as other,
  sub.recordCreatedAt,
  sub.clientId,
  sub.crmSource
FROM ` + "`%[1]s.%[2]s.t_subscription`" + ` sub
join ` + "`%[1]s.%[2]s.t_customer`" + ` cus on
sub.individualAccountID = cus.individualAccountID
join ` + "`%[1]s.%[3]s.temp_lkp_service_type`" + ` lkp on lkp.serviceType = sub.serviceID`

// appointmentHelperQuery is the appointment source read. Placeholders as
// above. crmMinutes, the drive-time base value and AverageMinutes are
// computed warehouse-side; the remaining derivations happen in Go.
const appointmentHelperQuery = `
SELECT sub.appointmentID,
sub.masterAccountID,
    sub.appointmentDate,
    sub.status,
    sub.duration,
    sub.timeIn,
    sub.timeOut,
    CASE
      WHEN status = 1 THEN TIMESTAMP_DIFF(timeOut, timeIn, MINUTE)
      ELSE 0.0
    END as crmMinutes,
    CASE
        WHEN sub.type = 3 then (SELECT SAFE_CAST(value AS FLOAT64) FROM ` + "`%[1]s.%[3]s.temp_lkp_time_assumption`" + ` WHERE timeAssumption='Reservice: Paid Drive Time Ratio')
        ELSE (SELECT SAFE_CAST(value AS FLOAT64) FROM ` + "`%[1]s.%[3]s.temp_lkp_time_assumption`" + ` WHERE timeAssumption='Avg. Drive Minutes Paid')
    END AS value,
    lkp.AverageMinutes,
    lkp.serviceTypeName as serviceTypeText,
    lkp.isRervice as isReservice,
    lkp.isRecurring as includedType,
    lkp.allocateReservices as countForReservice,
    CASE
        WHEN lkp.majorRecurringBucket = 'Residential - General Pest' then TRUE
        else FALSE
    END AS residentialGreenPest,
      CASE
        WHEN lkp.majorRecurringBucket = 'Commercial - General Pest' then TRUE
        else FALSE
      END as commercialGreenPest,
      CASE
        WHEN lkp.majorRecurringBucket = 'Wood Destroying' then TRUE
        else FALSE
      END as woodDestroying,
      CASE
        WHEN lkp.majorRecurringBucket = 'Mosquito' then TRUE
        else FALSE
      END as mosquito,
      CASE
        WHEN lkp.majorRecurringBucket = 'Other' then TRUE
        else FALSE
      END as other,
      CASE
        WHEN lkp.majorRecurringBucket = 'Residential - basic' then TRUE
        else FALSE
      END as residentialBasic,
      CASE
        WHEN lkp.majorRecurringBucket = 'Residential - Premium' then TRUE
        else FALSE
      END as residentialPremium,
      CASE
        WHEN lkp.majorRecurringBucket = 'Residential - Plus' then TRUE
        else FALSE
      END as residentialPlus,
      sub.recordCreatedAt,
      sub.clientId,
      sub.crmSource
FROM ` + "`%[1]s.%[2]s.t_appointment`" + `  sub
join ` + "`%[1]s.%[3]s.temp_lkp_service_type`" + ` as lkp on lkp.serviceType = sub.type`

// SubscriptionHelperQuery renders the subscription source read for the
// configured project and datasets.
func SubscriptionHelperQuery(project, transformationLayer, rawDataset string) string {
	return fmt.Sprintf(subscriptionHelperQuery, project, transformationLayer, rawDataset)
}

// AppointmentHelperQuery renders the appointment source read for the
// configured project and datasets.
func AppointmentHelperQuery(project, transformationLayer, rawDataset string) string {
	return fmt.Sprintf(appointmentHelperQuery, project, transformationLayer, rawDataset)
}
