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

// ErrWarehouse represents errors that occur while querying or loading the
// warehouse. Fatal to the pipeline run and never retried: reads are
// watermark-bounded and writes append-only, so the caller reruns the whole
// job after fixing the underlying cause.
type ErrWarehouse struct {
	Msg string
	Err error
}

func (e *ErrWarehouse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("warehouse error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("warehouse error: %s", e.Msg)
}

func (e *ErrWarehouse) Unwrap() error {
	return e.Err
}
