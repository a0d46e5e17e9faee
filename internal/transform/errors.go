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

import "fmt"

// ErrTransformation represents an unexpected failure while computing derived
// columns. Fatal to the pipeline run; nothing is written.
type ErrTransformation struct {
	Msg string
	Err error
}

func (e *ErrTransformation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transformation error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("transformation error: %s", e.Msg)
}

func (e *ErrTransformation) Unwrap() error {
	return e.Err
}
