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
package cmd

import (
	"github.com/spf13/cobra"
)

// refreshCmd rebuilds the helper tables from the full source history. The
// load fails if a target table already holds rows, so operators must truncate
// the targets first; that keeps an accidental refresh from duplicating data.
var refreshCmd = &cobra.Command{
	Use:     "full-refresh",
	Short:   "Rebuild both helper tables from the full source history",
	Example: `./bq_helper_etl full-refresh --project my-project`,
	RunE:    runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, client, err := newService(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	defer logger.Sync()

	return svc.FullRefresh(ctx)
}
