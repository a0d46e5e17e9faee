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

// runCmd executes one incremental pass over both pipelines and exits.
var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Run both helper-table pipelines once",
	Example: `./bq_helper_etl run --project my-project --limit 10000`,
	RunE:    runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, client, err := newService(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	defer logger.Sync()

	return svc.Run(ctx)
}
