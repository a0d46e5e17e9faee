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
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/config"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/etl"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/logging"
	"github.com/GoogleCloudPlatform/bq-helper-etl/internal/warehouse"
)

var (
	projectID           string
	datasetID           string
	transformationLayer string
	rowLimit            int64
	verbose             bool

	cfg    *config.Config
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "bq_helper_etl",
	Short: "Derives the subscription and appointment helper tables in BigQuery",
	Long: `bq_helper_etl reads subscription and appointment records from the
transformation layer, applies the scheduling and service-duration business
rules, and appends the derived rows to the helper tables. Runs are
incremental: only rows created after the target table's latest
recordCreatedAt are processed.`,
	PersistentPreRunE: initConfigAndLogger,
	SilenceUsage:      true,
}

// initConfigAndLogger builds the logger and the configuration object every
// subcommand shares. Flags win over environment variables.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	l, err := logging.New(verbose)
	if err != nil {
		return err
	}
	logger = l

	c := config.Load()
	if projectID != "" {
		c.ProjectID = projectID
	}
	if datasetID != "" {
		c.DatasetID = datasetID
	}
	if transformationLayer != "" {
		c.TransformationLayer = transformationLayer
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// newService connects to BigQuery and wires the pipeline service. The caller
// owns the returned client and must Close it.
func newService(ctx context.Context) (*etl.Service, *warehouse.Client, error) {
	client, err := warehouse.New(ctx, cfg.ProjectID, logger)
	if err != nil {
		return nil, nil, err
	}
	return etl.NewService(client, cfg, logger, rowLimit), client, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectID, "project", "", "GCP project id (defaults to GCP_PROJECT_ID)")
	rootCmd.PersistentFlags().StringVar(&datasetID, "dataset", "", "Raw-layer dataset id (defaults to BQ_DATASET_ID)")
	rootCmd.PersistentFlags().StringVar(&transformationLayer, "transformation-layer", "", "Transformation-layer dataset id (defaults to BQ_TRANSFORMATION_LAYER)")
	rootCmd.PersistentFlags().Int64Var(&rowLimit, "limit", 0, "Cap the number of source rows read per pipeline (0 = no cap)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(refreshCmd)
}
