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
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Environment variable names understood by Load.
const (
	EnvProjectID           = "GCP_PROJECT_ID"
	EnvDatasetID           = "BQ_DATASET_ID"
	EnvTransformationLayer = "BQ_TRANSFORMATION_LAYER"
	EnvSubscriptionHelper  = "SUBSCRIPTION_HELPER_TABLE"
	EnvAppointmentHelper   = "APPOINTMENT_HELPER_TABLE"
)

// Config holds all configuration for the application. It is constructed once
// at process start and passed into every component; no package-level state.
type Config struct {
	// ProjectID is the GCP project that owns every table touched by the job.
	ProjectID string
	// DatasetID is the raw-layer dataset holding the lookup tables.
	DatasetID string
	// TransformationLayer is the dataset holding the t_ source tables and
	// the helper targets.
	TransformationLayer string
	// SubscriptionHelperTable / AppointmentHelperTable are the target table
	// names within TransformationLayer.
	SubscriptionHelperTable string
	AppointmentHelperTable  string
}

// ErrMissingEnv reports a mandatory environment variable that was not set.
type ErrMissingEnv struct {
	Name string
}

func (e *ErrMissingEnv) Error() string {
	return fmt.Sprintf("configuration error: %s environment variable is not set", e.Name)
}

// Load reads configuration from the environment. Every field except the
// project id has a default matching the warehouse's dataset layout. Callers
// apply flag overrides and then Validate.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvDatasetID, "raw_layer")
	v.SetDefault(EnvTransformationLayer, "transformation_layer")
	v.SetDefault(EnvSubscriptionHelper, "t_subscription_helper")
	v.SetDefault(EnvAppointmentHelper, "t_appointment_helper")

	return &Config{
		ProjectID:               v.GetString(EnvProjectID),
		DatasetID:               v.GetString(EnvDatasetID),
		TransformationLayer:     v.GetString(EnvTransformationLayer),
		SubscriptionHelperTable: v.GetString(EnvSubscriptionHelper),
		AppointmentHelperTable:  v.GetString(EnvAppointmentHelper),
	}
}

// Validate checks invariants after any flag overrides have been applied.
// A missing project id is fatal at startup.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return &ErrMissingEnv{Name: EnvProjectID}
	}
	if c.DatasetID == "" {
		return fmt.Errorf("configuration error: dataset id cannot be empty")
	}
	if c.TransformationLayer == "" {
		return fmt.Errorf("configuration error: transformation layer cannot be empty")
	}
	return nil
}
