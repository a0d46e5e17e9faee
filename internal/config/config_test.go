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
	"errors"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvProjectID, "my-project")

	cfg := Load()

	if cfg.ProjectID != "my-project" {
		t.Errorf("ProjectID = %q, want my-project", cfg.ProjectID)
	}
	if cfg.DatasetID != "raw_layer" {
		t.Errorf("DatasetID = %q, want raw_layer", cfg.DatasetID)
	}
	if cfg.TransformationLayer != "transformation_layer" {
		t.Errorf("TransformationLayer = %q, want transformation_layer", cfg.TransformationLayer)
	}
	if cfg.SubscriptionHelperTable != "t_subscription_helper" {
		t.Errorf("SubscriptionHelperTable = %q", cfg.SubscriptionHelperTable)
	}
	if cfg.AppointmentHelperTable != "t_appointment_helper" {
		t.Errorf("AppointmentHelperTable = %q", cfg.AppointmentHelperTable)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvProjectID, "my-project")
	t.Setenv(EnvDatasetID, "raw_v2")
	t.Setenv(EnvTransformationLayer, "transform_v2")

	cfg := Load()

	if cfg.DatasetID != "raw_v2" {
		t.Errorf("DatasetID = %q, want raw_v2", cfg.DatasetID)
	}
	if cfg.TransformationLayer != "transform_v2" {
		t.Errorf("TransformationLayer = %q, want transform_v2", cfg.TransformationLayer)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"complete config", func(c *Config) {}, false},
		{"missing project", func(c *Config) { c.ProjectID = "" }, true},
		{"missing dataset", func(c *Config) { c.DatasetID = "" }, true},
		{"missing transformation layer", func(c *Config) { c.TransformationLayer = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				ProjectID:           "p",
				DatasetID:           "d",
				TransformationLayer: "t",
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMissingProjectError(t *testing.T) {
	cfg := &Config{DatasetID: "d", TransformationLayer: "t"}

	err := cfg.Validate()
	var missing *ErrMissingEnv
	if !errors.As(err, &missing) {
		t.Fatalf("Validate() error = %v, want ErrMissingEnv", err)
	}
	if missing.Name != EnvProjectID {
		t.Errorf("missing.Name = %q, want %q", missing.Name, EnvProjectID)
	}
}
