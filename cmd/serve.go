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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var servePort int

// serveCmd exposes the pipelines behind an HTTP trigger, the shape Cloud Run
// jobs and Cloud Scheduler expect. Each request runs one incremental pass.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the pipelines behind an HTTP trigger",
	Example: `./bq_helper_etl serve --port 8080`,
	RunE:    runServe,
}

// triggerResponse is the JSON body returned to the scheduler.
type triggerResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Timestamp    string `json:"timestamp"`
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, client, err := newService(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	defer logger.Sync()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		resp := triggerResponse{
			Status:    "SUCCESS",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		if err := svc.Run(r.Context()); err != nil {
			resp.Status = "FAILURE"
			resp.ErrorMessage = err.Error()
			code = http.StatusInternalServerError
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Errorw("response encoding failed", "error", err)
		}
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", servePort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infow("listening for pipeline triggers", "port", servePort)
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
}
