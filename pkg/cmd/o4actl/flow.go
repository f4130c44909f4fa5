// Copyright (c) 2024 The ocr4all-ajax Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package o4actl

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/client"
)

// signalContext returns a context cancelled on SIGINT, so a long poll loop
// can be interrupted cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the process flow step the server is busy with",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			cur, err := c.CurrentProcess(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if cur == "" {
				p.OK("idle")
			} else {
				p.Printf("busy: %s\n", cur)
			}
			return nil
		},
	}
}

func newWaitCommand(opts *rootOptions) *cobra.Command {
	var timeoutS int

	waitCmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the running process flow finishes",
		Example: `  # Wait with the configured timeout (default 1h)
  o4actl wait

  # Give up after five minutes
  o4actl wait --timeout-s 300`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			timeout := opts.cfg.WaitTimeout()
			if timeoutS > 0 {
				timeout = time.Duration(timeoutS) * time.Second
			}
			p := newPrinter(cmd.OutOrStdout())
			if err := c.WaitForCompletion(ctx, timeout); err != nil {
				p.Fail("process flow did not finish")
				return err
			}
			p.OK("process flow finished")
			return nil
		},
	}

	waitCmd.PersistentFlags().IntVar(&timeoutS, "timeout-s", 0, "Maximum time to wait in seconds (0 uses the configured OCR4ALL_WAIT_TIMEOUT_S)")
	return waitCmd
}

// loadProcessFlowRequest reads the execute payload pieces from flags and an
// optional settings file.
func loadProcessFlowRequest(pageIDs, processes []string, settingsFile string) (client.ProcessFlowRequest, error) {
	req := client.ProcessFlowRequest{
		PageIDs:            pageIDs,
		ProcessesToExecute: processes,
		ProcessSettings:    map[string]interface{}{},
	}
	if settingsFile == "" {
		return req, nil
	}

	data, err := os.ReadFile(settingsFile)
	if err != nil {
		return req, errors.Wrap(err, "read settings file")
	}
	if err := json.Unmarshal(data, &req.ProcessSettings); err != nil {
		return req, errors.Wrapf(err, "parse settings file %s", settingsFile)
	}
	return req, nil
}

func newExecCommand(opts *rootOptions) *cobra.Command {
	var (
		pageIDs      []string
		processes    []string
		settingsFile string
		noRetry      bool
		wait         bool
	)

	execCmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute a process flow on the open project",
		Long: `Starts the given processes for the given pages. With no --pages flag
every page of the project is processed. By default the call is retried
while the server is busy, the way the web UI does.`,
		Example: `  # Run preprocessing and segmentation on all pages, then wait
  o4actl exec --processes preprocessing,segmentationKraken --settings flow.json --wait

  # Run on selected pages, single attempt
  o4actl exec --pages 0001,0002 --processes recognition --no-retry`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(processes) == 0 {
				return errors.New("at least one process is required, e.g. --processes preprocessing")
			}

			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			p := newPrinter(cmd.OutOrStdout())

			if len(pageIDs) == 0 {
				pageIDs, err = c.PageIDs(ctx, client.ImageTypeBinary)
				if err != nil {
					return err
				}
			}

			req, err := loadProcessFlowRequest(pageIDs, processes, settingsFile)
			if err != nil {
				return err
			}

			if noRetry {
				err = c.ExecuteProcessFlow(ctx, req)
			} else {
				err = c.ExecuteProcessFlowWithRetries(ctx, req, opts.cfg.RetryOptions())
			}
			if err != nil {
				p.Fail("process flow not started")
				return err
			}
			p.OK("process flow started for %d pages", len(req.PageIDs))

			if !wait {
				return nil
			}
			if err := c.WaitForCompletion(ctx, opts.cfg.WaitTimeout()); err != nil {
				p.Fail("process flow did not finish")
				return err
			}
			p.OK("process flow finished")
			return nil
		},
	}

	execCmd.PersistentFlags().StringSliceVar(&pageIDs, "pages", nil, "Page IDs to process (default: all pages)")
	execCmd.PersistentFlags().StringSliceVar(&processes, "processes", nil, "Processes to execute, in order")
	execCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Path to a JSON file with process settings")
	execCmd.PersistentFlags().BoolVar(&noRetry, "no-retry", false, "Issue a single execute call instead of retrying while busy")
	execCmd.PersistentFlags().BoolVar(&wait, "wait", false, "Wait for the process flow to finish")
	return execCmd
}
