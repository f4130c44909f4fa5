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
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/client"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		imageType    string
		processes    []string
		settingsFile string
		deleteBlank  bool
		dpi          int
	)

	runCmd := &cobra.Command{
		Use:   "run PROJECT_DIR",
		Short: "Run the full workflow: open, convert PDFs, execute, wait",
		Long: `Drives one complete OCR4all workflow the way the web UI would:
opens and validates the project, converts PDF files to page images when
needed, executes the given processes on every page with busy-retries, and
waits for the process flow to finish.`,
		Example: `  # Full run with a settings file
  o4actl run /var/ocr4all/data/book --processes preprocessing,segmentationKraken,recognition --settings flow.json`,
		Args: cobra.ExactArgs(1),
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
			projectDir := args[0]

			if err := c.OpenProject(ctx, projectDir, imageType, true); err != nil {
				p.Fail("open project %s", projectDir)
				return err
			}
			p.OK("opened project %s", projectDir)

			needsConvert, err := c.CheckPDF(ctx)
			if err != nil {
				return err
			}
			if needsConvert {
				if _, err := c.ConvertProjectFiles(ctx, deleteBlank, dpi); err != nil {
					p.Fail("PDF conversion failed")
					return err
				}
				p.OK("PDF conversion triggered")
				if err := c.WaitForCompletion(ctx, opts.cfg.WaitTimeout()); err != nil {
					return err
				}
			}

			pageIDs, err := c.PageIDs(ctx, client.ImageTypeBinary)
			if err != nil {
				return err
			}
			if len(pageIDs) == 0 {
				// checkDir can answer "true" for a directory that has no
				// converted pages yet; list original images instead.
				pageIDs, err = c.PageIDs(ctx, client.ImageTypeOriginal)
				if err != nil {
					return err
				}
			}
			p.OK("project has %d pages", len(pageIDs))

			req, err := loadProcessFlowRequest(pageIDs, processes, settingsFile)
			if err != nil {
				return err
			}
			if err := c.ExecuteProcessFlowWithRetries(ctx, req, opts.cfg.RetryOptions()); err != nil {
				p.Fail("process flow not started")
				return err
			}
			p.OK("process flow started")

			if err := c.WaitForCompletion(ctx, opts.cfg.WaitTimeout()); err != nil {
				p.Fail("process flow did not finish")
				return err
			}
			p.OK("process flow finished")
			return nil
		},
	}

	runCmd.PersistentFlags().StringVar(&imageType, "image-type", client.ImageTypeOriginal, "Image type to open the project with")
	runCmd.PersistentFlags().StringSliceVar(&processes, "processes", nil, "Processes to execute, in order")
	runCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Path to a JSON file with process settings")
	runCmd.PersistentFlags().BoolVar(&deleteBlank, "delete-blank", false, "Delete blank pages during PDF conversion")
	runCmd.PersistentFlags().IntVar(&dpi, "dpi", 300, "DPI for converted page images")
	return runCmd
}
