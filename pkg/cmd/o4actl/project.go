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
	"github.com/spf13/cobra"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/client"
)

func newOpenCommand(opts *rootOptions) *cobra.Command {
	var (
		imageType    string
		resetSession bool
	)

	openCmd := &cobra.Command{
		Use:   "open PROJECT_DIR",
		Short: "Open and validate an OCR4all project",
		Example: `  # Open a project by its directory on the server
  o4actl open /var/ocr4all/data/book

  # Open without resetting the server-side session
  o4actl open /var/ocr4all/data/book --reset-session=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if err := c.OpenProject(cmd.Context(), args[0], imageType, resetSession); err != nil {
				p.Fail("open project %s", args[0])
				return err
			}
			p.OK("opened project %s", args[0])
			return nil
		},
	}

	openCmd.PersistentFlags().StringVar(&imageType, "image-type", client.ImageTypeOriginal, "Image type to open the project with")
	openCmd.PersistentFlags().BoolVar(&resetSession, "reset-session", true, "Reset the server-side project session")
	return openCmd
}

func newPagesCommand(opts *rootOptions) *cobra.Command {
	var imageType string

	pagesCmd := &cobra.Command{
		Use:   "pages",
		Short: "List the page IDs of the open project",
		Example: `  # List binarized pages
  o4actl pages

  # List original pages
  o4actl pages --image-type Original`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ids, err := c.PageIDs(cmd.Context(), imageType)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for _, id := range ids {
				p.Printf("%s\n", id)
			}
			return nil
		},
	}

	pagesCmd.PersistentFlags().StringVar(&imageType, "image-type", client.ImageTypeBinary, "Image type to list pages for")
	return pagesCmd
}

func newThreadsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "Show the worker thread count of the OCR4all server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			n, err := c.Threads(cmd.Context())
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).Printf("%d\n", n)
			return nil
		},
	}
}

func newConvertCommand(opts *rootOptions) *cobra.Command {
	var (
		deleteBlank bool
		dpi         int
		skipCheck   bool
	)

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the project's PDF files to page images",
		Long: `Checks whether the open project contains PDF files that still need
conversion and, if so, triggers the PDF-to-PNG conversion. The server may
keep converting after the HTTP call times out; that case is reported as
started, not failed.`,
		Example: `  # Convert with defaults (300 DPI, keep blank pages)
  o4actl convert

  # Convert at 400 DPI and drop blank pages
  o4actl convert --dpi 400 --delete-blank`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())

			if !skipCheck {
				needed, err := c.CheckPDF(cmd.Context())
				if err != nil {
					return err
				}
				if !needed {
					p.OK("no PDF files need conversion")
					return nil
				}
			}

			resp, err := c.ConvertProjectFiles(cmd.Context(), deleteBlank, dpi)
			if err != nil {
				p.Fail("conversion failed")
				return err
			}
			if resp == "" {
				p.OK("conversion started, still running server-side")
			} else {
				p.OK("conversion finished: %s", resp)
			}
			return nil
		},
	}

	convertCmd.PersistentFlags().BoolVar(&deleteBlank, "delete-blank", false, "Delete blank pages during conversion")
	convertCmd.PersistentFlags().IntVar(&dpi, "dpi", 300, "DPI for the converted page images")
	convertCmd.PersistentFlags().BoolVar(&skipCheck, "skip-check", false, "Convert without checking for PDF files first")
	return convertCmd
}
