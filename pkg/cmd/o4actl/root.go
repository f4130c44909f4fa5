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

// Package o4actl implements the o4actl command line tool for driving an
// OCR4all server through its AJAX endpoints.
package o4actl

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/client"
	"github.com/uniwuezpd/ocr4all-ajax/pkg/config"
	"github.com/uniwuezpd/ocr4all-ajax/pkg/log"
	"github.com/uniwuezpd/ocr4all-ajax/pkg/version"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	baseURL string
	logFile string
	verbose bool

	cfg *config.Config
}

// newClient builds the workflow client from the loaded configuration plus
// any flag overrides.
func (o *rootOptions) newClient() (*client.Client, error) {
	if o.baseURL != "" {
		o.cfg.BaseURL = o.baseURL
	}
	return o.cfg.NewClient()
}

// GetRootCommand returns the root cobra command to be executed
// by o4actl main.
func GetRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:               "o4actl",
		Long:              "A command line utility for driving an OCR4all server through its AJAX endpoints",
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if opts.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			if opts.logFile != "" {
				log.EnableFileOutput(opts.logFile, 20, 14)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "OCR4all server base URL, e.g. http://ocr4all:8080 (overrides OCR4ALL_BASE_URL)")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write logs to this file, with rotation")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newOpenCommand(opts))
	rootCmd.AddCommand(newPagesCommand(opts))
	rootCmd.AddCommand(newThreadsCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newWaitCommand(opts))
	rootCmd.AddCommand(newExecCommand(opts))
	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newRunCommand(opts))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	var output string

	versionCommand := &cobra.Command{
		Use:     "version",
		Aliases: []string{"versions", "v"},
		Short:   "Show version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return version.Print(cmd.OutOrStdout(), output)
		},
	}
	versionCommand.PersistentFlags().StringVarP(&output, "output", "o", "text", "One of 'text' or 'json'")
	return versionCommand
}
