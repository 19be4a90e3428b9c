// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the ArenaTV CLI.
// It implements subcommands for signing in, browsing the sports catalog,
// managing favorites and notifications, subscribing and watching streams,
// plus the functions server, using the Cobra CLI framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"arenatv/cli/internal/backend"
	"arenatv/cli/internal/config"
)

var (
	showVersion bool
	verbose     bool
	logLevel    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "arenatv",
	Short:         "ArenaTV CLI for live and on-demand sports streams",
	Long:          `ArenaTV is a command-line client for the ArenaTV sports streaming service. Browse sports, teams and events, subscribe, and watch streams.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("arenatv %s\n", Version)

			cfg, err := config.Load()
			if err != nil || cfg.Validate() != nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			be := backend.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout.Duration)
			backendVersion, err := be.GetVersion(ctx)
			if err != nil {
				backendVersion = "unknown"
			}
			fmt.Printf("backend %s\n", backendVersion)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var r *reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
}
