// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"arenatv/cli/internal/config"
	"arenatv/cli/internal/functions"
	"arenatv/cli/internal/logging"
)

var (
	serveAddr     string
	serveGRPCAddr string
	serveSchedule string
	serveRedis    string
	serveJSON     bool
)

// serveCmd runs the payment and notification functions as an HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the functions server (payments and notifications)",
	Long: `The serve command runs the backend functions: process-payment for signed-in users
and generate-notifications for operators, plus a scheduler that generates event
notifications periodically. It needs ARENATV_DATABASE_URL and ARENATV_JWT_SECRET;
ARENATV_SERVICE_KEY enables generate-notifications over HTTP and
ARENATV_REDIS_ADDR shares rate limits across instances.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if flags.Changed("grpc-addr") {
			cfg.Server.GRPCAddr = serveGRPCAddr
		}
		if flags.Changed("notify-schedule") {
			cfg.Server.NotifySpec = serveSchedule
		}
		if flags.Changed("redis-addr") {
			cfg.Server.RedisAddr = serveRedis
		}
		log := logging.New(logging.Options{Level: effectiveLogLevel(cfg), JSON: serveJSON})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return functions.Run(ctx, cfg, log)
	},
}

func init() {
	d := config.Defaults().Server
	serveCmd.Flags().StringVar(&serveAddr, "addr", d.Addr, "HTTP listen address")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", d.GRPCAddr, "gRPC health listen address (empty disables)")
	serveCmd.Flags().StringVar(&serveSchedule, "notify-schedule", d.NotifySpec, "Cron schedule for notification generation (empty disables)")
	serveCmd.Flags().StringVar(&serveRedis, "redis-addr", "", "Redis address for shared rate limits")
	serveCmd.Flags().BoolVar(&serveJSON, "json", false, "Log as JSON")
	rootCmd.AddCommand(serveCmd)
}

