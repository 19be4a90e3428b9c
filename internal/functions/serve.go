// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package functions

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"arenatv/cli/internal/config"
	"arenatv/cli/internal/dsn"
)

// healthService is the name the gRPC health service reports for.
const healthService = "arenatv.functions"

// Run starts the functions server from cfg and blocks until ctx is done,
// then shuts everything down.
func Run(ctx context.Context, cfg config.Config, log *pterm.Logger) error {
	sc := cfg.Server
	if sc.DatabaseURL == "" {
		return errors.New("database URL is not configured (set ARENATV_DATABASE_URL)")
	}
	if sc.JWTSecret == "" {
		return errors.New("JWT secret is not configured (set ARENATV_JWT_SECRET)")
	}
	if sc.ServiceKey == "" {
		log.Warn("ARENATV_SERVICE_KEY is not set; generate-notifications will reject every call")
	}

	if info, err := dsn.Parse(sc.DatabaseURL); err == nil {
		log.Info("connecting to database", log.Args("dsn", info.Redacted()))
	}
	pg, err := OpenPG(ctx, sc.DatabaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	if sc.PaymentLimit < 1 {
		fallback := config.Defaults().Server.PaymentLimit
		log.Warn("payment_limit_per_minute must be at least 1, using the default", log.Args("configured", sc.PaymentLimit, "default", fallback))
		sc.PaymentLimit = fallback
	}
	limits := map[string]Limit{paymentBucket: {Limit: sc.PaymentLimit, Window: time.Minute}}
	var limiter Limiter = NewMemoryLimiter(limits)
	if sc.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, using in-memory rate limits", log.Args("addr", sc.RedisAddr, "error", err))
		} else {
			limiter = NewRedisLimiter(rdb, limits)
		}
	}

	metrics := NewMetrics()
	srv := NewServer(Options{
		Procedures:      pg,
		Verifier:        NewTokenVerifier(sc.JWTSecret),
		Limiter:         limiter,
		Metrics:         metrics,
		Logger:          log,
		ServiceKey:      sc.ServiceKey,
		Readiness:       pg.Ping,
		DefaultAmount:   cfg.Payment.Amount,
		DefaultCurrency: cfg.Payment.Currency,
	})

	sched, err := NewScheduler(sc.NotifySpec, pg, metrics, log)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              sc.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hs := health.NewServer()
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)

	errCh := make(chan error, 2)
	go func() {
		log.Info("functions server listening", log.Args("addr", sc.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if sc.GRPCAddr != "" {
		lis, err := net.Listen("tcp", sc.GRPCAddr)
		if err != nil {
			_ = httpSrv.Close()
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			log.Info("grpc health listening", log.Args("addr", sc.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)
	sched.Start()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	log.Info("shutting down")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", log.Args("error", err))
	}
	grpcSrv.GracefulStop()
	return runErr
}
