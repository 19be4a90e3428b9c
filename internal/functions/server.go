// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package functions implements the serverless functions of the backend
// project as a standalone HTTP server: payment processing for signed-in users
// and notification generation for operators and the scheduler.
package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"arenatv/cli/internal/backend"
	"arenatv/cli/internal/logging"
	"arenatv/cli/internal/model"
)

const paymentBucket = "process-payment"

// UserVerifier resolves a bearer token to the user it was issued to.
type UserVerifier interface {
	UserID(token string) (uuid.UUID, error)
}

// Options wires a Server.
type Options struct {
	Procedures Procedures
	Verifier   UserVerifier
	Limiter    Limiter
	Metrics    *Metrics
	Logger     *pterm.Logger
	// ServiceKey authorizes generate-notifications. Empty rejects every call.
	ServiceKey string
	// Readiness is consulted by /healthz when set.
	Readiness       func(ctx context.Context) error
	DefaultAmount   float64
	DefaultCurrency string
}

// Server handles the function endpoints.
type Server struct {
	opts   Options
	log    *pterm.Logger
	router chi.Router
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.DefaultAmount == 0 {
		opts.DefaultAmount = 60
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "THB"
	}
	s := &Server{opts: opts, log: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(opts.Metrics.Middleware)
	r.Use(s.recoverer)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	r.Route("/functions/v1", func(r chi.Router) {
		r.Post("/process-payment", s.processPayment)
		r.Post("/generate-notifications", s.generateNotifications)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Subscription json.RawMessage `json:"subscription,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// recoverer turns a panic into the same 500 body as any unexpected failure.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error("Unexpected error", s.log.Args("panic", rec, "request_id", middleware.GetReqID(r.Context())))
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.opts.Readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Readiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) processPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := s.opts.Verifier.UserID(backend.BearerFromRequest(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if s.opts.Limiter != nil {
		ok, err := s.opts.Limiter.Allow(r.Context(), paymentBucket, userID.String())
		switch {
		case err != nil:
			s.log.Warn("rate limiter unavailable, allowing request", s.log.Args("error", err))
		case !ok:
			s.opts.Metrics.limited.WithLabelValues(paymentBucket).Inc()
			writeError(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
	}

	var req model.PaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		s.log.Error("Unexpected error", s.log.Args("error", err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if req.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, "Payment method is required")
		return
	}

	args := PaymentArgs{
		UserID:        userID,
		PaymentMethod: req.PaymentMethod,
		PaymentID:     req.PaymentID,
		Amount:        s.opts.DefaultAmount,
		Currency:      s.opts.DefaultCurrency,
	}
	if req.Amount != nil {
		args.Amount = *req.Amount
	}
	if req.Currency != nil && *req.Currency != "" {
		args.Currency = *req.Currency
	}

	sub, err := s.opts.Procedures.ProcessPayment(r.Context(), args)
	if err != nil {
		s.opts.Metrics.payment(req.PaymentMethod, "error")
		s.log.Error("Error processing payment", s.log.Args("error", err, "user", userID.String()))
		writeError(w, http.StatusInternalServerError, "Failed to process payment")
		return
	}
	s.opts.Metrics.payment(req.PaymentMethod, "ok")
	s.log.Info("payment processed", s.log.Args("user", userID.String(), "method", req.PaymentMethod))
	writeJSON(w, http.StatusOK, successBody{
		Success:      true,
		Message:      "Payment processed successfully",
		Subscription: sub,
	})
}

func (s *Server) generateNotifications(w http.ResponseWriter, r *http.Request) {
	key := backend.BearerFromRequest(r)
	if key == "" {
		key = r.Header.Get("apikey")
	}
	if !keyMatches(key, s.opts.ServiceKey) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	err := s.opts.Procedures.GenerateEventNotifications(r.Context())
	s.opts.Metrics.notificationRun("http", err)
	if err != nil {
		s.log.Error("Error generating notifications", s.log.Args("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to generate notifications")
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true, Message: "Notifications generated successfully"})
}
