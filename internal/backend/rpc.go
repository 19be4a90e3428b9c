// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"

	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/model"
)

// rpc calls POST /rest/v1/rpc/<fn> with named arguments.
func (h *HTTP) rpc(ctx context.Context, accessToken, fn string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	req, err := h.newRequest(ctx, http.MethodPost, restPath+"/rpc/"+fn, nil, args, accessToken)
	if err != nil {
		return err
	}
	return h.do(req, out)
}

// CheckActiveSubscription calls the check_active_subscription procedure.
// The result is a bare JSON boolean.
func (h *HTTP) CheckActiveSubscription(ctx context.Context, accessToken, userID string) (bool, error) {
	var active bool
	args := map[string]string{"p_user_id": userID}
	if err := h.rpc(ctx, accessToken, "check_active_subscription", args, &active); err != nil {
		return false, restError("check subscription", err)
	}
	return active, nil
}

// ProcessPayment invokes the process-payment function. Failures carry the
// function's error message under the PaymentFailed kind.
func (h *HTTP) ProcessPayment(ctx context.Context, accessToken string, payment model.PaymentRequest) (*model.PaymentResult, error) {
	req, err := h.newRequest(ctx, http.MethodPost, functionsPath+"/process-payment", nil, payment, accessToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.PaymentFailed, "process payment", err)
	}
	var out model.PaymentResult
	if err := h.do(req, &out); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			if se.Status == http.StatusUnauthorized {
				return nil, apperrors.Wrap(apperrors.Unauthorized, "process payment", se)
			}
			return nil, apperrors.Wrap(apperrors.PaymentFailed, se.Message, se)
		}
		return nil, apperrors.Wrap(apperrors.BackendUnavailable, "process payment", err)
	}
	if !out.Success {
		return nil, apperrors.New(apperrors.PaymentFailed, "payment was not accepted")
	}
	return &out, nil
}
