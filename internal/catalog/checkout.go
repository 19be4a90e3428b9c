// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"context"
	"strings"

	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/model"
)

// Offer is the subscription price shown on the checkout.
type Offer struct {
	Amount   float64
	Currency string
}

// Subscribe pays for a subscription with the given method and then re-runs
// the entitlement check so the new subscription unlocks content right away.
func (s *Service) Subscribe(ctx context.Context, method, paymentID string, offer Offer) (*model.PaymentResult, error) {
	tok, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	pm, ok := model.LookupPaymentMethod(strings.TrimSpace(method))
	if !ok {
		return nil, apperrors.New(apperrors.InvalidRequest, "payment method must be bank_transfer, card or paypal")
	}

	req := model.PaymentRequest{PaymentMethod: string(pm.ID)}
	if paymentID != "" {
		req.PaymentID = &paymentID
	}
	if offer.Amount > 0 {
		req.Amount = &offer.Amount
	}
	if offer.Currency != "" {
		req.Currency = &offer.Currency
	}

	res, err := s.api.ProcessPayment(ctx, tok, req)
	if err != nil {
		return nil, err
	}
	s.auth.RefreshEntitlement(ctx)
	return res, nil
}
