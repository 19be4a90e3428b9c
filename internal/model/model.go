// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model holds the storefront's row types as the backend returns them.
// Field names follow the backend schema; embedded relations are populated only
// when the query selected them.
package model

import (
	"encoding/json"
	"time"
)

// EventStatus is the lifecycle of a broadcast.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventLive      EventStatus = "live"
	EventCompleted EventStatus = "completed"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventLive, EventCompleted:
		return true
	}
	return false
}

type Sport struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SportID     string    `json:"sport_id"`
	LogoURL     *string   `json:"logo_url"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Sport       *Sport    `json:"sports,omitempty"`
}

type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  *string     `json:"description"`
	SportID      string      `json:"sport_id"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      *time.Time  `json:"end_time"`
	StreamURL    *string     `json:"stream_url"`
	ThumbnailURL *string     `json:"thumbnail_url"`
	Status       EventStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Sport        *Sport      `json:"sports,omitempty"`
}

// SubscriptionStatus is the state of a paid subscription row.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

type Subscription struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	Status        SubscriptionStatus `json:"status"`
	PaymentMethod PaymentMethodID    `json:"payment_method"`
	PaymentID     *string            `json:"payment_id"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	Event     *Event    `json:"events,omitempty"`
}

type FavoriteSport struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SportID   string    `json:"sport_id"`
	CreatedAt time.Time `json:"created_at"`
	Sport     *Sport    `json:"sports,omitempty"`
}

type FavoriteTeam struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TeamID    string    `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	Team      *Team     `json:"teams,omitempty"`
}

// PaymentMethodID identifies how a subscription was paid.
type PaymentMethodID string

const (
	PaymentBankTransfer PaymentMethodID = "bank_transfer"
	PaymentCard         PaymentMethodID = "card"
	PaymentPayPal       PaymentMethodID = "paypal"
)

type PaymentMethod struct {
	ID   PaymentMethodID
	Name string
}

// PaymentMethods lists the methods offered on the subscription page.
var PaymentMethods = []PaymentMethod{
	{ID: PaymentBankTransfer, Name: "Bank Transfer"},
	{ID: PaymentCard, Name: "Credit/Debit Card"},
	{ID: PaymentPayPal, Name: "PayPal"},
}

// LookupPaymentMethod returns the offered method with the given id.
func LookupPaymentMethod(id string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if string(m.ID) == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

// PaymentRequest is the body of the process-payment function.
type PaymentRequest struct {
	PaymentMethod string   `json:"payment_method"`
	PaymentID     *string  `json:"payment_id,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
}

// PaymentResult is the success body of the process-payment function.
type PaymentResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Subscription json.RawMessage `json:"subscription"`
}
