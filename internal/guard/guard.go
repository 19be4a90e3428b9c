// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides whether a gated command may run for the current auth
// state, should wait, or should send the user elsewhere.
package guard

import (
	"context"

	"arenatv/cli/internal/authstate"
)

// Where guards redirect to.
const (
	SignInRoute       = "/login"
	SubscriptionRoute = "/subscription"
)

// Outcome is what a guard tells its caller to do.
type Outcome int

const (
	// Pending means the state is still loading; show a neutral indicator.
	Pending Outcome = iota
	// Render means the protected content may be shown.
	Render
	// Redirect means the caller must go to Decision.Location instead.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is a guard's verdict. Redirects always replace the current
// location so going back does not land on the gate again.
type Decision struct {
	Outcome  Outcome
	Location string
	Replace  bool
}

func pending() Decision { return Decision{Outcome: Pending} }
func render() Decision  { return Decision{Outcome: Render} }

func redirect(to string) Decision {
	return Decision{Outcome: Redirect, Location: to, Replace: true}
}

// Guard maps a state snapshot to a decision. Implementations are pure.
type Guard interface {
	Decide(st authstate.State) Decision
}

// AuthGuard admits any signed-in user.
type AuthGuard struct{}

func (AuthGuard) Decide(st authstate.State) Decision {
	switch {
	case st.Loading:
		return pending()
	case st.User == nil:
		return redirect(SignInRoute)
	default:
		return render()
	}
}

// EntitlementGuard admits signed-in users with an active subscription.
type EntitlementGuard struct{}

func (EntitlementGuard) Decide(st authstate.State) Decision {
	switch {
	case st.Loading:
		return pending()
	case st.User == nil:
		return redirect(SignInRoute)
	case !st.Entitled:
		return redirect(SubscriptionRoute)
	default:
		return render()
	}
}

// StateSource is what Await reads; *authstate.Provider satisfies it.
type StateSource interface {
	State() authstate.State
	WaitReady(ctx context.Context) (authstate.State, error)
}

// Await returns g's decision once it is no longer pending. onPending, when
// set, is called once if the first decision is pending.
func Await(ctx context.Context, src StateSource, g Guard, onPending func()) (Decision, error) {
	d := g.Decide(src.State())
	if d.Outcome != Pending {
		return d, nil
	}
	if onPending != nil {
		onPending()
	}
	st, err := src.WaitReady(ctx)
	if err != nil {
		return d, err
	}
	return g.Decide(st), nil
}
