package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arenatv/cli/internal/authstate"
	"arenatv/cli/internal/session"
)

func TestDecide(t *testing.T) {
	user := &session.User{ID: "u1"}

	tests := []struct {
		name        string
		state       authstate.State
		auth        Decision
		entitlement Decision
	}{
		{
			name:        "loading",
			state:       authstate.State{Loading: true},
			auth:        Decision{Outcome: Pending},
			entitlement: Decision{Outcome: Pending},
		},
		{
			name:        "loading with user",
			state:       authstate.State{Loading: true, User: user},
			auth:        Decision{Outcome: Pending},
			entitlement: Decision{Outcome: Pending},
		},
		{
			name:        "anonymous",
			state:       authstate.State{},
			auth:        Decision{Outcome: Redirect, Location: SignInRoute, Replace: true},
			entitlement: Decision{Outcome: Redirect, Location: SignInRoute, Replace: true},
		},
		{
			name:        "signed in without subscription",
			state:       authstate.State{User: user, Resolved: true},
			auth:        Decision{Outcome: Render},
			entitlement: Decision{Outcome: Redirect, Location: SubscriptionRoute, Replace: true},
		},
		{
			name:        "subscribed",
			state:       authstate.State{User: user, Entitled: true, Resolved: true},
			auth:        Decision{Outcome: Render},
			entitlement: Decision{Outcome: Render},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.auth, AuthGuard{}.Decide(tt.state))
			assert.Equal(t, tt.entitlement, EntitlementGuard{}.Decide(tt.state))
		})
	}
}

type fakeSource struct {
	initial authstate.State
	ready   authstate.State
	delay   time.Duration
}

func (f fakeSource) State() authstate.State { return f.initial }

func (f fakeSource) WaitReady(ctx context.Context) (authstate.State, error) {
	select {
	case <-time.After(f.delay):
		return f.ready, nil
	case <-ctx.Done():
		return f.initial, ctx.Err()
	}
}

func TestAwait(t *testing.T) {
	user := &session.User{ID: "u1"}

	t.Run("settled state skips pending", func(t *testing.T) {
		called := false
		src := fakeSource{initial: authstate.State{User: user, Entitled: true}}
		d, err := Await(context.Background(), src, EntitlementGuard{}, func() { called = true })
		require.NoError(t, err)
		assert.Equal(t, Render, d.Outcome)
		assert.False(t, called)
	})

	t.Run("waits through loading", func(t *testing.T) {
		called := 0
		src := fakeSource{
			initial: authstate.State{Loading: true},
			ready:   authstate.State{User: user},
			delay:   5 * time.Millisecond,
		}
		d, err := Await(context.Background(), src, EntitlementGuard{}, func() { called++ })
		require.NoError(t, err)
		assert.Equal(t, Decision{Outcome: Redirect, Location: SubscriptionRoute, Replace: true}, d)
		assert.Equal(t, 1, called)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := fakeSource{initial: authstate.State{Loading: true}, delay: time.Hour}
		d, err := Await(ctx, src, AuthGuard{}, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Pending, d.Outcome)
	})
}
