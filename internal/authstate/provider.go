// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package authstate joins the auth session with the subscription check into a
// single shared state that guards and commands read.
//
// A Provider is constructed explicitly and handed to whatever needs it. It
// listens to the session store, starts an entitlement check whenever a user
// appears, and publishes every change to its observers. Checks are ordered by
// a sequence number: only the most recently started check may commit, so a
// slow answer for an old session can never overwrite a newer one.
package authstate

import (
	"context"
	"errors"
	"sync"

	"github.com/pterm/pterm"

	"arenatv/cli/internal/logging"
	"arenatv/cli/internal/session"
)

// SessionSource is the part of the session store the Provider drives.
type SessionSource interface {
	GetInitialSession(ctx context.Context) *session.Session
	Subscribe(fn session.Handler) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
}

// Checker decides entitlement for a session. It must not fail; a failed
// check answers false.
type Checker interface {
	Check(ctx context.Context, s *session.Session) bool
}

// Phase is the coarse position of the state machine.
type Phase int

const (
	Initializing Phase = iota
	Anonymous
	AuthenticatedPending
	AuthenticatedResolved
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Anonymous:
		return "anonymous"
	case AuthenticatedPending:
		return "authenticated (checking subscription)"
	case AuthenticatedResolved:
		return "authenticated"
	}
	return "unknown"
}

// State is a snapshot of the combined auth and entitlement state.
type State struct {
	Session *session.Session
	User    *session.User
	// Loading is true until the first resolution and never again.
	Loading bool
	// Entitled is meaningful only when User is set; it is false otherwise.
	Entitled bool
	// Resolved reports whether a check has committed for the current user.
	Resolved bool
}

// Phase derives the state machine position from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.User == nil && s.Loading:
		return Initializing
	case s.User == nil:
		return Anonymous
	case !s.Resolved:
		return AuthenticatedPending
	default:
		return AuthenticatedResolved
	}
}

func (s State) clone() State {
	s.Session = s.Session.Clone()
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// ErrClosed is returned by WaitReady when the Provider closes before loading
// clears.
var ErrClosed = errors.New("authstate: provider closed")

type observer struct {
	id int
	fn func(State)
}

// Provider owns the combined state. All mutation happens here.
type Provider struct {
	store   SessionSource
	checker Checker
	log     *pterm.Logger

	startOnce sync.Once
	ready     chan struct{}
	done      chan struct{}

	mu       sync.Mutex
	state    State
	seq      uint64
	sawEvent bool
	closed   bool
	baseCtx  context.Context
	cancel   context.CancelFunc
	unsub    func()

	obsMu  sync.Mutex
	obs    []observer
	nextID int
	// notifyMu serializes deliveries so observers see changes one at a time.
	notifyMu sync.Mutex
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger for state transitions.
func WithLogger(l *pterm.Logger) Option { return func(p *Provider) { p.log = l } }

// New creates a Provider in the Initializing state. Nothing happens until
// Start (or any method that needs the session) is called.
func New(store SessionSource, checker Checker, opts ...Option) *Provider {
	p := &Provider{
		store:   store,
		checker: checker,
		log:     logging.Discard(),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		state:   State{Loading: true},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start subscribes to the session store and begins the initial session fetch
// in the background. Calls after the first are no-ops. Background work keeps
// ctx's values but not its deadline or cancellation: it lives until Close.
func (p *Provider) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		p.baseCtx, p.cancel = context.WithCancel(context.WithoutCancel(ctx))
		p.mu.Unlock()

		// Subscribe before fetching so no transition slips between the two.
		unsub := p.store.Subscribe(p.onAuthEvent)

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			unsub()
			return
		}
		p.unsub = unsub
		base := p.baseCtx
		p.mu.Unlock()

		go p.initial(base)
	})
}

// State returns a snapshot of the current state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Ready is closed once loading has cleared.
func (p *Provider) Ready() <-chan struct{} { return p.ready }

// WaitReady starts the Provider if needed and blocks until loading clears,
// ctx ends or the Provider is closed (ErrClosed).
func (p *Provider) WaitReady(ctx context.Context) (State, error) {
	p.Start(ctx)
	select {
	case <-p.ready:
		return p.State(), nil
	default:
	}
	select {
	case <-p.ready:
		return p.State(), nil
	case <-p.done:
		return p.State(), ErrClosed
	case <-ctx.Done():
		return p.State(), ctx.Err()
	}
}

// Subscribe registers fn for every state change. The returned function
// removes it and may be called any number of times.
func (p *Provider) Subscribe(fn func(State)) (unsubscribe func()) {
	p.obsMu.Lock()
	p.nextID++
	id := p.nextID
	p.obs = append(p.obs, observer{id: id, fn: fn})
	p.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.obsMu.Lock()
			defer p.obsMu.Unlock()
			for i, o := range p.obs {
				if o.id == id {
					p.obs = append(p.obs[:i:i], p.obs[i+1:]...)
					return
				}
			}
		})
	}
}

// SignIn signs in through the store and then waits for a fresh entitlement
// check, so the state is current for the new user when it returns.
func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	p.Start(ctx)
	if err := p.store.SignIn(ctx, email, password); err != nil {
		return err
	}
	p.RefreshEntitlement(ctx)
	return nil
}

// SignUp registers a user. It signs in only if the backend returned a session.
func (p *Provider) SignUp(ctx context.Context, email, password string) error {
	p.Start(ctx)
	return p.store.SignUp(ctx, email, password)
}

// SignOut signs out through the store. The state drops to Anonymous as soon
// as the store publishes the sign-out.
func (p *Provider) SignOut(ctx context.Context) error {
	p.Start(ctx)
	return p.store.SignOut(ctx)
}

// RefreshEntitlement re-runs the check for the current user and waits for it.
// Without a user it returns immediately. Loading and the session are untouched.
// If ctx ends before the check answers, the check is handed to the background
// and the current value stands until it does.
func (p *Provider) RefreshEntitlement(ctx context.Context) {
	p.mu.Lock()
	if p.closed || p.state.User == nil || p.baseCtx == nil {
		p.mu.Unlock()
		return
	}
	p.seq++
	seq := p.seq
	s := p.state.Session.Clone()
	base := p.baseCtx
	p.mu.Unlock()

	entitled := p.checker.Check(ctx, s)
	if ctx.Err() != nil {
		go func() {
			p.commit(seq, p.checker.Check(base, s))
		}()
		return
	}
	p.commit(seq, entitled)
}

// Close stops listening to the store and cancels background checks. No state
// change or notification happens after Close returns, and a pending WaitReady
// returns ErrClosed. It must not be called from an observer.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	unsub, cancel := p.unsub, p.cancel
	close(p.done)
	p.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	// Wait out a delivery that started before closed was set.
	p.notifyMu.Lock()
	p.notifyMu.Unlock()
}

func (p *Provider) initial(ctx context.Context) {
	s := p.store.GetInitialSession(ctx)

	p.mu.Lock()
	if p.closed || p.sawEvent {
		p.mu.Unlock()
		return
	}
	if s == nil {
		p.state = State{Loading: p.state.Loading}
		p.resolveLocked()
		p.mu.Unlock()
		p.log.Debug("no stored session")
		p.notify()
		return
	}
	p.seq++
	seq := p.seq
	p.state.Session = s.Clone()
	p.state.User = session.UserOf(s)
	p.state.Entitled = false
	p.state.Resolved = false
	p.mu.Unlock()
	p.notify()

	p.commit(seq, p.checker.Check(ctx, s))
}

// onAuthEvent runs on the store's goroutine. It only updates state and hands
// the network round-trip to a new goroutine.
func (p *Provider) onAuthEvent(ev session.Event, s *session.Session) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.sawEvent = true
	p.seq++
	seq := p.seq

	if s == nil {
		// Revocation is immediate; any check still in flight is now stale.
		p.state = State{Loading: p.state.Loading}
		p.resolveLocked()
		p.mu.Unlock()
		p.log.Debug("signed out", p.log.Args("event", string(ev)))
		p.notify()
		return
	}

	sameUser := p.state.User != nil && p.state.User.ID == s.User.ID
	p.state.Session = s.Clone()
	p.state.User = session.UserOf(s)
	if !sameUser {
		p.state.Entitled = false
		p.state.Resolved = false
	}
	ctx := p.baseCtx
	p.mu.Unlock()

	p.log.Debug("session changed", p.log.Args("event", string(ev), "user", s.User.ID))
	p.notify()

	go func() {
		p.commit(seq, p.checker.Check(ctx, s))
	}()
}

// commit stores a check result if seq is still the latest check.
func (p *Provider) commit(seq uint64, entitled bool) {
	p.mu.Lock()
	if p.closed || seq != p.seq || p.state.User == nil {
		p.mu.Unlock()
		return
	}
	p.state.Entitled = entitled
	p.state.Resolved = true
	p.resolveLocked()
	p.mu.Unlock()

	p.log.Debug("entitlement resolved", p.log.Args("entitled", entitled))
	p.notify()
}

// resolveLocked clears loading on the first resolution.
func (p *Provider) resolveLocked() {
	if p.state.Loading {
		p.state.Loading = false
		close(p.ready)
	}
}

// notify delivers the latest state to every observer.
func (p *Provider) notify() {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	snap := p.state.clone()
	p.mu.Unlock()

	p.obsMu.Lock()
	obs := append([]observer(nil), p.obs...)
	p.obsMu.Unlock()

	for _, o := range obs {
		o.fn(snap.clone())
	}
}
