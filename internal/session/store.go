// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"arenatv/cli/internal/backend"
	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/logging"
)

const (
	// refreshMargin is how long before expiry a token is refreshed.
	refreshMargin = 60 * time.Second
	// defaultRefreshInterval is how often Run looks at the session's expiry.
	defaultRefreshInterval = 15 * time.Second
)

// Handler receives a transition and the session after it (nil on sign-out).
type Handler func(ev Event, s *Session)

type subscription struct {
	id int
	fn Handler
}

// Store holds the current session and publishes its transitions.
//
// Handlers run synchronously on the goroutine that caused the transition, in
// registration order, one transition at a time. A handler must not call back
// into the Store on that goroutine.
type Store struct {
	auth    backend.AuthAPI
	persist Persister
	log     *pterm.Logger
	now     func() time.Time
	tick    time.Duration

	mu      sync.RWMutex
	current *Session
	// gen counts committed transitions.
	gen uint64

	subMu  sync.Mutex
	subs   []subscription
	nextID int

	// emitMu orders transitions: the session swap and its delivery happen
	// together so subscribers never observe them out of order.
	emitMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithPersister replaces the keychain persister.
func WithPersister(p Persister) Option { return func(s *Store) { s.persist = p } }

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *pterm.Logger) Option { return func(s *Store) { s.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithRefreshInterval sets how often Run checks for an expiring token.
func WithRefreshInterval(d time.Duration) Option { return func(s *Store) { s.tick = d } }

// NewStore creates a Store over the auth service.
func NewStore(auth backend.AuthAPI, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		persist: KeychainPersister{},
		log:     logging.Discard(),
		now:     time.Now,
		tick:    defaultRefreshInterval,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Session returns a copy of the current session, or nil.
func (s *Store) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers fn for every future transition. The returned function
// removes it and may be called any number of times.
func (s *Store) Subscribe(fn Handler) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// commit swaps in next and delivers ev to every subscriber.
func (s *Store) commit(ev Event, next *Session) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = next.Clone()
	s.gen++
	s.mu.Unlock()

	s.subMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()

	s.log.Debug("auth event", s.log.Args("event", string(ev), "signed_in", next != nil))
	for _, sub := range subs {
		sub.fn(ev, next.Clone())
	}
}

// GetInitialSession restores the persisted session, refreshing it when the
// access token has expired. It never fails: problems are logged and yield nil.
// The restored session becomes current without publishing an event, unless a
// transition happened meanwhile; then the current session is returned instead.
func (s *Store) GetInitialSession(ctx context.Context) *Session {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	stored, err := s.persist.Load()
	if err != nil {
		s.log.Warn("could not read stored session", s.log.Args("error", err))
		return nil
	}
	if stored == nil {
		return nil
	}

	refreshed := false
	if stored.ExpiresWithin(s.now(), refreshMargin) {
		tok, err := s.auth.RefreshSession(ctx, stored.RefreshToken)
		if err != nil {
			if apperrors.Is(err, apperrors.AuthRejected) {
				if cerr := s.persist.Clear(); cerr != nil {
					s.log.Warn("could not clear stored session", s.log.Args("error", cerr))
				}
			}
			s.log.Warn("could not refresh stored session", s.log.Args("error", err))
			return nil
		}
		next, err := fromToken(tok, s.now())
		if err != nil {
			s.log.Warn("refresh returned an unusable session", s.log.Args("error", err))
			return nil
		}
		stored, refreshed = next, true
	}

	s.mu.Lock()
	if s.gen != gen {
		cur := s.current.Clone()
		s.mu.Unlock()
		return cur
	}
	s.current = stored.Clone()
	s.mu.Unlock()

	if refreshed {
		s.save(stored)
	}
	return stored
}

// SignIn authenticates with email and password and publishes SignedIn.
// The session is delivered to subscribers rather than returned.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	tok, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	next, err := fromToken(tok, s.now())
	if err != nil {
		return apperrors.Wrap(apperrors.AuthRejected, "sign in returned an unusable session", err)
	}
	s.save(next)
	s.commit(SignedIn, next)
	return nil
}

// SignUp registers a user. When the project hands back a session right away
// (no email confirmation) it is published as SignedIn.
func (s *Store) SignUp(ctx context.Context, email, password string) error {
	resp, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if resp == nil || resp.Session == nil {
		return nil
	}
	next, err := fromToken(resp.Session, s.now())
	if err != nil {
		s.log.Warn("sign up returned an unusable session", s.log.Args("error", err))
		return nil
	}
	s.save(next)
	s.commit(SignedIn, next)
	return nil
}

// SignOut revokes the session remotely and always clears it locally,
// publishing SignedOut. Only a transport failure is reported.
func (s *Store) SignOut(ctx context.Context) error {
	var remoteErr error
	if cur := s.Session(); cur != nil {
		remoteErr = s.auth.SignOut(ctx, cur.AccessToken)
		if apperrors.Is(remoteErr, apperrors.AuthRejected) {
			remoteErr = nil
		}
	}
	s.clearLocal()
	return remoteErr
}

// Refresh exchanges the refresh token for a new pair and publishes
// TokenRefreshed. A rejected refresh token signs the user out locally.
func (s *Store) Refresh(ctx context.Context) error {
	cur := s.Session()
	if cur == nil {
		return apperrors.New(apperrors.Unauthorized, "not signed in")
	}
	tok, err := s.auth.RefreshSession(ctx, cur.RefreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.AuthRejected) {
			s.log.Info("session expired, signing out", s.log.Args("user", cur.User.Email))
			s.clearLocal()
		}
		return err
	}
	if tok.User.ID == "" {
		tok.User = backend.UserResponse{ID: cur.User.ID, Email: cur.User.Email}
	}
	next, err := fromToken(tok, s.now())
	if err != nil {
		return apperrors.Wrap(apperrors.AuthRejected, "refresh returned an unusable session", err)
	}
	s.save(next)
	s.commit(TokenRefreshed, next)
	return nil
}

// ReloadUser re-reads the user from the auth service and publishes
// UserUpdated when it changed.
func (s *Store) ReloadUser(ctx context.Context) error {
	cur := s.Session()
	if cur == nil {
		return apperrors.New(apperrors.Unauthorized, "not signed in")
	}
	u, err := s.auth.GetUser(ctx, cur.AccessToken)
	if err != nil {
		return err
	}
	if u.ID == cur.User.ID && u.Email == cur.User.Email {
		return nil
	}
	next := cur.Clone()
	next.User = User{ID: u.ID, Email: u.Email}
	s.save(next)
	s.commit(UserUpdated, next)
	return nil
}

// Run refreshes the token shortly before it expires until ctx is done.
func (s *Store) Run(ctx context.Context) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cur := s.Session()
			if cur == nil || !cur.ExpiresWithin(s.now(), refreshMargin) {
				continue
			}
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("token refresh failed", s.log.Args("error", err))
			}
		}
	}
}

func (s *Store) clearLocal() {
	if err := s.persist.Clear(); err != nil {
		s.log.Warn("could not clear stored session", s.log.Args("error", err))
	}
	s.commit(SignedOut, nil)
}

func (s *Store) save(next *Session) {
	if err := s.persist.Save(next); err != nil {
		s.log.Warn("could not store session", s.log.Args("error", err))
	}
}
