package authstate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arenatv/cli/internal/backend/backendtest"
	"arenatv/cli/internal/entitlement"
	"arenatv/cli/internal/session"
)

const (
	userA = "6f1c2a3e-9a41-4c1e-8f0e-5b7f1d2c3a4b"
	userB = "0b8e7d6c-5a4f-4e3d-9c2b-1a0f9e8d7c6b"

	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func sessionFor(id string) *session.Session {
	return &session.Session{
		AccessToken:  "at-" + id,
		RefreshToken: "rt-" + id,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         session.User{ID: id, Email: id + "@example.com"},
	}
}

// stubSource is a session source driven by the test.
type stubSource struct {
	initial chan *session.Session

	mu       sync.Mutex
	handlers map[int]session.Handler
	nextID   int
}

func newStubSource() *stubSource {
	return &stubSource{initial: make(chan *session.Session, 1), handlers: map[int]session.Handler{}}
}

func (s *stubSource) GetInitialSession(ctx context.Context) *session.Session {
	select {
	case v := <-s.initial:
		return v
	case <-ctx.Done():
		return nil
	}
}

func (s *stubSource) Subscribe(fn session.Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.handlers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

func (s *stubSource) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func (s *stubSource) emit(ev session.Event, sess *session.Session) {
	s.mu.Lock()
	hs := make([]session.Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(ev, sess.Clone())
	}
}

func (s *stubSource) SignIn(ctx context.Context, email, password string) error {
	s.emit(session.SignedIn, sessionFor(email))
	return nil
}

func (s *stubSource) SignUp(ctx context.Context, email, password string) error { return nil }

func (s *stubSource) SignOut(ctx context.Context) error {
	s.emit(session.SignedOut, nil)
	return nil
}

// scriptedChecker answers each call through fn, numbered from 1.
type scriptedChecker struct {
	calls atomic.Int32
	fn    func(n int, s *session.Session) bool
}

func (c *scriptedChecker) Check(ctx context.Context, s *session.Session) bool {
	n := int(c.calls.Add(1))
	return c.fn(n, s)
}

func always(v bool) *scriptedChecker {
	return &scriptedChecker{fn: func(int, *session.Session) bool { return v }}
}

func TestInitialFetch(t *testing.T) {
	tests := []struct {
		name      string
		initial   *session.Session
		entitled  bool
		wantUser  bool
		wantPhase Phase
		wantCalls int32
	}{
		{name: "no session", initial: nil, wantPhase: Anonymous, wantCalls: 0},
		{name: "entitled session", initial: sessionFor(userA), entitled: true, wantUser: true, wantPhase: AuthenticatedResolved, wantCalls: 1},
		{name: "unentitled session", initial: sessionFor(userA), entitled: false, wantUser: true, wantPhase: AuthenticatedResolved, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newStubSource()
			chk := always(tt.entitled)
			p := New(src, chk)
			defer p.Close()

			assert.Equal(t, Initializing, p.State().Phase())
			src.initial <- tt.initial

			st, err := p.WaitReady(context.Background())
			require.NoError(t, err)
			assert.False(t, st.Loading)
			assert.Equal(t, tt.wantUser, st.User != nil)
			assert.Equal(t, tt.entitled, st.Entitled)
			assert.Equal(t, tt.wantPhase, st.Phase())
			assert.Equal(t, tt.wantCalls, chk.calls.Load())
		})
	}
}

func TestStartIsIdempotent(t *testing.T) {
	src := newStubSource()
	p := New(src, always(false))
	defer p.Close()

	p.Start(context.Background())
	p.Start(context.Background())
	assert.Equal(t, 1, src.subscribers())
}

// Mounting with a valid stored session and an active subscription ends in
// {loading:false, user:<id>, entitled:true}.
func TestRestoresEntitledSession(t *testing.T) {
	fake := backendtest.New()
	fake.Accounts["fan@example.com"] = backendtest.Account{ID: userA, Password: "secret"}
	fake.SetSubscribed(userA, true)

	persist := &session.MemoryPersister{}
	require.NoError(t, persist.Save(&session.Session{
		AccessToken:  "stored",
		RefreshToken: "refresh-1|" + userA + "|fan@example.com",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         session.User{ID: userA, Email: "fan@example.com"},
	}))
	store := session.NewStore(fake, session.WithPersister(persist))
	p := New(store, entitlement.New(fake))
	defer p.Close()

	st, err := p.WaitReady(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Loading)
	require.NotNil(t, st.User)
	assert.Equal(t, userA, st.User.ID)
	assert.True(t, st.Entitled)
}

// Signing out while entitled drops to {user:nil, entitled:false} with no
// further subscription check.
func TestSignOutWhileEntitled(t *testing.T) {
	fake := backendtest.New()
	fake.Accounts["fan@example.com"] = backendtest.Account{ID: userA, Password: "secret"}
	fake.SetSubscribed(userA, true)

	store := session.NewStore(fake, session.WithPersister(&session.MemoryPersister{}))
	p := New(store, entitlement.New(fake))
	defer p.Close()

	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.SignIn(context.Background(), "fan@example.com", "secret"))
	require.True(t, p.State().Entitled)

	// Let the event-triggered check settle before counting.
	assert.Eventually(t, func() bool { return fake.CallCount("CheckActiveSubscription") == 2 }, waitFor, tick)
	before := fake.CallCount("CheckActiveSubscription")

	require.NoError(t, p.SignOut(context.Background()))
	st := p.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Session)
	assert.False(t, st.Entitled)
	assert.Equal(t, Anonymous, st.Phase())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, fake.CallCount("CheckActiveSubscription"))
}

// entitled is never true while user is nil, across any event sequence.
func TestEntitledNeverTrueWithoutUser(t *testing.T) {
	src := newStubSource()
	chk := &scriptedChecker{fn: func(n int, s *session.Session) bool {
		time.Sleep(time.Duration(n%4) * time.Millisecond)
		return true
	}}
	p := New(src, chk)
	defer p.Close()

	var violations atomic.Int32
	unsub := p.Subscribe(func(st State) {
		if st.User == nil && st.Entitled {
			violations.Add(1)
		}
	})
	defer unsub()

	src.initial <- nil
	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		switch i % 5 {
		case 0, 3:
			_ = src.SignIn(ctx, userA, "")
		case 1:
			src.emit(session.TokenRefreshed, sessionFor(userA))
		case 2, 4:
			_ = src.SignOut(ctx)
			st := p.State()
			assert.Nil(t, st.User)
			assert.False(t, st.Entitled)
		}
		if st := p.State(); st.User == nil && st.Entitled {
			violations.Add(1)
		}
	}

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, violations.Load())
	st := p.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Entitled)
}

// After SignIn returns, entitled reflects a check made with the new session,
// even while the event-triggered check is still outstanding.
func TestSignInAwaitsEntitlement(t *testing.T) {
	src := newStubSource()
	chk := &scriptedChecker{fn: func(n int, s *session.Session) bool {
		if n == 1 {
			time.Sleep(50 * time.Millisecond)
		}
		return s != nil && s.User.ID == userA
	}}
	p := New(src, chk)
	defer p.Close()

	src.initial <- nil
	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.SignIn(context.Background(), userA, "pw"))
	st := p.State()
	require.NotNil(t, st.User)
	assert.Equal(t, userA, st.User.ID)
	assert.True(t, st.Entitled)
	assert.Equal(t, AuthenticatedResolved, st.Phase())
}

// loading goes true -> false exactly once.
func TestLoadingClearsOnce(t *testing.T) {
	src := newStubSource()
	p := New(src, always(true))
	defer p.Close()

	var mu sync.Mutex
	var seen []bool
	unsub := p.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st.Loading)
		mu.Unlock()
	})
	defer unsub()

	assert.True(t, p.State().Loading)
	src.initial <- sessionFor(userA)
	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_ = src.SignOut(ctx)
		_ = src.SignIn(ctx, userB, "")
		p.RefreshEntitlement(ctx)
	}
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	cleared := false
	for _, loading := range seen {
		if cleared {
			assert.False(t, loading, "loading came back after clearing")
		}
		if !loading {
			cleared = true
		}
	}
	assert.True(t, cleared)
	assert.False(t, p.State().Loading)
}

// An older check finishing after a newer one must not win.
func TestStaleCheckDiscarded(t *testing.T) {
	src := newStubSource()
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	firstDone := make(chan struct{})
	chk := &scriptedChecker{fn: func(n int, s *session.Session) bool {
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			defer close(firstDone)
			return true
		}
		return false
	}}
	p := New(src, chk)
	defer p.Close()

	src.initial <- nil
	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	_ = src.SignIn(ctx, userA, "") // check 1, held
	<-firstStarted
	_ = src.SignOut(ctx)
	_ = src.SignIn(ctx, userA, "") // check 2, answers false

	require.Eventually(t, func() bool { return p.State().Resolved }, waitFor, tick)
	assert.False(t, p.State().Entitled)

	close(releaseFirst)
	<-firstDone
	assert.Never(t, func() bool { return p.State().Entitled }, 50*time.Millisecond, tick)
	assert.Equal(t, int32(2), chk.calls.Load())
}

// An auth event seen before the initial fetch resolves wins over it.
func TestEventSupersedesInitialFetch(t *testing.T) {
	src := newStubSource()
	chk := &scriptedChecker{fn: func(n int, s *session.Session) bool { return s.User.ID == userB }}
	p := New(src, chk)
	defer p.Close()

	p.Start(context.Background())
	src.emit(session.SignedIn, sessionFor(userB))
	src.initial <- sessionFor(userA)

	st, err := p.WaitReady(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.User)
	assert.Equal(t, userB, st.User.ID)
	assert.True(t, st.Entitled)

	time.Sleep(20 * time.Millisecond)
	st = p.State()
	assert.Equal(t, userB, st.User.ID)
	assert.Equal(t, int32(1), chk.calls.Load())
}

// After Close no observer fires and the state stays put.
func TestCloseStopsUpdates(t *testing.T) {
	src := newStubSource()
	p := New(src, always(true))

	src.initial <- nil
	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)

	var fired atomic.Int32
	p.Subscribe(func(State) { fired.Add(1) })

	p.Close()
	p.Close()
	assert.Zero(t, src.subscribers())

	assert.NotPanics(t, func() {
		src.emit(session.SignedIn, sessionFor(userA))
		p.RefreshEntitlement(context.Background())
	})
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.Nil(t, p.State().User)
}

func TestRefreshEntitlement(t *testing.T) {
	src := newStubSource()
	var active atomic.Bool
	chk := &scriptedChecker{fn: func(int, *session.Session) bool { return active.Load() }}
	p := New(src, chk)
	defer p.Close()

	src.initial <- nil
	_, err := p.WaitReady(context.Background())
	require.NoError(t, err)

	p.RefreshEntitlement(context.Background())
	assert.Zero(t, chk.calls.Load(), "no user, no check")

	require.NoError(t, p.SignIn(context.Background(), userA, ""))
	assert.False(t, p.State().Entitled)

	// A completed payment flips the subscription; refresh picks it up in place.
	active.Store(true)
	before := p.State()
	p.RefreshEntitlement(context.Background())
	after := p.State()
	assert.True(t, after.Entitled)
	assert.Equal(t, before.Session.AccessToken, after.Session.AccessToken)
	assert.False(t, after.Loading)
}

func TestTokenRefreshKeepsEntitlement(t *testing.T) {
	src := newStubSource()
	release := make(chan struct{})
	chk := &scriptedChecker{fn: func(n int, s *session.Session) bool {
		if n > 1 {
			<-release
		}
		return true
	}}
	p := New(src, chk)
	defer p.Close()

	src.initial <- sessionFor(userA)
	st, err := p.WaitReady(context.Background())
	require.NoError(t, err)
	require.True(t, st.Entitled)

	refreshed := sessionFor(userA)
	refreshed.AccessToken = "at-rotated"
	src.emit(session.TokenRefreshed, refreshed)

	st = p.State()
	assert.Equal(t, "at-rotated", st.Session.AccessToken)
	assert.True(t, st.Entitled, "same user keeps the last result while rechecking")
	close(release)
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		Initializing:          "initializing",
		Anonymous:             "anonymous",
		AuthenticatedPending:  "authenticated (checking subscription)",
		AuthenticatedResolved: "authenticated",
	}
	for phase, want := range tests {
		assert.Equal(t, want, phase.String())
	}
}

// ctxChecker answers entitled only while the context it was given is live.
type ctxChecker struct {
	calls atomic.Int32
}

func (c *ctxChecker) Check(ctx context.Context, s *session.Session) bool {
	c.calls.Add(1)
	return s != nil && ctx.Err() == nil
}

func TestBackgroundChecksOutliveStartingContext(t *testing.T) {
	src := newStubSource()
	src.initial <- nil
	chk := &ctxChecker{}
	p := New(src, chk)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	require.NoError(t, p.SignIn(ctx, userA, "pw"))
	require.True(t, p.State().Entitled)
	cancel()

	src.emit(session.SignedIn, sessionFor(userB))
	require.Eventually(t, func() bool {
		st := p.State()
		return st.Resolved && st.User != nil && st.User.ID == userB
	}, waitFor, tick)
	assert.True(t, p.State().Entitled)
}

func TestRefreshWithEndedContextKeepsValue(t *testing.T) {
	src := newStubSource()
	src.initial <- nil
	chk := &ctxChecker{}
	p := New(src, chk)
	defer p.Close()

	require.NoError(t, p.SignIn(context.Background(), userA, "pw"))
	require.True(t, p.State().Entitled)
	before := chk.calls.Load()

	ended, cancel := context.WithCancel(context.Background())
	cancel()
	p.RefreshEntitlement(ended)

	st := p.State()
	assert.True(t, st.Entitled, "an unanswered check does not revoke")
	assert.True(t, st.Resolved)

	// The check is retried in the background and commits its own answer.
	require.Eventually(t, func() bool { return chk.calls.Load() >= before+2 }, waitFor, tick)
	require.Eventually(t, func() bool { return p.State().Entitled }, waitFor, tick)
}

// closingSource closes the Provider from inside Subscribe, the window between
// Start registering and recording its subscription.
type closingSource struct {
	*stubSource
	p *Provider
}

func (s *closingSource) Subscribe(fn session.Handler) func() {
	unsub := s.stubSource.Subscribe(fn)
	s.p.Close()
	return unsub
}

func TestCloseDuringStartReleasesSubscription(t *testing.T) {
	src := &closingSource{stubSource: newStubSource()}
	p := New(src, always(true))
	src.p = p

	p.Start(context.Background())
	assert.Zero(t, src.subscribers())
}

func TestWaitReadyReturnsOnClose(t *testing.T) {
	src := newStubSource()
	p := New(src, always(true))

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Close()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	st, err := p.WaitReady(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, st.Loading)
}
