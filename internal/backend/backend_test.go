package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "arenatv/cli/internal/errors"
	"arenatv/cli/internal/model"
)

const testAnonKey = "anon-key"

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTP {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return newHTTP(srv.URL+"/", testAnonKey, 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithPassword_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))

		var body credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fan@example.com", body.Email)

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "at",
			"refresh_token": "rt",
			"token_type":    "bearer",
			"expires_in":    3600,
			"expires_at":    1900000000,
			"user":          map[string]any{"id": "u1", "email": "fan@example.com"},
		})
	})

	tok, err := c.SignInWithPassword(context.Background(), "fan@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.Equal(t, "u1", tok.User.ID)
	assert.Equal(t, int64(1900000000), tok.ExpiresAt)
}

func TestSignInWithPassword_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	_, err := c.SignInWithPassword(context.Background(), "fan@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.AuthRejected, apperrors.KindOf(err))
	assert.Equal(t, "Invalid login credentials", apperrors.MessageOf(err))
}

func TestSignInWithPassword_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newHTTP(url, testAnonKey, time.Second)
	_, err := c.SignInWithPassword(context.Background(), "fan@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, apperrors.AuthTransport, apperrors.KindOf(err))
}

func TestSignInWithPassword_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": "upstream down"})
	})
	_, err := c.SignInWithPassword(context.Background(), "fan@example.com", "secret")
	assert.Equal(t, apperrors.AuthTransport, apperrors.KindOf(err))
}

func TestSignOut_InvalidTokenCountsAsSignedOut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
	})
	assert.NoError(t, c.SignOut(context.Background(), "stale"))
}

func TestParseSignUp(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantUser    string
		wantSession bool
	}{
		{
			name:        "session returned",
			payload:     `{"access_token":"at","refresh_token":"rt","user":{"id":"u1","email":"a@b.c"}}`,
			wantUser:    "u1",
			wantSession: true,
		},
		{
			name:     "confirmation required returns bare user",
			payload:  `{"id":"u2","email":"a@b.c","role":"authenticated"}`,
			wantUser: "u2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSignUp(json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, got.User.ID)
			assert.Equal(t, tt.wantSession, got.Session != nil)
		})
	}
}

func TestCheckActiveSubscription(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
		kind   apperrors.Kind
	}{
		{name: "active", status: http.StatusOK, body: "true", want: true},
		{name: "inactive", status: http.StatusOK, body: "false", want: false},
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`, kind: apperrors.BackendUnavailable},
		{name: "expired token", status: http.StatusUnauthorized, body: `{"message":"JWT expired"}`, kind: apperrors.Unauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/v1/rpc/check_active_subscription", r.URL.Path)
				assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
				b, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"p_user_id":"u1"}`, string(b))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.CheckActiveSubscription(context.Background(), "at", "u1")
			if tt.kind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.kind, apperrors.KindOf(err))
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvents_Filters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/events", r.URL.Path)
		assert.Equal(t, "*,sports(*)", q.Get("select"))
		assert.Equal(t, "start_time", q.Get("order"))
		assert.Equal(t, "eq.s1", q.Get("sport_id"))
		assert.Equal(t, "eq.live", q.Get("status"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "e1", "title": "Final", "status": "live", "sport_id": "s1", "start_time": "2025-05-01T12:00:00Z", "sports": map[string]any{"id": "s1", "name": "Football"}},
		})
	})

	events, err := c.Events(context.Background(), "", EventFilter{SportID: "s1", Status: model.EventLive})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Final", events[0].Title)
	require.NotNil(t, events[0].Sport)
	assert.Equal(t, "Football", events[0].Sport.Name)
}

func TestEvent_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusNotAcceptable, map[string]any{
			"code":    "PGRST116",
			"message": "JSON object requested, multiple (or no) rows returned",
		})
	})

	_, err := c.Event(context.Background(), "", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestFavorites_InsertAndDelete(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		if r.Method == http.MethodPost {
			assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
			b, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"team_id":"t1"}`, string(b))
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, c.AddFavoriteTeam(ctx, "at", "t1"))
	require.NoError(t, c.RemoveFavoriteTeam(ctx, "at", "t1"))
	assert.Equal(t, []string{
		"POST /rest/v1/favorite_teams?",
		"DELETE /rest/v1/favorite_teams?team_id=eq.t1",
	}, calls)
}

func TestMarkNotificationRead(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.n1", r.URL.Query().Get("id"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"is_read":true}`, string(b))
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.MarkNotificationRead(context.Background(), "at", "n1"))
}

func TestProcessPayment(t *testing.T) {
	method := "card"

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/functions/v1/process-payment", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"success":      true,
				"message":      "Payment processed successfully",
				"subscription": map[string]any{"id": "sub1"},
			})
		})
		res, err := c.ProcessPayment(context.Background(), "at", model.PaymentRequest{PaymentMethod: method})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.JSONEq(t, `{"id":"sub1"}`, string(res.Subscription))
	})

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Payment method is required"})
		})
		_, err := c.ProcessPayment(context.Background(), "at", model.PaymentRequest{})
		require.Error(t, err)
		assert.Equal(t, apperrors.PaymentFailed, apperrors.KindOf(err))
		assert.Equal(t, "Payment method is required", apperrors.MessageOf(err))
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		})
		_, err := c.ProcessPayment(context.Background(), "", model.PaymentRequest{PaymentMethod: method})
		assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
	})
}

func TestParseBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer\tabc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseBearerToken(in), "input %q", in)
	}
}
