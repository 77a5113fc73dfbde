package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	"github.com/BruksfildServices01/appointment-invites/internal/concurrent"
	"github.com/BruksfildServices01/appointment-invites/internal/config"
	"github.com/BruksfildServices01/appointment-invites/internal/dispatch"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/events"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/mail"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/repository"
	"github.com/BruksfildServices01/appointment-invites/internal/invitetoken"
	"github.com/BruksfildServices01/appointment-invites/internal/middleware"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

const jwtSecret = "test-secret"

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	ErrorKind string          `json:"error_kind"`
	Message   string          `json:"message"`
	Details   []string        `json:"details"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	clock  *timezone.FixedClock
	jobs   *dispatch.Dispatcher
	tokens *invitetoken.Issuer
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := timezone.NewFixedClock(t0)
	jobs := dispatch.NewDispatcher(100, 2)
	t.Cleanup(jobs.Close)

	renderer, err := mail.NewRenderer()
	require.NoError(t, err)

	tokens := invitetoken.NewIssuer("invite-secret", clock)
	notifier := notify.New(mail.NewNoOpSender(), renderer, tokens, events.NoopPublisher{}, jobs, concurrent.NewWorkerPool(2), "http://localhost")
	logger := audit.New(audit.NewMemoryStore())

	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Repo:        repository.NewAppointmentMemoryRepository(),
		AuditLogger: logger,
		Audit:       audit.NewDispatcher(logger, jobs),
		Notifier:    notifier,
		Tokens:      tokens,
		Clock:       clock,
		Policy:      ucAppointment.Policy{},
	}, &config.Config{JWTSecret: jwtSecret})

	return &server{t: t, engine: r, clock: clock, jobs: jobs, tokens: tokens}
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.AuthClaims{
		Email: sub + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return "Bearer " + raw
}

func (s *server) do(method, path, auth string, body any) (int, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (s *server) createAppointment(auth string, invitees ...string) string {
	s.t.Helper()

	list := make([]map[string]string, len(invitees))
	for i, e := range invitees {
		list[i] = map[string]string{"email": e}
	}

	code, env := s.do(http.MethodPost, "/api/appointments", auth, map[string]any{
		"title":             "Kick-off",
		"start_time":        t0.Add(48 * time.Hour).Format(time.RFC3339),
		"end_time":          t0.Add(49 * time.Hour).Format(time.RFC3339),
		"invitees":          list,
		"submit_for_review": true,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	return decode[struct {
		ID string `json:"id"`
	}](s.t, env.Data).ID
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodGet, "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	assert.Equal(t, "unauthorized", env.ErrorKind)

	code, _ = s.do(http.MethodGet, "/api/appointments", "Bearer nope", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCreateValidationEnvelope(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodPost, "/api/appointments", bearer(t, "user-1"), map[string]any{
		"title":      "",
		"start_time": "tomorrow",
		"end_time":   t0.Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.ErrorKind)
	assert.Contains(t, env.Details, "title is required")
	assert.Contains(t, env.Details, "start_time is not a valid date-time")
}

func TestInviteFlow(t *testing.T) {
	s := newServer(t)
	owner := bearer(t, "user-1")
	id := s.createAppointment(owner, "a@x.com", "b@x.com")

	code, env := s.do(http.MethodGet, "/api/appointments/"+id, bearer(t, "user-2"), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.ErrorKind)

	code, env = s.do(http.MethodPost, "/api/appointments/"+id+"/invites/send", owner, nil)
	require.Equal(t, http.StatusAccepted, code, env.Message)
	assert.True(t, env.Success)
	s.jobs.Flush()

	code, env = s.do(http.MethodPost, "/api/appointments/"+id+"/invites/send", owner, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_state", env.ErrorKind)

	tokenA, err := s.tokens.Sign(id, "a@x.com", t0)
	require.NoError(t, err)
	tokenB, err := s.tokens.Sign(id, "b@x.com", t0)
	require.NoError(t, err)

	code, env = s.do(http.MethodGet, "/api/public/invites/status?token="+tokenA, "", nil)
	require.Equal(t, http.StatusOK, code)
	view := decode[ucAppointment.InviteeView](t, env.Data)
	assert.Equal(t, "Kick-off", view.Title)
	assert.Equal(t, "pending", view.Invitee.Status)

	code, env = s.do(http.MethodPost, "/api/public/invites/respond", "", map[string]any{"token": tokenA, "decision": "accepted"})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "pending", decode[ucAppointment.RespondResult](t, env.Data).Status)

	code, env = s.do(http.MethodPost, "/api/public/invites/respond", "", map[string]any{"token": tokenA, "decision": "declined"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_responded", env.ErrorKind)
	assert.Equal(t, []string{"accepted"}, env.Details)

	code, env = s.do(http.MethodPost, "/api/public/invites/respond", "", map[string]any{"token": tokenB, "decision": "accepted"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "scheduled", decode[ucAppointment.RespondResult](t, env.Data).Status)

	code, env = s.do(http.MethodGet, "/api/appointments/"+id+"/invites/status", owner, nil)
	require.Equal(t, http.StatusOK, code)
	st := decode[ucAppointment.InviteStatus](t, env.Data)
	assert.Equal(t, 2, st.Stats.Accepted)
	assert.True(t, st.Stats.AllAccepted)

	code, env = s.do(http.MethodGet, "/api/appointments/"+id+"/transitions", owner, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "scheduled", decode[ucAppointment.AvailableTransitions](t, env.Data).Current)

	code, env = s.do(http.MethodPost, "/api/appointments/"+id+"/transitions", owner, map[string]any{"status": "finalized"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "premature_finalization", env.ErrorKind)

	s.jobs.Flush()
	code, env = s.do(http.MethodGet, "/api/appointments/"+id+"/audit-logs?action=invite_responded", owner, nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[struct {
		Total int64 `json:"total"`
		Items []struct {
			Action string `json:"action"`
		} `json:"items"`
	}](t, env.Data)
	assert.Equal(t, int64(2), page.Total)
}

func TestRespond_BadTokens(t *testing.T) {
	s := newServer(t)
	id := s.createAppointment(bearer(t, "user-1"), "a@x.com")

	code, env := s.do(http.MethodPost, "/api/public/invites/respond", "", map[string]any{"token": "garbage", "decision": "accepted"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", env.ErrorKind)

	expired, err := s.tokens.Sign(id, "a@x.com", t0.Add(-25*time.Hour))
	require.NoError(t, err)
	code, env = s.do(http.MethodPost, "/api/public/invites/respond", "", map[string]any{"token": expired, "decision": "accepted"})
	assert.Equal(t, http.StatusGone, code)
	assert.Equal(t, "expired_invite", env.ErrorKind)

	stranger, err := s.tokens.Sign(id, "z@x.com", t0)
	require.NoError(t, err)
	code, env = s.do(http.MethodGet, "/api/public/invites/status?token="+stranger, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "invitee_not_found", env.ErrorKind)
}

func TestListAndDelete(t *testing.T) {
	s := newServer(t)
	owner := bearer(t, "user-1")
	id := s.createAppointment(owner)
	s.createAppointment(bearer(t, "user-2"))

	code, env := s.do(http.MethodGet, "/api/appointments?status=under_review", owner, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Total int `json:"total"`
	}](t, env.Data)
	assert.Equal(t, 1, list.Total)

	code, env = s.do(http.MethodGet, "/api/appointments?status=bogus", owner, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodDelete, "/api/appointments/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/appointments/"+id, owner, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.ErrorKind)

}
