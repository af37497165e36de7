package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/hajimigate/internal/config"
	"github.com/atinyakov/hajimigate/internal/models"
)

type mockSecrets struct {
	SecretsFunc func() (config.Secrets, error)
	calls       int
}

func (m *mockSecrets) Secrets() (config.Secrets, error) {
	m.calls++
	return m.SecretsFunc()
}

func staticSecrets(password, web string) *mockSecrets {
	return &mockSecrets{SecretsFunc: func() (config.Secrets, error) {
		return config.Secrets{Password: password, WebPassword: web}, nil
	}}
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.AuditEvent
	err    error
	// panics makes the next n Emit calls panic before recording.
	panics int
}

func (r *recordingSink) Emit(_ context.Context, e models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics > 0 {
		r.panics--
		panic("sink exploded")
	}
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingSink) only(t *testing.T) models.AuditEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.events, 1, "expected exactly one audit event")
	return r.events[0]
}

func TestLogin(t *testing.T) {
	const ip = "203.0.113.9"

	tests := []struct {
		name      string
		secret    string
		password  string
		wantErr   error
		wantKind  ErrorKind
		wantLevel models.AuditLevel
	}{
		{
			name:      "correct password",
			secret:    "hunter2",
			password:  "hunter2",
			wantKind:  KindNone,
			wantLevel: models.LevelInfo,
		},
		{
			name:      "empty password",
			secret:    "hunter2",
			password:  "",
			wantErr:   ErrEmptyCredential,
			wantKind:  KindEmptyCredential,
			wantLevel: models.LevelWarning,
		},
		{
			name:      "wrong password",
			secret:    "hunter2",
			password:  "hunter3",
			wantErr:   ErrBadCredential,
			wantKind:  KindBadCredential,
			wantLevel: models.LevelWarning,
		},
		{
			name:      "comparison is case-sensitive",
			secret:    "Hunter2",
			password:  "hunter2",
			wantErr:   ErrBadCredential,
			wantKind:  KindBadCredential,
			wantLevel: models.LevelWarning,
		},
		{
			name:      "no normalization of whitespace",
			secret:    "hunter2",
			password:  " hunter2",
			wantErr:   ErrBadCredential,
			wantKind:  KindBadCredential,
			wantLevel: models.LevelWarning,
		},
		{
			name:      "unset secret rejects any password",
			secret:    "",
			password:  "anything",
			wantErr:   ErrBadCredential,
			wantKind:  KindBadCredential,
			wantLevel: models.LevelWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			svc := NewAuthService(staticSecrets(tt.secret, ""), sink, nil)

			resp, err := svc.Login(context.Background(), tt.password, ip)

			assert.Equal(t, tt.wantKind, Kind(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, models.LoginResponse{}, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.LoginResponse{
					Success:       true,
					Message:       "login succeeded",
					Authenticated: true,
					Redirect:      "/dashboard",
				}, resp)
			}

			ev := sink.only(t)
			assert.Equal(t, tt.wantLevel, ev.Level)
			assert.Equal(t, models.ActionLogin, ev.Action)
			assert.Equal(t, ip, ev.ClientIP)
			assert.Contains(t, ev.Message, ip)
			assert.NotEmpty(t, ev.ID)
			assert.False(t, ev.CreatedAt.IsZero())
		})
	}
}

func TestLogin_EmptyPasswordSkipsComparison(t *testing.T) {
	secrets := staticSecrets("hunter2", "")
	svc := NewAuthService(secrets, &recordingSink{}, nil)

	_, err := svc.Login(context.Background(), "", "10.0.0.1")

	assert.ErrorIs(t, err, ErrEmptyCredential)
	assert.Equal(t, 0, secrets.calls, "secret provider must not be consulted")
}

func TestLogin_SecretProviderFault(t *testing.T) {
	const ip = "198.51.100.1"
	cause := errors.New("vault sealed")
	secrets := &mockSecrets{SecretsFunc: func() (config.Secrets, error) {
		return config.Secrets{}, cause
	}}
	sink := &recordingSink{}
	svc := NewAuthService(secrets, sink, nil)

	_, err := svc.Login(context.Background(), "pw", ip)

	require.Error(t, err)
	assert.Equal(t, KindInternalFault, Kind(err))
	var fault *InternalFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "login", fault.Op)
	assert.ErrorIs(t, err, cause)

	ev := sink.only(t)
	assert.Equal(t, models.LevelError, ev.Level)
	assert.Contains(t, ev.Message, ip)
	assert.Contains(t, ev.Message, "vault sealed")
}

func TestLogin_PanicBecomesInternalFault(t *testing.T) {
	secrets := &mockSecrets{SecretsFunc: func() (config.Secrets, error) {
		panic("nil map")
	}}
	sink := &recordingSink{}
	svc := NewAuthService(secrets, sink, nil)

	_, err := svc.Login(context.Background(), "pw", "10.1.1.1")

	assert.Equal(t, KindInternalFault, Kind(err))
	ev := sink.only(t)
	assert.Equal(t, models.LevelError, ev.Level)
	assert.Contains(t, ev.Message, "nil map")
	assert.Contains(t, ev.Message, "10.1.1.1")
}

func TestLogout(t *testing.T) {
	sink := &recordingSink{}
	svc := NewAuthService(staticSecrets("pw", ""), sink, nil)

	resp, err := svc.Logout(context.Background(), "192.0.2.44")

	require.NoError(t, err)
	assert.Equal(t, models.LogoutResponse{Success: true, Message: "logout succeeded"}, resp)
	ev := sink.only(t)
	assert.Equal(t, models.LevelInfo, ev.Level)
	assert.Equal(t, models.ActionLogout, ev.Action)
	assert.Contains(t, ev.Message, "192.0.2.44")
}

func TestLogout_PanicBecomesInternalFault(t *testing.T) {
	sink := &recordingSink{panics: 1}
	svc := NewAuthService(staticSecrets("pw", ""), sink, nil)

	resp, err := svc.Logout(context.Background(), "192.0.2.44")

	assert.Equal(t, KindInternalFault, Kind(err))
	assert.Equal(t, models.LogoutResponse{}, resp)
	ev := sink.only(t)
	assert.Equal(t, models.LevelError, ev.Level)
	assert.Contains(t, ev.Message, "192.0.2.44")
}

func TestEmitFailureDoesNotChangeOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := &recordingSink{err: errors.New("disk full")}
	svc := NewAuthService(staticSecrets("pw", ""), sink, zap.New(core))

	resp, err := svc.Login(context.Background(), "pw", "10.0.0.2")

	require.NoError(t, err)
	assert.True(t, resp.Authenticated)
	entries := logs.FilterMessage("audit emit failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "disk full", entries[0].ContextMap()["error"])
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		password string
		web      string
		want     models.AuthStatus
	}{
		{"nothing configured", "", "", models.AuthStatus{}},
		{"password only", "pw", "", models.AuthStatus{PasswordRequired: true}},
		{"distinct web password", "pw", "web", models.AuthStatus{PasswordRequired: true, WebPasswordSet: true}},
		{"web password equal to password", "pw", "pw", models.AuthStatus{PasswordRequired: true}},
		{"web password without password", "", "web", models.AuthStatus{WebPasswordSet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			svc := NewAuthService(staticSecrets(tt.password, tt.web), sink, nil)

			first := svc.Status(context.Background())
			second := svc.Status(context.Background())

			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, second, "status must be idempotent")
			assert.Empty(t, sink.events, "status must not emit audit events")
		})
	}
}

func TestStatus_ProviderErrorFailsClosed(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	secrets := &mockSecrets{SecretsFunc: func() (config.Secrets, error) {
		return config.Secrets{}, errors.New("boom")
	}}
	sink := &recordingSink{}
	svc := NewAuthService(secrets, sink, zap.New(core))

	got := svc.Status(context.Background())

	assert.Equal(t, models.AuthStatus{PasswordRequired: true}, got)
	assert.Empty(t, sink.events)
	assert.Equal(t, 1, logs.Len())
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{ErrEmptyCredential, KindEmptyCredential},
		{ErrBadCredential, KindBadCredential},
		{&InternalFault{Op: "login", Err: errors.New("x")}, KindInternalFault},
		{errors.New("anything else"), KindInternalFault},
	}

	for _, tt := range tests {
		got := Kind(tt.err)
		assert.Equal(t, tt.want, got)
		assert.False(t, strings.Contains(got.String(), " "))
	}
}
