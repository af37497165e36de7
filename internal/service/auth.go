// Package service implements the authentication gateway: login, logout and
// status against a single shared secret, with one audit event per login or
// logout attempt.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/hajimigate/internal/config"
	"github.com/atinyakov/hajimigate/internal/models"
	"github.com/atinyakov/hajimigate/internal/telemetry"
)

// SecretProvider supplies the credentials loaded at startup.
// An error from Secrets is treated as an internal fault.
type SecretProvider interface {
	Secrets() (config.Secrets, error)
}

// AuditSink receives the audit trail. Delivery is best effort; an error
// never changes the outcome of the operation that produced the event.
type AuditSink interface {
	Emit(ctx context.Context, event models.AuditEvent) error
}

const (
	msgLoginSucceeded  = "login succeeded"
	msgLogoutSucceeded = "logout succeeded"

	// dashboardPath is where the web UI lands after a successful login.
	dashboardPath = "/dashboard"
)

// AuthService implements the gateway operations.
type AuthService struct {
	secrets SecretProvider
	sink    AuditSink
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService. log may be nil.
func NewAuthService(secrets SecretProvider, sink AuditSink, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		secrets: secrets,
		sink:    sink,
		log:     log,
		now:     time.Now,
	}
}

// Login checks password against the shared secret.
//
// It returns ErrEmptyCredential for an empty password (the secret is not
// consulted), ErrBadCredential on mismatch and an *InternalFault for any
// unexpected failure. The comparison is plain string equality.
func (s *AuthService) Login(ctx context.Context, password, clientIP string) (resp models.LoginResponse, err error) {
	defer s.recoverFault(ctx, models.ActionLogin, clientIP, &err)

	if password == "" {
		s.emit(ctx, models.LevelWarning, models.ActionLogin, clientIP,
			fmt.Sprintf("login failed: empty password - IP: %s", clientIP))
		return models.LoginResponse{}, ErrEmptyCredential
	}

	secrets, err := s.secrets.Secrets()
	if err != nil {
		return models.LoginResponse{}, s.fault(ctx, models.ActionLogin, clientIP, fmt.Errorf("load secrets: %w", err))
	}

	if password != secrets.Password {
		s.emit(ctx, models.LevelWarning, models.ActionLogin, clientIP,
			fmt.Sprintf("login failed: incorrect password - IP: %s", clientIP))
		return models.LoginResponse{}, ErrBadCredential
	}

	s.emit(ctx, models.LevelInfo, models.ActionLogin, clientIP,
		fmt.Sprintf("login succeeded - IP: %s", clientIP))
	return models.LoginResponse{
		Success:       true,
		Message:       msgLoginSucceeded,
		Authenticated: true,
		Redirect:      dashboardPath,
	}, nil
}

// Logout always succeeds: there is no session to invalidate.
func (s *AuthService) Logout(ctx context.Context, clientIP string) (resp models.LogoutResponse, err error) {
	defer s.recoverFault(ctx, models.ActionLogout, clientIP, &err)

	s.emit(ctx, models.LevelInfo, models.ActionLogout, clientIP,
		fmt.Sprintf("logout - IP: %s", clientIP))
	return models.LogoutResponse{Success: true, Message: msgLogoutSucceeded}, nil
}

// Status reports whether authentication is configured. It emits no audit
// event. If the secrets cannot be read it reports a password as required.
func (s *AuthService) Status(ctx context.Context) models.AuthStatus {
	secrets, err := s.secrets.Secrets()
	if err != nil {
		s.log.Error("auth status: load secrets", zap.Error(err))
		return models.AuthStatus{PasswordRequired: true}
	}
	return models.AuthStatus{
		PasswordRequired: secrets.Password != "",
		WebPasswordSet:   secrets.WebPassword != "" && secrets.WebPassword != secrets.Password,
	}
}

// fault records an internal fault with full detail and returns it.
func (s *AuthService) fault(ctx context.Context, action models.AuditAction, clientIP string, cause error) error {
	s.emit(ctx, models.LevelError, action, clientIP,
		fmt.Sprintf("%s error - IP: %s, Error: %v", action, clientIP, cause))
	return &InternalFault{Op: string(action), Err: cause}
}

// recoverFault turns a panic inside an operation into an InternalFault.
func (s *AuthService) recoverFault(ctx context.Context, action models.AuditAction, clientIP string, err *error) {
	if r := recover(); r != nil {
		s.log.Error("recovered panic", zap.String("action", string(action)), zap.Any("panic", r))
		*err = s.fault(ctx, action, clientIP, fmt.Errorf("panic: %v", r))
	}
}

func (s *AuthService) emit(ctx context.Context, level models.AuditLevel, action models.AuditAction, clientIP, msg string) {
	telemetry.AuthEvents.WithLabelValues(string(action), string(level)).Inc()

	event := models.AuditEvent{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		Action:    action,
		ClientIP:  clientIP,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sink.Emit(ctx, event); err != nil {
		s.log.Warn("audit emit failed",
			zap.String("action", string(action)),
			zap.String("level", string(level)),
			zap.Error(err),
		)
	}
}
