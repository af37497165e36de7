// Package models defines the request, response and audit structures
// exchanged by the auth gateway.
package models

import "time"

// LoginRequest is the JSON payload of POST /api/auth/login.
type LoginRequest struct {
	// Password is the submitted shared secret. It may be empty.
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
	// Redirect is the page the web UI should navigate to after login.
	Redirect string `json:"redirect,omitempty"`
}

// LogoutResponse is returned by POST /api/auth/logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthStatus reports whether authentication is configured without
// revealing any secret value.
type AuthStatus struct {
	// PasswordRequired is true when a shared password is configured.
	PasswordRequired bool `json:"password_required"`
	// WebPasswordSet is true when a web password is configured and
	// differs from the shared password.
	WebPasswordSet bool `json:"web_password_set"`
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// AuditLevel is the severity of an audit event.
type AuditLevel string

const (
	// LevelInfo marks successful operations.
	LevelInfo AuditLevel = "info"
	// LevelWarning marks expected failures such as a wrong password.
	LevelWarning AuditLevel = "warning"
	// LevelError marks internal faults.
	LevelError AuditLevel = "error"
)

// AuditAction names the operation an audit event belongs to.
type AuditAction string

const (
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

// AuditEvent is a single entry of the authentication audit trail.
// Level and Message form the event contract; the remaining fields are
// structured copies of what Message already states.
type AuditEvent struct {
	ID        string      `json:"id"`
	Level     AuditLevel  `json:"level"`
	Message   string      `json:"message"`
	Action    AuditAction `json:"action"`
	ClientIP  string      `json:"client_ip"`
	CreatedAt time.Time   `json:"created_at"`
}
