// Package repository provides the PostgreSQL persistence of the audit trail.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/hajimigate/internal/models"
)

// PostgresAuditRepository stores audit events in PostgreSQL.
type PostgresAuditRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{DB: db}
}

// InsertEvent stores a single audit event. Re-inserting an event with the
// same ID is a no-op.
func (r *PostgresAuditRepository) InsertEvent(ctx context.Context, e models.AuditEvent) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO audit_events (id, level, action, message, client_ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
		e.ID, string(e.Level), string(e.Action), e.Message, e.ClientIP, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
