package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/atinyakov/hajimigate/internal/models"
)

// FileConfig configures the rotating audit file.
type FileConfig struct {
	// Path is the audit file location.
	Path string
	// MaxSizeMB is the size in megabytes at which the file is rotated. Default: 10.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep. Default: 5.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// FileSink appends audit events as JSON lines.
type FileSink struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewFileSink returns a FileSink writing to a lumberjack-rotated file.
func NewFileSink(cfg FileConfig) *FileSink {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 5
	}

	return newFileSink(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,    // megabytes
		MaxBackups: maxBackups, // number of backups
		Compress:   cfg.Compress,
	})
}

func newFileSink(w io.WriteCloser) *FileSink {
	return &FileSink{w: w}
}

// Emit writes event as a single JSON line.
func (s *FileSink) Emit(_ context.Context, event models.AuditEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
