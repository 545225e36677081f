// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// fanOutHandler is a slog.Handler that dispatches each record to two
// handlers. Used by NewConnectionLogger to write simultaneously to the
// caller's base handler and a dedicated per-connection debug log.
type fanOutHandler struct {
	primary   slog.Handler
	secondary slog.Handler
}

func (h *fanOutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.secondary.Enabled(ctx, level)
}

func (h *fanOutHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.primary.Enabled(ctx, r.Level) {
		if err := h.primary.Handle(ctx, r); err != nil {
			return err
		}
	}
	// A write failure on the per-connection file must not suppress the
	// caller's own logging.
	if h.secondary.Enabled(ctx, r.Level) {
		_ = h.secondary.Handle(ctx, r)
	}
	return nil
}

func (h *fanOutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fanOutHandler{
		primary:   h.primary.WithAttrs(attrs),
		secondary: h.secondary.WithAttrs(attrs),
	}
}

func (h *fanOutHandler) WithGroup(name string) slog.Handler {
	return &fanOutHandler{
		primary:   h.primary.WithGroup(name),
		secondary: h.secondary.WithGroup(name),
	}
}

// NewConnectionLogger builds a logger that writes to both baseLogger and
// a dedicated debug-level file for one connection instance, useful when
// diagnosing a reconnect storm or a specific subscription session
// without turning on debug logging globally. The file is created at:
//
//	{debugLogDir}/{component}/{connectionID}.log
//
// Returns the enriched logger, an io.Closer for the dedicated file, and
// its path (joined onto debugLogDir as given). The Closer must be called when the connection
// closes. If debugLogDir is empty, baseLogger is returned unmodified.
func NewConnectionLogger(baseLogger *slog.Logger, debugLogDir, component, connectionID string) (*slog.Logger, io.Closer, string, error) {
	if debugLogDir == "" {
		return baseLogger, io.NopCloser(nil), "", nil
	}

	dir := filepath.Join(debugLogDir, component)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, "", fmt.Errorf("creating connection log directory %s: %w", dir, err)
	}

	logPath := filepath.Join(dir, connectionID+".log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, "", fmt.Errorf("opening connection log file %s: %w", logPath, err)
	}

	// The per-connection file always captures at DEBUG regardless of the
	// base logger's level.
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	combined := &fanOutHandler{
		primary:   baseLogger.Handler(),
		secondary: fileHandler,
	}

	return slog.New(combined), f, logPath, nil
}

// RemoveConnectionLog deletes a finished connection's dedicated log
// file. A no-op if debugLogDir is empty or the file doesn't exist.
func RemoveConnectionLog(debugLogDir, component, connectionID string) {
	if debugLogDir == "" {
		return
	}
	logPath := filepath.Join(debugLogDir, component, connectionID+".log")
	os.Remove(logPath)
}
