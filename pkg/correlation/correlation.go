// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqsig.
//
// go-pqsig is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package correlation tags a unit of work with an identifier that is
// carried through context.Context and attached to log records.
package correlation

import (
	"context"

	"github.com/google/uuid"
	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// CorrelationIDKey is the context key for storing correlation IDs
	CorrelationIDKey contextKey = "correlation-id"

	// LogField is the structured logging key for correlation IDs
	LogField = "correlation_id"

	// EnvVar lets a caller supply the correlation ID of a CLI invocation
	EnvVar = "PQSIG_CORRELATION_ID"
)

// WithCorrelationID adds a correlation ID to the context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID retrieves the correlation ID from context.
// Returns an empty string if no correlation ID is found.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// NewID generates a new UUID v4 correlation ID
func NewID() string {
	return uuid.New().String()
}

// GetOrGenerate retrieves an existing correlation ID from context
// or generates a new one if none exists
func GetOrGenerate(ctx context.Context) string {
	if id := GetCorrelationID(ctx); id != "" {
		return id
	}
	return NewID()
}

// Logger returns log with the correlation ID of ctx attached. log is
// returned unchanged when ctx carries no ID.
func Logger(ctx context.Context, log logger.Logger) logger.Logger {
	id := GetCorrelationID(ctx)
	if id == "" {
		return log
	}
	return log.With(logger.String(LogField, id))
}
