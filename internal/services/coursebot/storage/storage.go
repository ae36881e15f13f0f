// Package storage defines the handoff journal contract.
//
// The journal is an operator-facing audit of issued payment links used to
// reconcile with the fulfillment service. The router never reads it.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRecord indicates a handoff record is missing required fields.
var ErrInvalidRecord = errors.New("invalid handoff record")

// HandoffRecord is one issued payment link.
type HandoffRecord struct {
	ID             string
	CourseID       string
	TelegramUserID int64
	URL            string
	IssuedAt       time.Time
}

// HandoffStore persists issued handoff links.
type HandoffStore interface {
	RecordHandoff(ctx context.Context, record HandoffRecord) (HandoffRecord, error)
	ListHandoffs(ctx context.Context, telegramUserID int64, limit int) ([]HandoffRecord, error)
}
