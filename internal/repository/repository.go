package repository

import (
	"context"
	"errors"

	"zodiac_backend/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrMalformedState is returned when a stored record cannot be decoded.
	ErrMalformedState = errors.New("malformed stored state")
)

type GamingStateRepository interface {
	GetState(ctx context.Context, playerID string) (*model.ResponsibleGamingState, error)
	SaveState(ctx context.Context, playerID string, state *model.ResponsibleGamingState) error
	DeleteState(ctx context.Context, playerID string) error
}

// AuditBackupRepository is the capped local fallback copy of the audit trail.
type AuditBackupRepository interface {
	Append(ctx context.Context, userID string, entries []model.AuditLogEntry) error
	List(ctx context.Context, userID string) ([]model.AuditLogEntry, error)
}

// AuditSinkRepository is the insert-only remote audit store.
type AuditSinkRepository interface {
	InsertEntries(ctx context.Context, entries []model.AuditLogEntry) error
	SaveSessionMetrics(ctx context.Context, metrics model.SessionMetrics) error
	Ping(ctx context.Context) error
}

type PlayerRepository interface {
	GetPlayer(ctx context.Context, deviceID string) (*model.Player, error)
	// CreatePlayer stores player unless the device already has one, in which
	// case the existing player is returned.
	CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error)
}
