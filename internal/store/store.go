package store

import (
	"context"
	"time"

	"github.com/starford/metron/internal/models"
)

// HistoryStore persists conversion history per user.
type HistoryStore interface {
	InsertHistory(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error)
	ListHistory(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error)
	GetHistory(ctx context.Context, userID, id string) (*models.HistoryRecord, error)
	DeleteHistory(ctx context.Context, userID, id string) error
}

// UserStore persists accounts and revoked session ids.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PruneRevoked(ctx context.Context, now time.Time) (int64, error)
}

// Verify *DB satisfies the store interfaces at compile time.
var (
	_ HistoryStore = (*DB)(nil)
	_ UserStore    = (*DB)(nil)
)
