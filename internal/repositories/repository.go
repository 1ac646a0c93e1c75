package repositories

import (
	"context"
	"time"

	"github.com/pnl-league/competition-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the interface for user data operations. Users
// are addressed by wallet or in id batches; there is no single-id lookup.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByWallet(ctx context.Context, wallet string) (*models.User, error)
	// FindByIDs resolves a batch of identity references in one query,
	// keyed by id, for joining against trader records.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

// TraderRepository defines the interface for per-season trader records
type TraderRepository interface {
	Create(ctx context.Context, trader *models.Trader) error
	FindByUserAndSeason(ctx context.Context, userID primitive.ObjectID, seasonID string) (*models.Trader, error)
	FindBySeason(ctx context.Context, seasonID string) ([]*models.Trader, error)
	FindActiveBySeason(ctx context.Context, seasonID string) ([]*models.Trader, error)
	// FindTopEligible returns up to limit active, non-flagged traders of
	// the season sorted by realized USD PnL descending.
	FindTopEligible(ctx context.Context, seasonID string, limit int) ([]*models.Trader, error)
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.TraderStats, updatedAt time.Time) error
	SetHoldingFlag(ctx context.Context, id primitive.ObjectID, flagged bool, checkedAt time.Time) error
	TouchTokenCheck(ctx context.Context, id primitive.ObjectID, checkedAt time.Time) error
}

// DrawRepository defines the interface for draw record operations.
// Draw records are append-only; Create must fail with a duplicate-key
// error when a record for the same drawId already exists.
type DrawRepository interface {
	Create(ctx context.Context, draw *models.Draw) error
	FindByDrawID(ctx context.Context, drawID string) (*models.Draw, error)
	FindBySeason(ctx context.Context, seasonID string) ([]*models.Draw, error)
	FindRecent(ctx context.Context, limit int) ([]*models.Draw, error)
	FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DrawStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// EnsureIndexes creates the unique index on drawId that turns a racing
	// duplicate insert into a hard failure.
	EnsureIndexes(ctx context.Context) error
}
