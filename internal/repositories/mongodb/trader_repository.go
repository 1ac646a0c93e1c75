package mongodb

import (
	"context"
	"time"

	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TraderRepository implements the repositories.TraderRepository interface
type TraderRepository struct {
	collection *mongo.Collection
}

// NewTraderRepository creates a new TraderRepository
func NewTraderRepository(db *mongo.Database) repositories.TraderRepository {
	return &TraderRepository{
		collection: db.Collection("daily_traders"),
	}
}

// Create creates a new trader record for a season
func (r *TraderRepository) Create(ctx context.Context, trader *models.Trader) error {
	trader.CreatedAt = time.Now()
	trader.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, trader)
	if err != nil {
		return err
	}
	trader.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByUserAndSeason finds a trader record by user and season
func (r *TraderRepository) FindByUserAndSeason(ctx context.Context, userID primitive.ObjectID, seasonID string) (*models.Trader, error) {
	var trader models.Trader
	filter := bson.M{"userId": userID, "seasonId": seasonID}
	err := r.collection.FindOne(ctx, filter).Decode(&trader)
	if err != nil {
		return nil, err // Returns mongo.ErrNoDocuments if not found
	}
	return &trader, nil
}

// FindBySeason finds all trader records for a season
func (r *TraderRepository) FindBySeason(ctx context.Context, seasonID string) ([]*models.Trader, error) {
	return r.find(ctx, bson.M{"seasonId": seasonID}, nil)
}

// FindActiveBySeason finds all active trader records for a season
func (r *TraderRepository) FindActiveBySeason(ctx context.Context, seasonID string) ([]*models.Trader, error) {
	return r.find(ctx, bson.M{"seasonId": seasonID, "isActive": true}, nil)
}

// FindTopEligible finds up to limit active, non-flagged traders of the
// season sorted by realized USD PnL descending.
func (r *TraderRepository) FindTopEligible(ctx context.Context, seasonID string, limit int) ([]*models.Trader, error) {
	filter := bson.M{
		"seasonId":       seasonID,
		"isActive":       true,
		"holdingFlagged": bson.M{"$ne": true},
	}
	opts := options.Find().
		SetSort(bson.M{"realizedUsdPnl": -1}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

// UpdateStats updates the refreshable performance stats of a trader
func (r *TraderRepository) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.TraderStats, updatedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"realizedUsdPnl": stats.RealizedUsdPnl,
			"realizedSolPnl": stats.RealizedSolPnl,
			"totalTrades":    stats.TotalTrades,
			"buyCount":       stats.BuyCount,
			"sellCount":      stats.SellCount,
			"usdBought":      stats.UsdBought,
			"usdSold":        stats.UsdSold,
			"solBought":      stats.SolBought,
			"solSold":        stats.SolSold,
			"lastUpdated":    updatedAt,
			"updatedAt":      time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// SetHoldingFlag sets or clears the eligibility flag on a trader
func (r *TraderRepository) SetHoldingFlag(ctx context.Context, id primitive.ObjectID, flagged bool, checkedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"holdingFlagged": flagged,
			"lastTokenCheck": checkedAt,
			"updatedAt":      time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// TouchTokenCheck records that a holding check ran without changing the flag
func (r *TraderRepository) TouchTokenCheck(ctx context.Context, id primitive.ObjectID, checkedAt time.Time) error {
	update := bson.M{"$set": bson.M{"lastTokenCheck": checkedAt}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *TraderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Trader, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var traders []*models.Trader
	if err := cursor.All(ctx, &traders); err != nil {
		return nil, err
	}
	if traders == nil {
		traders = []*models.Trader{}
	}
	return traders, nil
}
