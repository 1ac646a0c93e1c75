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

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// EnsureIndexes creates the unique index on drawId. With the index in
// place, two invocations racing past the idempotency check cannot both
// insert: the second insert fails with a duplicate-key error.
func (r *DrawRepository) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.M{"drawId": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := r.collection.Indexes().CreateOne(ctx, index)
	return err
}

// Create creates a new draw record. Callers detect a concurrent
// duplicate via mongo.IsDuplicateKeyError.
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	draw.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		return err
	}
	draw.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByDrawID finds a draw by its window id
func (r *DrawRepository) FindByDrawID(ctx context.Context, drawID string) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"drawId": drawID}).Decode(&draw)
	if err != nil {
		return nil, err // Returns mongo.ErrNoDocuments if not found
	}
	return &draw, nil
}

// FindBySeason finds all draws of a season, newest first
func (r *DrawRepository) FindBySeason(ctx context.Context, seasonID string) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"drawTime": -1})
	return r.find(ctx, bson.M{"seasonId": seasonID}, opts)
}

// FindRecent finds the most recent draws across seasons
func (r *DrawRepository) FindRecent(ctx context.Context, limit int) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"drawTime": -1}).SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

// FindByStatus finds draws by status
func (r *DrawRepository) FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"drawTime": 1})
	return r.find(ctx, bson.M{"status": status}, opts)
}

// UpdateStatus updates the status of a draw record
func (r *DrawRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DrawStatus) error {
	update := bson.M{"$set": bson.M{"status": status}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Delete removes a draw record. Only used by reconciliation when a
// submitted transfer is confirmed dropped, freeing the window for retry.
func (r *DrawRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *DrawRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Draw, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}
