package services

import (
	"context"
	"testing"
	"time"

	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestJoinByWalletCreatesUserAndTrader(t *testing.T) {
	var createdUser *models.User
	var createdTrader *models.Trader

	svc := NewUserService(
		&fakeUserRepo{
			createFn: func(ctx context.Context, user *models.User) error {
				createdUser = user
				return nil
			},
		},
		&fakeTraderRepo{
			createFn: func(ctx context.Context, trader *models.Trader) error {
				createdTrader = trader
				return nil
			},
		},
		&fakeGateway{
			tokenBalanceFn: func(ctx context.Context, wallet string) (uint64, error) {
				assert.Equal(t, "AbCdEfGh12345678", wallet, "balance check uses the case-sensitive address")
				return testTokenRequired, nil
			},
		},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }

	user, trader, err := svc.JoinByWallet(context.Background(), "AbCdEfGh12345678")
	require.NoError(t, err)

	require.NotNil(t, createdUser)
	assert.Equal(t, "abcdefgh12345678", createdUser.Wallet)
	assert.Equal(t, "AbCdEfGh12345678", createdUser.WalletOriginal)
	assert.Equal(t, "AbCdE", createdUser.Name)
	assert.Same(t, createdUser, user)

	require.NotNil(t, createdTrader)
	assert.Equal(t, createdUser.ID, createdTrader.UserID)
	assert.Equal(t, "2026-08-29", createdTrader.SeasonID)
	assert.True(t, createdTrader.IsActive)
	assert.Same(t, createdTrader, trader)
}

func TestJoinByWalletRejectsInsufficientHolding(t *testing.T) {
	userCreates := 0
	svc := NewUserService(
		&fakeUserRepo{
			createFn: func(ctx context.Context, user *models.User) error {
				userCreates++
				return nil
			},
		},
		&fakeTraderRepo{},
		&fakeGateway{
			tokenBalanceFn: func(ctx context.Context, wallet string) (uint64, error) {
				return testTokenRequired - 1, nil
			},
		},
		testTokenRequired,
	)

	_, _, err := svc.JoinByWallet(context.Background(), "AbCdEfGh12345678")
	assert.ErrorIs(t, err, ErrInsufficientHolding)
	assert.Zero(t, userCreates, "no user record for a rejected wallet")
}

func TestJoinByWalletIsIdempotentWithinSeason(t *testing.T) {
	existingUser := &models.User{
		ID:             primitive.NewObjectID(),
		Wallet:         "abcdefgh12345678",
		WalletOriginal: "AbCdEfGh12345678",
		Name:           "Degen",
	}
	existingTrader := &models.Trader{
		ID:       primitive.NewObjectID(),
		UserID:   existingUser.ID,
		SeasonID: "2026-08-29",
		IsActive: true,
	}
	userCreates, traderCreates := 0, 0

	svc := NewUserService(
		&fakeUserRepo{
			findByWalletFn: func(ctx context.Context, wallet string) (*models.User, error) {
				assert.Equal(t, "abcdefgh12345678", wallet)
				return existingUser, nil
			},
			createFn: func(ctx context.Context, user *models.User) error {
				userCreates++
				return nil
			},
		},
		&fakeTraderRepo{
			findByUserAndSeasonFn: func(ctx context.Context, userID primitive.ObjectID, seasonID string) (*models.Trader, error) {
				return existingTrader, nil
			},
			createFn: func(ctx context.Context, trader *models.Trader) error {
				traderCreates++
				return nil
			},
		},
		&fakeGateway{
			tokenBalanceFn: func(ctx context.Context, wallet string) (uint64, error) {
				return testTokenRequired, nil
			},
		},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }

	user, trader, err := svc.JoinByWallet(context.Background(), "AbCdEfGh12345678")
	require.NoError(t, err)
	assert.Same(t, existingUser, user)
	assert.Same(t, existingTrader, trader)
	assert.Zero(t, userCreates)
	assert.Zero(t, traderCreates)
}

func TestJoinByWalletNewSeasonNewTrader(t *testing.T) {
	existingUser := &models.User{ID: primitive.NewObjectID(), Wallet: "abc", WalletOriginal: "ABC"}
	var createdTrader *models.Trader

	svc := NewUserService(
		&fakeUserRepo{
			findByWalletFn: func(ctx context.Context, wallet string) (*models.User, error) {
				return existingUser, nil
			},
		},
		&fakeTraderRepo{
			findByUserAndSeasonFn: func(ctx context.Context, userID primitive.ObjectID, seasonID string) (*models.Trader, error) {
				return nil, mongo.ErrNoDocuments
			},
			createFn: func(ctx context.Context, trader *models.Trader) error {
				createdTrader = trader
				return nil
			},
		},
		&fakeGateway{
			tokenBalanceFn: func(ctx context.Context, wallet string) (uint64, error) {
				return testTokenRequired, nil
			},
		},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 0, 5, 0, 0, time.UTC) }

	_, trader, err := svc.JoinByWallet(context.Background(), "ABC")
	require.NoError(t, err)
	require.NotNil(t, createdTrader)
	assert.Equal(t, "2026-08-30", createdTrader.SeasonID)
	assert.Same(t, createdTrader, trader)
}

func TestUpdateProfile(t *testing.T) {
	existing := &models.User{
		ID:             primitive.NewObjectID(),
		Wallet:         "abcdefgh12345678",
		WalletOriginal: "AbCdEfGh12345678",
		Name:           "AbCdE",
	}
	var updated *models.User

	svc := NewUserService(
		&fakeUserRepo{
			findByWalletFn: func(ctx context.Context, wallet string) (*models.User, error) {
				assert.Equal(t, "abcdefgh12345678", wallet)
				return existing, nil
			},
			updateFn: func(ctx context.Context, user *models.User) error {
				updated = user
				return nil
			},
		},
		&fakeTraderRepo{},
		&fakeGateway{},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }

	user, err := svc.UpdateProfile(context.Background(), "AbCdEfGh12345678", "Degen", "https://cdn/avatar.png")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Degen", user.Name)
	assert.Equal(t, "https://cdn/avatar.png", user.Avatar)
	assert.Same(t, existing, updated)
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	existing := &models.User{
		ID:     primitive.NewObjectID(),
		Wallet: "abc",
		Name:   "Degen",
		Avatar: "https://cdn/old.png",
	}
	svc := NewUserService(
		&fakeUserRepo{
			findByWalletFn: func(ctx context.Context, wallet string) (*models.User, error) {
				return existing, nil
			},
		},
		&fakeTraderRepo{},
		&fakeGateway{},
		testTokenRequired,
	)

	user, err := svc.UpdateProfile(context.Background(), "abc", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Degen", user.Name)
	assert.Equal(t, "https://cdn/old.png", user.Avatar)
}

func TestUpdateProfileUnknownWallet(t *testing.T) {
	updates := 0
	svc := NewUserService(
		&fakeUserRepo{
			updateFn: func(ctx context.Context, user *models.User) error {
				updates++
				return nil
			},
		},
		&fakeTraderRepo{},
		&fakeGateway{},
		testTokenRequired,
	)

	_, err := svc.UpdateProfile(context.Background(), "neverseen", "Name", "")
	assert.ErrorIs(t, err, ErrUnknownWallet)
	assert.Zero(t, updates)
}

func TestStats(t *testing.T) {
	traders, _ := seasonTraders("2026-08-29", 100, 50, 10)
	svc := NewUserService(
		&fakeUserRepo{
			countFn: func(ctx context.Context) (int64, error) {
				return 123, nil
			},
		},
		&fakeTraderRepo{
			findBySeasonFn: func(ctx context.Context, seasonID string) ([]*models.Trader, error) {
				assert.Equal(t, "2026-08-29", seasonID)
				return traders, nil
			},
		},
		&fakeGateway{},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CompetitionStats{TotalUsers: 123, SeasonID: "2026-08-29", SeasonTraders: 3}, stats)
}

func TestLeaderboardMasksWalletsAndCapsChances(t *testing.T) {
	traders, users := seasonTraders("2026-08-29", 500, 200, 50, 10)
	svc := NewUserService(
		&fakeUserRepo{
			findByIDsFn: func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
				return users, nil
			},
		},
		&fakeTraderRepo{
			findTopEligibleFn: func(ctx context.Context, seasonID string, limit int) ([]*models.Trader, error) {
				assert.Equal(t, 10, limit)
				return traders, nil
			},
		},
		&fakeGateway{},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }

	entries, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, 55.0, entries[0].WinChance)
	assert.Equal(t, 30.0, entries[1].WinChance)
	assert.Equal(t, 15.0, entries[2].WinChance)
	assert.Zero(t, entries[3].WinChance, "no win chance outside the draw ranks")

	assert.NotContains(t, entries[0].Wallet, users[traders[0].UserID].WalletOriginal, "full address must not leak")
}
