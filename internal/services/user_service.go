package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pnl-league/competition-backend/internal/lottery"
	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/internal/repositories"
	"github.com/pnl-league/competition-backend/internal/timewindow"
	"github.com/pnl-league/competition-backend/internal/utils"
	"github.com/pnl-league/competition-backend/pkg/ledger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userRepo      repositories.UserRepository
	traderRepo    repositories.TraderRepository
	gateway       ledger.Gateway
	tokenRequired uint64
	now           func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, traderRepo repositories.TraderRepository, gateway ledger.Gateway, tokenRequired uint64) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo:      userRepo,
		traderRepo:    traderRepo,
		gateway:       gateway,
		tokenRequired: tokenRequired,
		now:           time.Now,
	}
}

// JoinByWallet enters a wallet into the current daily season. The wallet
// must hold the required token balance. Joining is idempotent: a wallet
// already entered for the season gets its existing records back.
func (s *UserServiceImpl) JoinByWallet(ctx context.Context, wallet string) (*models.User, *models.Trader, error) {
	normalized := utils.NormalizeWallet(wallet)
	if normalized == "" {
		return nil, nil, errors.New("wallet address is required")
	}
	if s.gateway == nil {
		return nil, nil, errors.New("ledger gateway unavailable, cannot verify holdings")
	}

	balance, err := s.gateway.TokenBalance(ctx, wallet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify token holdings: %w", err)
	}
	if balance < s.tokenRequired {
		return nil, nil, ErrInsufficientHolding
	}

	user, err := s.userRepo.FindByWallet(ctx, normalized)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, fmt.Errorf("failed to look up wallet: %w", err)
		}
		now := s.now()
		user = &models.User{
			ID:             primitive.NewObjectID(),
			Wallet:         normalized,
			WalletOriginal: wallet,
			Name:           utils.DefaultName(wallet),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to register wallet: %w", err)
		}
		slog.Info("User registered", "wallet", utils.MaskWallet(wallet))
	}

	seasonID := timewindow.DailyID(s.now())
	trader, err := s.traderRepo.FindByUserAndSeason(ctx, user.ID, seasonID)
	if err == nil {
		return user, trader, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("failed to look up season entry: %w", err)
	}

	now := s.now()
	trader = &models.Trader{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		SeasonID:  seasonID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.traderRepo.Create(ctx, trader); err != nil {
		return nil, nil, fmt.Errorf("failed to enter season: %w", err)
	}
	slog.Info("Trader joined season", "wallet", utils.MaskWallet(wallet), "seasonId", seasonID)
	return user, trader, nil
}

// UpdateProfile sets the display name and avatar of a registered wallet.
// Empty fields are left unchanged.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, wallet, name, avatar string) (*models.User, error) {
	normalized := utils.NormalizeWallet(wallet)
	if normalized == "" {
		return nil, errors.New("wallet address is required")
	}

	user, err := s.userRepo.FindByWallet(ctx, normalized)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUnknownWallet
		}
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}

	if name != "" {
		user.Name = name
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	slog.Info("Profile updated", "wallet", utils.MaskWallet(wallet))
	return user, nil
}

// Stats returns the headline competition figures.
func (s *UserServiceImpl) Stats(ctx context.Context) (CompetitionStats, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return CompetitionStats{}, fmt.Errorf("failed to count users: %w", err)
	}

	seasonID := timewindow.DailyID(s.now())
	traders, err := s.traderRepo.FindBySeason(ctx, seasonID)
	if err != nil {
		return CompetitionStats{}, fmt.Errorf("failed to list season traders: %w", err)
	}

	return CompetitionStats{
		TotalUsers:    total,
		SeasonID:      seasonID,
		SeasonTraders: len(traders),
	}, nil
}

// Leaderboard returns the current season's ranked standings. Win chances
// are populated for the draw ranks only.
func (s *UserServiceImpl) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	seasonID := timewindow.DailyID(s.now())

	traders, err := s.traderRepo.FindTopEligible(ctx, seasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	if len(traders) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(traders))
	for _, trader := range traders {
		ids = append(ids, trader.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve leaderboard identities: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(traders))
	for _, trader := range traders {
		user, ok := users[trader.UserID]
		if !ok {
			continue
		}
		rank := len(entries) + 1
		chance, err := lottery.ChanceForRank(rank)
		if err != nil {
			chance = 0
		}
		entries = append(entries, LeaderboardEntry{
			Rank:           rank,
			Name:           user.Name,
			Avatar:         user.Avatar,
			Wallet:         utils.MaskWallet(user.WalletOriginal),
			RealizedUsdPnl: trader.RealizedUsdPnl,
			TotalTrades:    trader.TotalTrades,
			WinChance:      chance,
		})
	}
	return entries, nil
}
