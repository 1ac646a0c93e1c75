package services

import (
	"context"
	"fmt"

	"github.com/pnl-league/competition-backend/internal/lottery"
	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// RankingServiceImpl implements the RankingService interface
type RankingServiceImpl struct {
	traderRepo repositories.TraderRepository
	userRepo   repositories.UserRepository
}

// NewRankingService creates a new ranking service
func NewRankingService(traderRepo repositories.TraderRepository, userRepo repositories.UserRepository) *RankingServiceImpl {
	return &RankingServiceImpl{
		traderRepo: traderRepo,
		userRepo:   userRepo,
	}
}

// RankTopN fetches the top eligible trader records for the season, then
// resolves their identities in a single batched lookup and assembles the
// ranked participant snapshots. Ranks are assigned contiguously from 1
// in storage sort order; a trader whose identity record is missing is
// skipped rather than occupying a rank.
func (s *RankingServiceImpl) RankTopN(ctx context.Context, seasonID string, n int) ([]models.DrawParticipant, error) {
	traders, err := s.traderRepo.FindTopEligible(ctx, seasonID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible traders: %w", err)
	}
	if len(traders) == 0 {
		return []models.DrawParticipant{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(traders))
	for _, trader := range traders {
		ids = append(ids, trader.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participant identities: %w", err)
	}

	participants := make([]models.DrawParticipant, 0, len(traders))
	for _, trader := range traders {
		user, ok := users[trader.UserID]
		if !ok {
			slog.Warn("Trader references missing user, skipping", "traderId", trader.ID.Hex(), "userId", trader.UserID.Hex())
			continue
		}

		rank := len(participants) + 1
		chance, err := lottery.ChanceForRank(rank)
		if err != nil {
			return nil, err
		}
		participants = append(participants, models.DrawParticipant{
			UserID:         user.ID,
			Wallet:         user.Wallet,
			WalletOriginal: user.WalletOriginal,
			Name:           user.Name,
			Avatar:         user.Avatar,
			Rank:           rank,
			RealizedUsdPnl: trader.RealizedUsdPnl,
			WinChance:      chance,
		})
	}
	return participants, nil
}
