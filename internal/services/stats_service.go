package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/internal/repositories"
	"github.com/pnl-league/competition-backend/internal/timewindow"
	"github.com/pnl-league/competition-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// StatsServiceImpl implements the StatsService interface
type StatsServiceImpl struct {
	traderRepo repositories.TraderRepository
	userRepo   repositories.UserRepository
	portfolio  PortfolioProvider
	now        func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(traderRepo repositories.TraderRepository, userRepo repositories.UserRepository, provider PortfolioProvider) *StatsServiceImpl {
	return &StatsServiceImpl{
		traderRepo: traderRepo,
		userRepo:   userRepo,
		portfolio:  provider,
		now:        time.Now,
	}
}

// SyncSeason refreshes the performance stats of every trader in the
// current season from the portfolio API. Failures are isolated per
// trader: one bad wallet never aborts the sweep.
func (s *StatsServiceImpl) SyncSeason(ctx context.Context) (SweepSummary, error) {
	seasonID := timewindow.DailyID(s.now())

	traders, err := s.traderRepo.FindBySeason(ctx, seasonID)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("failed to list season traders: %w", err)
	}
	summary := SweepSummary{Total: len(traders)}
	if len(traders) == 0 {
		slog.Info("No traders to sync", "seasonId", seasonID)
		return summary, nil
	}

	ids := make([]primitive.ObjectID, 0, len(traders))
	for _, trader := range traders {
		ids = append(ids, trader.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return summary, fmt.Errorf("failed to resolve trader identities: %w", err)
	}

	for _, trader := range traders {
		user, ok := users[trader.UserID]
		if !ok {
			slog.Warn("Trader references missing user, skipping sync", "traderId", trader.ID.Hex())
			summary.Failed++
			continue
		}

		p, err := s.portfolio.GetWalletPortfolio(ctx, user.WalletOriginal)
		if err != nil {
			slog.Error("Failed to fetch portfolio", "wallet", utils.MaskWallet(user.WalletOriginal), "error", err)
			summary.Failed++
			continue
		}

		stats := models.TraderStats{
			RealizedUsdPnl: p.RealizedUsdPnl,
			RealizedSolPnl: p.RealizedSolPnl,
			TotalTrades:    p.TotalTrades,
			BuyCount:       p.BuyCount,
			SellCount:      p.SellCount,
			UsdBought:      p.UsdBought,
			UsdSold:        p.UsdSold,
			SolBought:      p.SolBought,
			SolSold:        p.SolSold,
		}
		if err := s.traderRepo.UpdateStats(ctx, trader.ID, stats, s.now()); err != nil {
			slog.Error("Failed to store trader stats", "traderId", trader.ID.Hex(), "error", err)
			summary.Failed++
			continue
		}
		summary.Updated++
	}

	slog.Info("Stats sync finished", "seasonId", seasonID, "total", summary.Total, "updated", summary.Updated, "failed", summary.Failed)
	return summary, nil
}
