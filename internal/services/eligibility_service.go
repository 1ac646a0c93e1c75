package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pnl-league/competition-backend/internal/repositories"
	"github.com/pnl-league/competition-backend/internal/timewindow"
	"github.com/pnl-league/competition-backend/internal/utils"
	"github.com/pnl-league/competition-backend/pkg/ledger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// EligibilityServiceImpl implements the EligibilityService interface
type EligibilityServiceImpl struct {
	traderRepo    repositories.TraderRepository
	userRepo      repositories.UserRepository
	gateway       ledger.Gateway
	tokenRequired uint64
	now           func() time.Time
}

// NewEligibilityService creates a new eligibility service.
// tokenRequired is the minimum competition-token balance, in base units.
func NewEligibilityService(traderRepo repositories.TraderRepository, userRepo repositories.UserRepository, gateway ledger.Gateway, tokenRequired uint64) *EligibilityServiceImpl {
	return &EligibilityServiceImpl{
		traderRepo:    traderRepo,
		userRepo:      userRepo,
		gateway:       gateway,
		tokenRequired: tokenRequired,
		now:           time.Now,
	}
}

// ValidateHoldings re-checks the token balance of every active trader in
// the current season. The holding flag moves in both directions: a
// balance that dropped below the threshold flags the trader out of
// draws, a balance that recovered restores them. Per-trader failures are
// isolated.
func (s *EligibilityServiceImpl) ValidateHoldings(ctx context.Context) (HoldingsSummary, error) {
	seasonID := timewindow.DailyID(s.now())

	traders, err := s.traderRepo.FindActiveBySeason(ctx, seasonID)
	if err != nil {
		return HoldingsSummary{}, fmt.Errorf("failed to list active traders: %w", err)
	}
	summary := HoldingsSummary{Total: len(traders)}
	if len(traders) == 0 {
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
			slog.Warn("Trader references missing user, skipping holdings check", "traderId", trader.ID.Hex())
			summary.Failed++
			continue
		}

		balance, err := s.gateway.TokenBalance(ctx, user.WalletOriginal)
		if err != nil {
			slog.Error("Failed to read token balance", "wallet", utils.MaskWallet(user.WalletOriginal), "error", err)
			summary.Failed++
			continue
		}

		holds := balance >= s.tokenRequired
		switch {
		case !holds && !trader.HoldingFlagged:
			if err := s.traderRepo.SetHoldingFlag(ctx, trader.ID, true, s.now()); err != nil {
				slog.Error("Failed to flag trader", "traderId", trader.ID.Hex(), "error", err)
				summary.Failed++
				continue
			}
			slog.Info("Trader flagged, balance below threshold", "wallet", utils.MaskWallet(user.WalletOriginal), "balance", balance, "required", s.tokenRequired)
			summary.Flagged++
		case holds && trader.HoldingFlagged:
			if err := s.traderRepo.SetHoldingFlag(ctx, trader.ID, false, s.now()); err != nil {
				slog.Error("Failed to restore trader", "traderId", trader.ID.Hex(), "error", err)
				summary.Failed++
				continue
			}
			slog.Info("Trader restored, balance recovered", "wallet", utils.MaskWallet(user.WalletOriginal), "balance", balance)
			summary.Restored++
		default:
			if err := s.traderRepo.TouchTokenCheck(ctx, trader.ID, s.now()); err != nil {
				slog.Warn("Failed to record token check time", "traderId", trader.ID.Hex(), "error", err)
			}
			summary.Valid++
		}
	}

	slog.Info("Holdings check finished", "seasonId", seasonID, "total", summary.Total, "flagged", summary.Flagged, "restored", summary.Restored, "failed", summary.Failed)
	return summary, nil
}
