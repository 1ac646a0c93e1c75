package services

import (
	"context"
	"errors"

	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/pkg/portfolio"
)

// DrawOutcome classifies how one orchestrator run ended. Only Completed
// performs a payout; the rest are expected, non-error business outcomes
// except PayFailed.
type DrawOutcome string

const (
	OutcomeCompleted                DrawOutcome = "COMPLETED"
	OutcomeAlreadyDone              DrawOutcome = "ALREADY_DONE"
	OutcomeInsufficientParticipants DrawOutcome = "INSUFFICIENT_PARTICIPANTS"
	OutcomePayFailed                DrawOutcome = "PAY_FAILED"
	OutcomeUnconfirmed              DrawOutcome = "UNCONFIRMED"
	OutcomeFailed                   DrawOutcome = "FAILED"
)

// ErrInsufficientHolding is returned when a wallet does not hold the
// required token balance to enter the competition.
var ErrInsufficientHolding = errors.New("wallet does not hold the required token balance")

// ErrUnknownWallet is returned when an operation references a wallet
// that was never registered.
var ErrUnknownWallet = errors.New("wallet is not registered")

// DrawService runs the hourly prize draw and exposes the persisted
// draw records to the reporting API.
type DrawService interface {
	// PerformDraw executes one draw attempt for the current hourly window.
	PerformDraw(ctx context.Context) (DrawOutcome, *models.Draw, error)
	// ResolveUnconfirmed reconciles draws whose transfer outcome was
	// unknown at draw time against the ledger.
	ResolveUnconfirmed(ctx context.Context) error
	GetDrawByDrawID(ctx context.Context, drawID string) (*models.Draw, error)
	GetRecentDraws(ctx context.Context, limit int) ([]*models.Draw, error)
	GetDrawsBySeason(ctx context.Context, seasonID string) ([]*models.Draw, error)
}

// RankingService produces the ranked, eligibility-filtered participant
// list for a season.
type RankingService interface {
	// RankTopN returns up to n participants sorted by realized USD PnL
	// descending, ranks assigned contiguously from 1. Fewer than n results
	// means the season cannot draw yet; it is not an error.
	RankTopN(ctx context.Context, seasonID string, n int) ([]models.DrawParticipant, error)
}

// StatsService refreshes trader performance from the portfolio API.
type StatsService interface {
	SyncSeason(ctx context.Context) (SweepSummary, error)
}

// EligibilityService re-validates token holdings and maintains the
// holding flag on trader records.
type EligibilityService interface {
	ValidateHoldings(ctx context.Context) (HoldingsSummary, error)
}

// UserService handles competition entry, profiles and leaderboard reads.
type UserService interface {
	JoinByWallet(ctx context.Context, wallet string) (*models.User, *models.Trader, error)
	UpdateProfile(ctx context.Context, wallet, name, avatar string) (*models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Stats(ctx context.Context) (CompetitionStats, error)
}

// PortfolioProvider is the stats source consumed by the sync sweep.
// *portfolio.Client satisfies it.
type PortfolioProvider interface {
	GetWalletPortfolio(ctx context.Context, wallet string) (*portfolio.WalletPortfolio, error)
}

// SweepSummary aggregates per-item results of a stats sweep.
type SweepSummary struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// HoldingsSummary aggregates per-item results of a holdings sweep.
type HoldingsSummary struct {
	Total    int `json:"total"`
	Flagged  int `json:"flagged"`
	Restored int `json:"restored"`
	Valid    int `json:"valid"`
	Failed   int `json:"failed"`
}

// CompetitionStats is the headline figures of the competition.
type CompetitionStats struct {
	TotalUsers    int64  `json:"totalUsers"`
	SeasonID      string `json:"seasonId"`
	SeasonTraders int    `json:"seasonTraders"`
}

// LeaderboardEntry is one row of the season leaderboard.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	Name           string  `json:"name"`
	Avatar         string  `json:"avatar,omitempty"`
	Wallet         string  `json:"wallet"`
	RealizedUsdPnl float64 `json:"realizedUsdPnl"`
	TotalTrades    int     `json:"totalTrades"`
	WinChance      float64 `json:"winChance"` // zero outside the draw ranks
}
