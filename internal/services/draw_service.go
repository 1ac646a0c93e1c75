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
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// prizeShare is the fraction of the pool paid out per draw.
var prizeShare = decimal.RequireFromString("0.1")

// DrawServiceImpl implements the DrawService interface
type DrawServiceImpl struct {
	drawRepo      repositories.DrawRepository
	ranking       RankingService
	gateway       ledger.Gateway
	rand          lottery.Source
	ledgerTimeout time.Duration
	now           func() time.Time
}

// NewDrawService creates a new draw service. rand supplies the lottery
// sample; production passes a seeded math/rand instance.
func NewDrawService(drawRepo repositories.DrawRepository, ranking RankingService, gateway ledger.Gateway, rand lottery.Source, ledgerTimeout time.Duration) *DrawServiceImpl {
	return &DrawServiceImpl{
		drawRepo:      drawRepo,
		ranking:       ranking,
		gateway:       gateway,
		rand:          rand,
		ledgerTimeout: ledgerTimeout,
		now:           time.Now,
	}
}

func (s *DrawServiceImpl) ledgerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ledgerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.ledgerTimeout)
}

// PerformDraw runs one draw attempt for the current hourly window:
// idempotency check, ranking, pool snapshot, winner selection, prize
// transfer, and only then persistence. The draw record is written after
// the transfer so a payout is never recorded that did not happen; the
// unique drawId index closes the remaining race the other way.
func (s *DrawServiceImpl) PerformDraw(ctx context.Context) (DrawOutcome, *models.Draw, error) {
	now := s.now()
	drawID := timewindow.HourlyID(now)
	seasonID := timewindow.DailyID(now)
	slog.Info("Starting draw", "drawId", drawID, "seasonId", seasonID)

	existing, err := s.drawRepo.FindByDrawID(ctx, drawID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return OutcomeFailed, nil, fmt.Errorf("failed to check for existing draw: %w", err)
	}
	if existing != nil {
		slog.Info("Draw already recorded for this window", "drawId", drawID, "status", existing.Status)
		return OutcomeAlreadyDone, existing, nil
	}

	participants, err := s.ranking.RankTopN(ctx, seasonID, lottery.DrawSize)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to rank participants: %w", err)
	}
	if len(participants) < lottery.DrawSize {
		slog.Info("Not enough eligible participants, skipping draw", "drawId", drawID, "found", len(participants), "required", lottery.DrawSize)
		return OutcomeInsufficientParticipants, nil, nil
	}

	poolCtx, cancel := s.ledgerCtx(ctx)
	pool, err := s.gateway.PoolBalance(poolCtx)
	cancel()
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to read pool balance: %w", err)
	}
	prize := pool.Mul(prizeShare)
	slog.Info("Prize computed", "drawId", drawID, "pool", pool.String(), "prize", prize.String())

	winner, err := lottery.SelectWinner(participants, s.rand)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("winner selection failed: %w", err)
	}
	slog.Info("Winner selected", "drawId", drawID, "winner", winner.Name, "wallet", utils.MaskWallet(winner.WalletOriginal), "rank", winner.Rank)

	txCtx, cancel := s.ledgerCtx(ctx)
	ref, err := s.gateway.Transfer(txCtx, winner.WalletOriginal, prize)
	cancel()

	status := models.DrawStatusCompleted
	if err != nil {
		var unconfirmed *ledger.UnconfirmedError
		if errors.As(err, &unconfirmed) && ref != nil {
			// The transfer may have landed. Record the window as blocked so
			// it is never paid twice; the reconciliation sweep settles it.
			slog.Warn("Transfer outcome unknown, recording unconfirmed draw", "drawId", drawID, "signature", ref.Signature)
			status = models.DrawStatusUnconfirmed
		} else {
			slog.Error("Prize transfer failed, window stays open", "drawId", drawID, "error", err)
			return OutcomePayFailed, nil, fmt.Errorf("prize transfer failed: %w", err)
		}
	}

	draw := &models.Draw{
		DrawID:          drawID,
		SeasonID:        seasonID,
		DrawTime:        now,
		Participants:    participants,
		WinnerID:        winner.UserID,
		WinnerWallet:    winner.WalletOriginal,
		WinnerName:      winner.Name,
		WinnerRank:      winner.Rank,
		PrizeAmount:     prize.InexactFloat64(),
		TotalPoolAtDraw: pool.InexactFloat64(),
		TxSignature:     ref.Signature,
		TxURL:           ref.URL,
		Status:          status,
		CreatedAt:       s.now(),
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent invocation persisted this window first. Our
			// transfer already went out; surface it loudly for manual review.
			slog.Error("Duplicate draw record detected after transfer", "drawId", drawID, "signature", ref.Signature)
			return OutcomeAlreadyDone, nil, nil
		}
		slog.Error("Transfer confirmed but draw record not persisted", "drawId", drawID, "signature", ref.Signature, "error", err)
		return OutcomeFailed, nil, fmt.Errorf("failed to persist draw record: %w", err)
	}

	if status == models.DrawStatusUnconfirmed {
		return OutcomeUnconfirmed, draw, nil
	}
	slog.Info("Draw completed", "drawId", drawID, "winner", winner.Name, "prize", prize.String(), "tx", ref.Signature)
	return OutcomeCompleted, draw, nil
}

// ResolveUnconfirmed settles draws whose transfer outcome was unknown at
// draw time. Confirmed transfers are finalized; transfers that provably
// never landed have their record removed, reopening the window's slot in
// history. Still-pending signatures are left for the next sweep.
func (s *DrawServiceImpl) ResolveUnconfirmed(ctx context.Context) error {
	pending, err := s.drawRepo.FindByStatus(ctx, models.DrawStatusUnconfirmed)
	if err != nil {
		return fmt.Errorf("failed to list unconfirmed draws: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	slog.Info("Reconciling unconfirmed draws", "count", len(pending))

	for _, draw := range pending {
		stateCtx, cancel := s.ledgerCtx(ctx)
		state, err := s.gateway.SignatureStatus(stateCtx, draw.TxSignature)
		cancel()
		if err != nil {
			slog.Warn("Could not resolve transfer state", "drawId", draw.DrawID, "signature", draw.TxSignature, "error", err)
			continue
		}

		switch state {
		case ledger.StateConfirmed:
			if err := s.drawRepo.UpdateStatus(ctx, draw.ID, models.DrawStatusCompleted); err != nil {
				slog.Error("Failed to finalize reconciled draw", "drawId", draw.DrawID, "error", err)
				continue
			}
			slog.Info("Unconfirmed draw finalized", "drawId", draw.DrawID, "signature", draw.TxSignature)
		case ledger.StateDropped:
			if err := s.drawRepo.Delete(ctx, draw.ID); err != nil {
				slog.Error("Failed to remove dropped draw record", "drawId", draw.DrawID, "error", err)
				continue
			}
			slog.Warn("Transfer never landed, draw record removed", "drawId", draw.DrawID, "signature", draw.TxSignature)
		default:
			slog.Info("Transfer still pending", "drawId", draw.DrawID, "signature", draw.TxSignature)
		}
	}
	return nil
}

// GetDrawByDrawID returns the draw persisted for a window id, or nil
// when the window has no draw.
func (s *DrawServiceImpl) GetDrawByDrawID(ctx context.Context, drawID string) (*models.Draw, error) {
	draw, err := s.drawRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return draw, nil
}

// GetRecentDraws returns the most recent draws, newest first.
func (s *DrawServiceImpl) GetRecentDraws(ctx context.Context, limit int) ([]*models.Draw, error) {
	return s.drawRepo.FindRecent(ctx, limit)
}

// GetDrawsBySeason returns every draw of one daily season.
func (s *DrawServiceImpl) GetDrawsBySeason(ctx context.Context, seasonID string) ([]*models.Draw, error) {
	return s.drawRepo.FindBySeason(ctx, seasonID)
}
