package services

import (
	"context"
	"time"

	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/pkg/ledger"
	"github.com/pnl-league/competition-backend/pkg/portfolio"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Function-backed fakes. Unset functions fall back to zero-value
// behavior so each test only wires what it asserts on.

type fakeUserRepo struct {
	createFn       func(ctx context.Context, user *models.User) error
	findByWalletFn func(ctx context.Context, wallet string) (*models.User, error)
	findByIDsFn    func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	updateFn       func(ctx context.Context, user *models.User) error
	countFn        func(ctx context.Context) (int64, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) FindByWallet(ctx context.Context, wallet string) (*models.User, error) {
	if f.findByWalletFn != nil {
		return f.findByWalletFn(ctx, wallet)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	if f.findByIDsFn != nil {
		return f.findByIDsFn(ctx, ids)
	}
	return map[primitive.ObjectID]*models.User{}, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return 0, nil
}

type fakeTraderRepo struct {
	createFn              func(ctx context.Context, trader *models.Trader) error
	findByUserAndSeasonFn func(ctx context.Context, userID primitive.ObjectID, seasonID string) (*models.Trader, error)
	findBySeasonFn        func(ctx context.Context, seasonID string) ([]*models.Trader, error)
	findActiveBySeasonFn  func(ctx context.Context, seasonID string) ([]*models.Trader, error)
	findTopEligibleFn     func(ctx context.Context, seasonID string, limit int) ([]*models.Trader, error)
	updateStatsFn         func(ctx context.Context, id primitive.ObjectID, stats models.TraderStats, updatedAt time.Time) error
	setHoldingFlagFn      func(ctx context.Context, id primitive.ObjectID, flagged bool, checkedAt time.Time) error
	touchTokenCheckFn     func(ctx context.Context, id primitive.ObjectID, checkedAt time.Time) error
}

func (f *fakeTraderRepo) Create(ctx context.Context, trader *models.Trader) error {
	if f.createFn != nil {
		return f.createFn(ctx, trader)
	}
	return nil
}

func (f *fakeTraderRepo) FindByUserAndSeason(ctx context.Context, userID primitive.ObjectID, seasonID string) (*models.Trader, error) {
	if f.findByUserAndSeasonFn != nil {
		return f.findByUserAndSeasonFn(ctx, userID, seasonID)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeTraderRepo) FindBySeason(ctx context.Context, seasonID string) ([]*models.Trader, error) {
	if f.findBySeasonFn != nil {
		return f.findBySeasonFn(ctx, seasonID)
	}
	return []*models.Trader{}, nil
}

func (f *fakeTraderRepo) FindActiveBySeason(ctx context.Context, seasonID string) ([]*models.Trader, error) {
	if f.findActiveBySeasonFn != nil {
		return f.findActiveBySeasonFn(ctx, seasonID)
	}
	return []*models.Trader{}, nil
}

func (f *fakeTraderRepo) FindTopEligible(ctx context.Context, seasonID string, limit int) ([]*models.Trader, error) {
	if f.findTopEligibleFn != nil {
		return f.findTopEligibleFn(ctx, seasonID, limit)
	}
	return []*models.Trader{}, nil
}

func (f *fakeTraderRepo) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.TraderStats, updatedAt time.Time) error {
	if f.updateStatsFn != nil {
		return f.updateStatsFn(ctx, id, stats, updatedAt)
	}
	return nil
}

func (f *fakeTraderRepo) SetHoldingFlag(ctx context.Context, id primitive.ObjectID, flagged bool, checkedAt time.Time) error {
	if f.setHoldingFlagFn != nil {
		return f.setHoldingFlagFn(ctx, id, flagged, checkedAt)
	}
	return nil
}

func (f *fakeTraderRepo) TouchTokenCheck(ctx context.Context, id primitive.ObjectID, checkedAt time.Time) error {
	if f.touchTokenCheckFn != nil {
		return f.touchTokenCheckFn(ctx, id, checkedAt)
	}
	return nil
}

type fakeDrawRepo struct {
	createFn       func(ctx context.Context, draw *models.Draw) error
	findByDrawIDFn func(ctx context.Context, drawID string) (*models.Draw, error)
	findBySeasonFn func(ctx context.Context, seasonID string) ([]*models.Draw, error)
	findRecentFn   func(ctx context.Context, limit int) ([]*models.Draw, error)
	findByStatusFn func(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error)
	updateStatusFn func(ctx context.Context, id primitive.ObjectID, status models.DrawStatus) error
	deleteFn       func(ctx context.Context, id primitive.ObjectID) error
}

func (f *fakeDrawRepo) Create(ctx context.Context, draw *models.Draw) error {
	if f.createFn != nil {
		return f.createFn(ctx, draw)
	}
	return nil
}

func (f *fakeDrawRepo) FindByDrawID(ctx context.Context, drawID string) (*models.Draw, error) {
	if f.findByDrawIDFn != nil {
		return f.findByDrawIDFn(ctx, drawID)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeDrawRepo) FindBySeason(ctx context.Context, seasonID string) ([]*models.Draw, error) {
	if f.findBySeasonFn != nil {
		return f.findBySeasonFn(ctx, seasonID)
	}
	return []*models.Draw{}, nil
}

func (f *fakeDrawRepo) FindRecent(ctx context.Context, limit int) ([]*models.Draw, error) {
	if f.findRecentFn != nil {
		return f.findRecentFn(ctx, limit)
	}
	return []*models.Draw{}, nil
}

func (f *fakeDrawRepo) FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	if f.findByStatusFn != nil {
		return f.findByStatusFn(ctx, status)
	}
	return []*models.Draw{}, nil
}

func (f *fakeDrawRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DrawStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (f *fakeDrawRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeDrawRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeGateway struct {
	poolBalanceFn      func(ctx context.Context) (decimal.Decimal, error)
	transferFn         func(ctx context.Context, destination string, amount decimal.Decimal) (*ledger.TransferRef, error)
	signatureStatusFn  func(ctx context.Context, signature string) (ledger.SignatureState, error)
	tokenBalanceFn     func(ctx context.Context, wallet string) (uint64, error)
	claimCreatorFeesFn func(ctx context.Context) (*ledger.TransferRef, error)
}

func (f *fakeGateway) PoolBalance(ctx context.Context) (decimal.Decimal, error) {
	if f.poolBalanceFn != nil {
		return f.poolBalanceFn(ctx)
	}
	return decimal.Zero, nil
}

func (f *fakeGateway) Transfer(ctx context.Context, destination string, amount decimal.Decimal) (*ledger.TransferRef, error) {
	if f.transferFn != nil {
		return f.transferFn(ctx, destination, amount)
	}
	return &ledger.TransferRef{Signature: "sig", URL: "https://solscan.io/tx/sig"}, nil
}

func (f *fakeGateway) SignatureStatus(ctx context.Context, signature string) (ledger.SignatureState, error) {
	if f.signatureStatusFn != nil {
		return f.signatureStatusFn(ctx, signature)
	}
	return ledger.StatePending, nil
}

func (f *fakeGateway) TokenBalance(ctx context.Context, wallet string) (uint64, error) {
	if f.tokenBalanceFn != nil {
		return f.tokenBalanceFn(ctx, wallet)
	}
	return 0, nil
}

func (f *fakeGateway) ClaimCreatorFees(ctx context.Context) (*ledger.TransferRef, error) {
	if f.claimCreatorFeesFn != nil {
		return f.claimCreatorFeesFn(ctx)
	}
	return nil, nil
}

type fakePortfolioProvider struct {
	getFn func(ctx context.Context, wallet string) (*portfolio.WalletPortfolio, error)
}

func (f *fakePortfolioProvider) GetWalletPortfolio(ctx context.Context, wallet string) (*portfolio.WalletPortfolio, error) {
	if f.getFn != nil {
		return f.getFn(ctx, wallet)
	}
	return &portfolio.WalletPortfolio{Wallet: wallet}, nil
}
