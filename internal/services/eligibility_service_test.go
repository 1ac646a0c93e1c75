package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testTokenRequired = 1_000_000

func newHoldingsService(traders []*models.Trader, users map[primitive.ObjectID]*models.User, balances map[string]uint64, flags map[primitive.ObjectID]bool) *EligibilityServiceImpl {
	svc := NewEligibilityService(
		&fakeTraderRepo{
			findActiveBySeasonFn: func(ctx context.Context, seasonID string) ([]*models.Trader, error) {
				return traders, nil
			},
			setHoldingFlagFn: func(ctx context.Context, id primitive.ObjectID, flagged bool, checkedAt time.Time) error {
				flags[id] = flagged
				return nil
			},
		},
		&fakeUserRepo{
			findByIDsFn: func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
				return users, nil
			},
		},
		&fakeGateway{
			tokenBalanceFn: func(ctx context.Context, wallet string) (uint64, error) {
				balance, ok := balances[wallet]
				if !ok {
					return 0, errors.New("rpc unavailable")
				}
				return balance, nil
			},
		},
		testTokenRequired,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestValidateHoldingsFlagsDepletedWallet(t *testing.T) {
	traders, users := seasonTraders("2026-08-29", 100, 50)
	balances := map[string]uint64{
		users[traders[0].UserID].WalletOriginal: testTokenRequired,
		users[traders[1].UserID].WalletOriginal: testTokenRequired - 1,
	}
	flags := map[primitive.ObjectID]bool{}

	svc := newHoldingsService(traders, users, balances, flags)
	summary, err := svc.ValidateHoldings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, HoldingsSummary{Total: 2, Flagged: 1, Valid: 1}, summary)
	assert.True(t, flags[traders[1].ID])
	_, touched := flags[traders[0].ID]
	assert.False(t, touched, "a holding wallet keeps its unflagged state")
}

func TestValidateHoldingsRestoresRecoveredWallet(t *testing.T) {
	traders, users := seasonTraders("2026-08-29", 100)
	traders[0].HoldingFlagged = true
	balances := map[string]uint64{
		users[traders[0].UserID].WalletOriginal: testTokenRequired,
	}
	flags := map[primitive.ObjectID]bool{}

	svc := newHoldingsService(traders, users, balances, flags)
	summary, err := svc.ValidateHoldings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, HoldingsSummary{Total: 1, Restored: 1}, summary)
	flagged, touched := flags[traders[0].ID]
	require.True(t, touched)
	assert.False(t, flagged, "flag must clear when the balance recovers")
}

func TestValidateHoldingsExactThresholdCounts(t *testing.T) {
	traders, users := seasonTraders("2026-08-29", 100)
	balances := map[string]uint64{
		users[traders[0].UserID].WalletOriginal: testTokenRequired,
	}
	flags := map[primitive.ObjectID]bool{}

	svc := newHoldingsService(traders, users, balances, flags)
	summary, err := svc.ValidateHoldings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HoldingsSummary{Total: 1, Valid: 1}, summary)
}

func TestValidateHoldingsIsolatesBalanceCheckFailures(t *testing.T) {
	traders, users := seasonTraders("2026-08-29", 100, 50)
	// Only the first wallet has a resolvable balance.
	balances := map[string]uint64{
		users[traders[0].UserID].WalletOriginal: testTokenRequired,
	}
	flags := map[primitive.ObjectID]bool{}

	svc := newHoldingsService(traders, users, balances, flags)
	summary, err := svc.ValidateHoldings(context.Background())
	require.NoError(t, err, "an unreadable balance must not abort the sweep")

	assert.Equal(t, HoldingsSummary{Total: 2, Valid: 1, Failed: 1}, summary)
	assert.Empty(t, flags, "no flag change without a successful balance read")
}
