// Package ledger abstracts the on-chain operations the draw pipeline
// depends on: pool balance queries, prize transfers, creator-fee
// claiming and token-holding checks.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TransferRef identifies a submitted on-chain transfer.
type TransferRef struct {
	Signature string
	URL       string
}

// SignatureState is the resolved state of a previously submitted transfer.
type SignatureState int

const (
	// StatePending means the transaction is known to the network but not
	// yet confirmed.
	StatePending SignatureState = iota
	// StateConfirmed means the transaction reached confirmed or finalized
	// commitment.
	StateConfirmed
	// StateDropped means the transaction failed on chain or was never
	// included before its blockhash expired.
	StateDropped
)

// UnconfirmedError reports a transfer that was submitted but whose
// confirmation outcome is unknown (e.g. the confirmation wait timed
// out). The payout may or may not have landed; callers must not retry
// the transfer and should reconcile via SignatureStatus later.
type UnconfirmedError struct {
	Signature string
	Err       error
}

func (e *UnconfirmedError) Error() string {
	return fmt.Sprintf("transfer %s submitted but unconfirmed: %v", e.Signature, e.Err)
}

func (e *UnconfirmedError) Unwrap() error { return e.Err }

// Gateway is the ledger interface consumed by the scheduled jobs.
type Gateway interface {
	// PoolBalance returns the operator account balance in SOL.
	PoolBalance(ctx context.Context) (decimal.Decimal, error)

	// Transfer sends amount (SOL) to the destination address and waits
	// for confirmation. The amount is floored to whole lamports. When the
	// transaction was submitted but confirmation could not be observed,
	// Transfer returns the non-nil ref together with an *UnconfirmedError.
	Transfer(ctx context.Context, destination string, amount decimal.Decimal) (*TransferRef, error)

	// SignatureStatus resolves the state of a previously submitted
	// transfer, searching transaction history.
	SignatureStatus(ctx context.Context, signature string) (SignatureState, error)

	// TokenBalance returns the wallet's balance of the competition token
	// in base units. A wallet without a token account has balance zero.
	TokenBalance(ctx context.Context, wallet string) (uint64, error)

	// ClaimCreatorFees claims accumulated creator fees into the pool.
	ClaimCreatorFees(ctx context.Context) (*TransferRef, error)
}
