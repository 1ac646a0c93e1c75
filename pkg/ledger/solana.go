package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// ErrClaimNotConfigured is returned by ClaimCreatorFees when no claim
// endpoint is configured.
var ErrClaimNotConfigured = errors.New("fee claim endpoint not configured")

var lamportsPerSol = decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))

// SolanaGateway implements Gateway against a Solana RPC node. The
// operator key both funds prize transfers and owns the pool account.
type SolanaGateway struct {
	client        *rpc.Client
	operator      solana.PrivateKey
	tokenMint     solana.PublicKey
	claimEndpoint string
	claimFee      float64
	httpClient    *http.Client
	confirmPoll   time.Duration
}

// NewSolanaGateway creates a gateway from the base58 operator private
// key and the competition token mint address.
func NewSolanaGateway(endpoint, operatorKey, tokenMint, claimEndpoint string, claimPriorityFee float64) (*SolanaGateway, error) {
	operator, err := solana.PrivateKeyFromBase58(operatorKey)
	if err != nil {
		return nil, fmt.Errorf("invalid operator private key: %w", err)
	}
	mint, err := solana.PublicKeyFromBase58(tokenMint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint address: %w", err)
	}
	return &SolanaGateway{
		client:        rpc.New(endpoint),
		operator:      operator,
		tokenMint:     mint,
		claimEndpoint: claimEndpoint,
		claimFee:      claimPriorityFee,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		confirmPoll:   2 * time.Second,
	}, nil
}

// PoolBalance returns the operator account balance in SOL.
func (g *SolanaGateway) PoolBalance(ctx context.Context) (decimal.Decimal, error) {
	out, err := g.client.GetBalance(ctx, g.operator.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query pool balance: %w", err)
	}
	return decimal.NewFromInt(int64(out.Value)).Div(lamportsPerSol), nil
}

// ToLamports converts a SOL amount to whole lamports, flooring the
// result. Flooring (never rounding up) guarantees we do not attempt to
// send more than the computed prize.
func ToLamports(amount decimal.Decimal) uint64 {
	if amount.IsNegative() {
		return 0
	}
	return uint64(amount.Mul(lamportsPerSol).Floor().IntPart())
}

// Transfer sends amount SOL to the destination and waits for confirmation.
func (g *SolanaGateway) Transfer(ctx context.Context, destination string, amount decimal.Decimal) (*TransferRef, error) {
	to, err := solana.PublicKeyFromBase58(destination)
	if err != nil {
		return nil, fmt.Errorf("invalid destination address %q: %w", destination, err)
	}
	lamports := ToLamports(amount)
	if lamports == 0 {
		return nil, fmt.Errorf("transfer amount %s floors to zero lamports", amount)
	}

	recent, err := g.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent blockhash: %w", err)
	}

	from := g.operator.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, from, to).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer transaction: %w", err)
	}
	if err := g.sign(tx); err != nil {
		return nil, err
	}

	// The signature is fixed at signing time, so it is known even when the
	// submission call itself does not complete.
	sig := tx.Signatures[0]
	ref := &TransferRef{Signature: sig.String(), URL: explorerURL(sig.String())}

	if _, err := g.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	}); err != nil {
		if ctx.Err() != nil {
			// The context expired mid-submission: the node may have received
			// the transaction. Outcome unknown, must not be retried.
			return ref, &UnconfirmedError{Signature: ref.Signature, Err: err}
		}
		return nil, fmt.Errorf("failed to submit transfer: %w", err)
	}

	if err := g.awaitConfirmation(ctx, sig); err != nil {
		return ref, &UnconfirmedError{Signature: ref.Signature, Err: err}
	}
	return ref, nil
}

func (g *SolanaGateway) sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(g.operator.PublicKey()) {
			return &g.operator
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// awaitConfirmation polls signature statuses until the transaction is
// confirmed, fails, or the context expires.
func (g *SolanaGateway) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(g.confirmPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			out, err := g.client.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				continue // transient RPC error, keep polling until ctx expires
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}

// SignatureStatus resolves the state of a previously submitted transfer.
func (g *SolanaGateway) SignatureStatus(ctx context.Context, signature string) (SignatureState, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return StateDropped, fmt.Errorf("invalid signature %q: %w", signature, err)
	}
	out, err := g.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return StatePending, fmt.Errorf("failed to query signature status: %w", err)
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		// Unknown even with history search: never included.
		return StateDropped, nil
	}
	status := out.Value[0]
	if status.Err != nil {
		return StateDropped, nil
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return StateConfirmed, nil
	}
	return StatePending, nil
}

// TokenBalance returns the wallet's balance of the competition token in
// base units, via the wallet's associated token account.
func (g *SolanaGateway) TokenBalance(ctx context.Context, wallet string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet address %q: %w", wallet, err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, g.tokenMint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive token account: %w", err)
	}
	out, err := g.client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		// A wallet that never held the token has no token account.
		if strings.Contains(err.Error(), "could not find account") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query token balance: %w", err)
	}
	balance, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable token balance %q: %w", out.Value.Amount, err)
	}
	return balance, nil
}

type claimRequest struct {
	Action      string  `json:"action"`
	PriorityFee float64 `json:"priorityFee"`
	Pool        string  `json:"pool"`
	PublicKey   string  `json:"publicKey"`
}

// ClaimCreatorFees requests a prebuilt collect-creator-fee transaction
// from the configured endpoint, signs it with the operator key and
// submits it. Confirmation is not awaited; a dropped claim is retried on
// the next tick.
func (g *SolanaGateway) ClaimCreatorFees(ctx context.Context) (*TransferRef, error) {
	if g.claimEndpoint == "" {
		return nil, ErrClaimNotConfigured
	}

	payload, err := json.Marshal(claimRequest{
		Action:      "collectCreatorFee",
		PriorityFee: g.claimFee,
		Pool:        "pump",
		PublicKey:   g.operator.PublicKey().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode claim request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.claimEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build claim request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claim request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("claim endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode claim transaction: %w", err)
	}
	if err := g.sign(tx); err != nil {
		return nil, err
	}

	sig, err := g.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit claim transaction: %w", err)
	}
	return &TransferRef{Signature: sig.String(), URL: explorerURL(sig.String())}, nil
}

func explorerURL(signature string) string {
	return "https://solscan.io/tx/" + signature
}
