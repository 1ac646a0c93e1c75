package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawStatus represents the status of a persisted draw record
type DrawStatus string

const (
	// DrawStatusCompleted is the terminal state: the transfer was confirmed
	// on-chain and the record is final.
	DrawStatusCompleted DrawStatus = "COMPLETED"
	// DrawStatusUnconfirmed marks a draw whose transfer was submitted but
	// whose confirmation outcome is unknown. The record blocks the window
	// from being re-drawn and is resolved by the reconciliation sweep.
	DrawStatusUnconfirmed DrawStatus = "UNCONFIRMED"
)

// DrawParticipant is the immutable snapshot of one ranked participant
// considered in a draw.
type DrawParticipant struct {
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Wallet         string             `bson:"wallet" json:"wallet"`
	WalletOriginal string             `bson:"walletOriginal" json:"walletOriginal"`
	Name           string             `bson:"name" json:"name"`
	Avatar         string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Rank           int                `bson:"rank" json:"rank"`
	RealizedUsdPnl float64            `bson:"realizedUsdPnl" json:"realizedUsdPnl"`
	WinChance      float64            `bson:"winChance" json:"winChance"` // percentage points
}

// Draw is the permanent record of one prize draw. Exactly one document
// exists per draw window; DrawID carries a unique index so a concurrent
// duplicate insert fails at the storage layer instead of paying twice.
type Draw struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID          string             `bson:"drawId" json:"drawId"`     // hourly window id, YYYY-MM-DD-HH (UTC)
	SeasonID        string             `bson:"seasonId" json:"seasonId"` // daily window id, YYYY-MM-DD (UTC)
	DrawTime        time.Time          `bson:"drawTime" json:"drawTime"`
	Participants    []DrawParticipant  `bson:"participants" json:"participants"`
	WinnerID        primitive.ObjectID `bson:"winnerId" json:"winnerId"`
	WinnerWallet    string             `bson:"winnerWallet" json:"winnerWallet"`
	WinnerName      string             `bson:"winnerName" json:"winnerName"`
	WinnerRank      int                `bson:"winnerRank" json:"winnerRank"`
	PrizeAmount     float64            `bson:"prizeAmount" json:"prizeAmount"`         // SOL
	TotalPoolAtDraw float64            `bson:"totalPoolAtDraw" json:"totalPoolAtDraw"` // SOL
	TxSignature     string             `bson:"txSignature" json:"txSignature"`
	TxURL           string             `bson:"txUrl" json:"txUrl"`
	Status          DrawStatus         `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
