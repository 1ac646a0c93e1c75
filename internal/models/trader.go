package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trader represents one wallet's entry in a daily competition season.
// A new Trader document is created per season a user joins.
type Trader struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	SeasonID string             `bson:"seasonId" json:"seasonId"` // daily window id, YYYY-MM-DD (UTC)
	IsActive bool               `bson:"isActive" json:"isActive"`

	// Performance stats refreshed by the stats-sync job
	RealizedUsdPnl float64 `bson:"realizedUsdPnl" json:"realizedUsdPnl"`
	RealizedSolPnl float64 `bson:"realizedSolPnl" json:"realizedSolPnl"`
	TotalTrades    int     `bson:"totalTrades" json:"totalTrades"`
	BuyCount       int     `bson:"buyCount" json:"buyCount"`
	SellCount      int     `bson:"sellCount" json:"sellCount"`
	UsdBought      float64 `bson:"usdBought" json:"usdBought"`
	UsdSold        float64 `bson:"usdSold" json:"usdSold"`
	SolBought      float64 `bson:"solBought" json:"solBought"`
	SolSold        float64 `bson:"solSold" json:"solSold"`

	// HoldingFlagged marks a trader whose token balance dropped below the
	// required threshold. Flagged traders are excluded from ranking and
	// draws until the balance recovers.
	HoldingFlagged bool      `bson:"holdingFlagged" json:"holdingFlagged"`
	LastTokenCheck time.Time `bson:"lastTokenCheck,omitempty" json:"lastTokenCheck,omitempty"`

	LastUpdated time.Time `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TraderStats is the refreshable performance subset of a Trader, written
// by the stats-sync job.
type TraderStats struct {
	RealizedUsdPnl float64 `bson:"realizedUsdPnl"`
	RealizedSolPnl float64 `bson:"realizedSolPnl"`
	TotalTrades    int     `bson:"totalTrades"`
	BuyCount       int     `bson:"buyCount"`
	SellCount      int     `bson:"sellCount"`
	UsdBought      float64 `bson:"usdBought"`
	UsdSold        float64 `bson:"usdSold"`
	SolBought      float64 `bson:"solBought"`
	SolSold        float64 `bson:"solSold"`
}
