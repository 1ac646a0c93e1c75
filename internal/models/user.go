package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered wallet in the system
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Wallet         string             `bson:"wallet" json:"wallet"`                 // lowercased, used as lookup key
	WalletOriginal string             `bson:"walletOriginal" json:"walletOriginal"` // case-sensitive address used for payouts
	Name           string             `bson:"name" json:"name"`
	Avatar         string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
