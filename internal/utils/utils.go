package utils

import "strings"

// MaskWallet masks a wallet address for logging (first 4 and last 4 characters)
func MaskWallet(wallet string) string {
	if len(wallet) > 8 {
		return wallet[:4] + "..." + wallet[len(wallet)-4:]
	}
	return "****"
}

// NormalizeWallet returns the lowercased form used as the lookup key.
// The original case-sensitive address is kept separately for payouts.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// DefaultName derives a display name from a wallet address when the user
// has not set one.
func DefaultName(wallet string) string {
	if len(wallet) >= 5 {
		return wallet[:5]
	}
	return wallet
}
