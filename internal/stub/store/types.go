package store

import "github.com/pointsdash/pointsdash/internal/model"

// User is a stored account: the public profile plus credential hashes.
// Hashes are serialized in admin state snapshots but never in API responses
// (handlers respond with the embedded UserProfile only).
type User struct {
	model.UserProfile
	PasswordHash string `json:"password_hash"`
	PINHash      string `json:"pin_hash"`
}

// Redemption is a stored redemption request with its owner and destination.
type Redemption struct {
	model.Redemption
	UserEmail string `json:"user_email"`
	// Destination is the wallet address or gift card email, depending on type.
	Destination string `json:"destination"`
}
