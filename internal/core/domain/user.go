package domain

import "time"

// Tier is a user's service level. It determines the processing quota limit.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// User models an authenticated actor in the system.
type User struct {
	ID         string    `json:"id"`
	GoogleID   string    `json:"-"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Tier       Tier      `json:"tier"`
	ImageCount int       `json:"imageCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Quota evaluates the user's current standing against their tier limit.
func (u *User) Quota() Quota {
	return EvaluateQuota(u.Tier, u.ImageCount)
}

// ExternalIdentity is the verified identity asserted by the external provider.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}
