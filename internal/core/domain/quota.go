package domain

const (
	FreeImageLimit    = 5
	PremiumImageLimit = 100
)

// Quota is the outcome of evaluating a tier against a usage count.
type Quota struct {
	Tier      Tier `json:"tier"`
	Limit     int  `json:"limit"`
	Used      int  `json:"imageCount"`
	Remaining int  `json:"remaining"`
	Allowed   bool `json:"-"`
}

// TierLimit returns the number of processing calls a tier permits.
// Unknown tiers get the free limit.
func TierLimit(t Tier) int {
	if t == TierPremium {
		return PremiumImageLimit
	}
	return FreeImageLimit
}

// EvaluateQuota maps (tier, count) to whether another call is allowed and how
// many remain. Negative counts are treated as zero.
func EvaluateQuota(t Tier, imageCount int) Quota {
	if imageCount < 0 {
		imageCount = 0
	}
	limit := TierLimit(t)
	remaining := limit - imageCount
	if remaining < 0 {
		remaining = 0
	}
	return Quota{
		Tier:      t,
		Limit:     limit,
		Used:      imageCount,
		Remaining: remaining,
		Allowed:   remaining > 0,
	}
}
