package model

// TrustTier is the derived standing band for a trust score. It is a pure
// step function of the score with no hysteresis: crossing a threshold in
// either direction changes the tier immediately.
type TrustTier string

const (
	TierCold    TrustTier = "cold"
	TierWarm    TrustTier = "warm"
	TierActive  TrustTier = "active"
	TierTrusted TrustTier = "trusted"
)

// Tier thresholds (lower bound, inclusive).
const (
	WarmThreshold    = 20.0
	ActiveThreshold  = 50.0
	TrustedThreshold = 80.0
)

// TierForScore maps a trust score onto its tier.
func TierForScore(score float64) TrustTier {
	switch {
	case score >= TrustedThreshold:
		return TierTrusted
	case score >= ActiveThreshold:
		return TierActive
	case score >= WarmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}
