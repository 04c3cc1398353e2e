package model

import "testing"

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  TrustTier
	}{
		{0.3, TierCold},
		{19.99, TierCold},
		{20.0, TierWarm},
		{49.99, TierWarm},
		{50.0, TierActive},
		{79.99, TierActive},
		{80.0, TierTrusted},
		{100.0, TierTrusted},
	}

	for _, tt := range tests {
		if got := TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%.2f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
