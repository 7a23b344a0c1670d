package model

// Tier is the entitlement level of a user. It is derived, never stored.
type Tier string

const (
	TierFree Tier = "free"
	TierVIP  Tier = "vip"
)

func TierFor(isVIP bool) Tier {
	if isVIP {
		return TierVIP
	}
	return TierFree
}

// Limits maps each feature to its daily cap.
type Limits map[Feature]int

// LimitsTable holds the daily caps of every tier.
type LimitsTable map[Tier]Limits

// Cap returns the daily cap for a feature. Unknown combinations cap at zero.
func (t LimitsTable) Cap(tier Tier, f Feature) int {
	return t[tier][f]
}

// DefaultLimits is the built-in table used when no overrides are configured.
func DefaultLimits() LimitsTable {
	return LimitsTable{
		TierFree: {
			FeatureChat:     3,
			FeatureImage:    1,
			FeatureMusic:    1,
			FeatureVideo:    1,
			FeatureDocument: 2,
		},
		TierVIP: {
			FeatureChat:     25,
			FeatureImage:    10,
			FeatureMusic:    5,
			FeatureVideo:    3,
			FeatureDocument: 8,
		},
	}
}
