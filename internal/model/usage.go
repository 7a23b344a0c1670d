package model

import "time"

// DailyUsage is a user's per-feature consumption for a single calendar day.
type DailyUsage struct {
	UserID UserID          `json:"user_id"`
	Day    string          `json:"day"`
	Used   map[Feature]int `json:"used"`
}

// NewDailyUsage returns a zeroed usage record.
func NewDailyUsage(userID UserID, day string) DailyUsage {
	used := make(map[Feature]int, len(Features))
	for _, f := range Features {
		used[f] = 0
	}
	return DailyUsage{UserID: userID, Day: day, Used: used}
}

// Clone returns a deep copy so callers never share the counter map.
func (u DailyUsage) Clone() DailyUsage {
	used := make(map[Feature]int, len(u.Used))
	for f, n := range u.Used {
		used[f] = n
	}
	u.Used = used
	return u
}

// LifetimeStats accumulates all-time consumption. It never resets.
type LifetimeStats struct {
	UserID    UserID          `json:"user_id"`
	Totals    map[Feature]int `json:"totals"`
	FirstSeen time.Time       `json:"first_seen"`
}

func NewLifetimeStats(userID UserID, firstSeen time.Time) LifetimeStats {
	totals := make(map[Feature]int, len(Features))
	for _, f := range Features {
		totals[f] = 0
	}
	return LifetimeStats{UserID: userID, Totals: totals, FirstSeen: firstSeen}
}

func (s LifetimeStats) Clone() LifetimeStats {
	totals := make(map[Feature]int, len(s.Totals))
	for f, n := range s.Totals {
		totals[f] = n
	}
	s.Totals = totals
	return s
}

// TierSnapshot is a read-only view of a user's entitlements for display.
type TierSnapshot struct {
	UserID    UserID          `json:"user_id"`
	Tier      Tier            `json:"tier"`
	Day       string          `json:"day"`
	Limits    Limits          `json:"limits"`
	Used      map[Feature]int `json:"used"`
	Remaining map[Feature]int `json:"remaining"`
	Stats     LifetimeStats   `json:"stats"`
}
