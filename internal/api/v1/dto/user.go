package dto

import "time"

// UserPathParams is the {id} segment of user routes
type UserPathParams struct {
	UserID string `validate:"required,numeric,max=20"`
}

type ChannelStatusDTO struct {
	ChannelID  string `json:"channel_id"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	Subscribed bool   `json:"subscribed"`
}

type FeatureUsageDTO struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Lifetime  int `json:"lifetime"`
}

// UserStatusResponseDTO is returned by GET /v1/users/{id}/status
type UserStatusResponseDTO struct {
	UserID    int64                      `json:"user_id"`
	Tier      string                     `json:"tier"`
	Day       string                     `json:"day"`
	Features  map[string]FeatureUsageDTO `json:"features"`
	FirstSeen time.Time                  `json:"first_seen"`
}

// RecheckResponseDTO is returned by POST /v1/users/{id}/recheck
type RecheckResponseDTO struct {
	UserID   int64              `json:"user_id"`
	IsVIP    bool               `json:"is_vip"`
	Tier     string             `json:"tier"`
	Channels []ChannelStatusDTO `json:"channels"`
}
