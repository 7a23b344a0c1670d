package model

import "time"

// Channel is a Telegram channel a user must join to qualify for VIP.
type Channel struct {
	ID          string `json:"id" validate:"required"`
	URL         string `json:"url" validate:"omitempty,url"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ChannelStatus pairs a required channel with the user's membership in it.
type ChannelStatus struct {
	Channel    Channel `json:"channel"`
	Subscribed bool    `json:"subscribed"`
}

// MembershipStatus is the chat member status reported by Telegram.
type MembershipStatus string

const (
	StatusCreator       MembershipStatus = "creator"
	StatusAdministrator MembershipStatus = "administrator"
	StatusMember        MembershipStatus = "member"
	StatusRestricted    MembershipStatus = "restricted"
	StatusLeft          MembershipStatus = "left"
	StatusKicked        MembershipStatus = "kicked"
)

// Subscribed reports whether the status counts as a subscription.
func (s MembershipStatus) Subscribed() bool {
	switch s {
	case StatusMember, StatusAdministrator, StatusCreator:
		return true
	}
	return false
}

// SubscriptionCacheEntry records the last aggregate VIP verification.
type SubscriptionCacheEntry struct {
	UserID    UserID    `json:"user_id"`
	CheckedAt time.Time `json:"checked_at"`
	IsVIP     bool      `json:"is_vip"`
}
