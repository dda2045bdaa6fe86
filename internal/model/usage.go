package model

import (
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// MaxUserIDLength is the maximum number of characters in a user ID.
const MaxUserIDLength = 64

// MaxFailureReasonLength is the maximum number of characters stored as a failure reason.
const MaxFailureReasonLength = 255

// CommandUsageRecord is an immutable audit entry for one redemption attempt.
// CommandConfigID is nil when the submitted command matched no config.
type CommandUsageRecord struct {
	ID              snowflake.ID   `json:"id"`
	CommandConfigID *uuid.UUID     `json:"commandConfigId,omitempty"`
	UserID          string         `json:"userId"`
	CommandText     string         `json:"commandText"`
	CouponID        *uuid.UUID     `json:"couponId,omitempty"`
	IsSuccess       bool           `json:"isSuccess"`
	FailureReason   *string        `json:"failureReason,omitempty"`
	ExtraData       map[string]any `json:"extraData,omitempty"`
	CreatedBy       *string        `json:"createdBy,omitempty"`
	CreatedFromIP   *string        `json:"createdFromIp,omitempty"`
	CreatedAt       time.Time      `json:"createTime"`
}

// UsageStats summarises the ledger for one command config.
type UsageStats struct {
	Total   int `json:"totalUsage"`
	Success int `json:"successUsage"`
	Failure int `json:"failureUsage"`
}

// TruncateReason trims reason to MaxFailureReasonLength characters.
func TruncateReason(reason string) string {
	if utf8.RuneCountInString(reason) <= MaxFailureReasonLength {
		return reason
	}
	runes := []rune(reason)
	return string(runes[:MaxFailureReasonLength])
}
