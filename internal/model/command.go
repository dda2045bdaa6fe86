package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MaxCommandLength is the maximum number of characters in a command.
const MaxCommandLength = 1000

// Coupon is the reward granted by a command. Only its identity matters here.
type Coupon struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommandConfig identifies a redeemable text command.
type CommandConfig struct {
	ID        uuid.UUID  `json:"id"`
	Command   string     `json:"command"`
	CouponID  *uuid.UUID `json:"couponId,omitempty"`
	CreatedAt time.Time  `json:"createTime"`
	UpdatedAt time.Time  `json:"updateTime"`
}

// CommandLimit is the eligibility policy attached to one CommandConfig.
// Nil pointers and nil slices mean the corresponding restriction is absent.
type CommandLimit struct {
	ID              uuid.UUID  `json:"id"`
	CommandConfigID uuid.UUID  `json:"commandConfigId"`
	MaxUsagePerUser *int       `json:"maxUsagePerUser"`
	MaxTotalUsage   *int       `json:"maxTotalUsage"`
	CurrentUsage    int        `json:"currentUsage"`
	StartTime       *time.Time `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	AllowedUsers    []string   `json:"allowedUsers"`
	AllowedUserTags []string   `json:"allowedUserTags"`
	IsEnabled       bool       `json:"isEnabled"`
	CreatedAt       time.Time  `json:"createTime"`
	UpdatedAt       time.Time  `json:"updateTime"`
}

// IsTimeValid reports whether now falls inside the limit's window.
// Both bounds are inclusive.
func (l *CommandLimit) IsTimeValid(now time.Time) bool {
	if l.StartTime != nil && now.Before(*l.StartTime) {
		return false
	}
	if l.EndTime != nil && now.After(*l.EndTime) {
		return false
	}
	return true
}

// HasTotalUsageQuota reports whether another redemption fits under MaxTotalUsage.
func (l *CommandLimit) HasTotalUsageQuota() bool {
	if l.MaxTotalUsage == nil {
		return true
	}
	return l.CurrentUsage < *l.MaxTotalUsage
}

// IsUserAllowed reports whether userID passes the allow-list.
func (l *CommandLimit) IsUserAllowed(userID string) bool {
	if l.AllowedUsers == nil {
		return true
	}
	return slices.Contains(l.AllowedUsers, userID)
}

// LimitInput describes a new CommandLimit.
type LimitInput struct {
	MaxUsagePerUser *int       `json:"maxUsagePerUser"`
	MaxTotalUsage   *int       `json:"maxTotalUsage"`
	StartTime       *time.Time `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	AllowedUsers    []string   `json:"allowedUsers"`
	AllowedUserTags []string   `json:"allowedUserTags"`
	IsEnabled       *bool      `json:"isEnabled"`
}

// LimitPatch is a partial update of a CommandLimit. Nil fields are left
// unchanged; the Clear flags reset the matching nullable field.
type LimitPatch struct {
	MaxUsagePerUser      *int       `json:"maxUsagePerUser"`
	MaxTotalUsage        *int       `json:"maxTotalUsage"`
	StartTime            *time.Time `json:"startTime"`
	EndTime              *time.Time `json:"endTime"`
	AllowedUsers         *[]string  `json:"allowedUsers"`
	AllowedUserTags      *[]string  `json:"allowedUserTags"`
	IsEnabled            *bool      `json:"isEnabled"`
	ClearMaxUsagePerUser bool       `json:"clearMaxUsagePerUser"`
	ClearMaxTotalUsage   bool       `json:"clearMaxTotalUsage"`
	ClearStartTime       bool       `json:"clearStartTime"`
	ClearEndTime         bool       `json:"clearEndTime"`
	ClearAllowedUsers    bool       `json:"clearAllowedUsers"`
	ClearAllowedUserTags bool       `json:"clearAllowedUserTags"`
}

// Apply copies the patch onto limit.
func (p *LimitPatch) Apply(limit *CommandLimit) {
	if p.ClearMaxUsagePerUser {
		limit.MaxUsagePerUser = nil
	} else if p.MaxUsagePerUser != nil {
		limit.MaxUsagePerUser = p.MaxUsagePerUser
	}
	if p.ClearMaxTotalUsage {
		limit.MaxTotalUsage = nil
	} else if p.MaxTotalUsage != nil {
		limit.MaxTotalUsage = p.MaxTotalUsage
	}
	if p.ClearStartTime {
		limit.StartTime = nil
	} else if p.StartTime != nil {
		limit.StartTime = p.StartTime
	}
	if p.ClearEndTime {
		limit.EndTime = nil
	} else if p.EndTime != nil {
		limit.EndTime = p.EndTime
	}
	if p.ClearAllowedUsers {
		limit.AllowedUsers = nil
	} else if p.AllowedUsers != nil {
		limit.AllowedUsers = *p.AllowedUsers
	}
	if p.ClearAllowedUserTags {
		limit.AllowedUserTags = nil
	} else if p.AllowedUserTags != nil {
		limit.AllowedUserTags = *p.AllowedUserTags
	}
	if p.IsEnabled != nil {
		limit.IsEnabled = *p.IsEnabled
	}
}

// CreateCouponRequest is the payload for creating a coupon.
type CreateCouponRequest struct {
	Name string `json:"name"`
}

// CreateCommandConfigRequest is the payload for defining a new command.
type CreateCommandConfigRequest struct {
	Command  string    `json:"command"`
	CouponID uuid.UUID `json:"couponId"`
}

// UpdateCommandConfigRequest is the payload for editing a command's text.
type UpdateCommandConfigRequest struct {
	Command string `json:"command"`
}

// CommandConfigDetail is a config together with everything attached to it.
type CommandConfigDetail struct {
	CommandConfig
	Coupon       *Coupon       `json:"coupon,omitempty"`
	CommandLimit *CommandLimit `json:"commandLimit,omitempty"`
	Stats        UsageStats    `json:"stats"`
}

// Validate checks the write-time constraints of a limit.
func (l *CommandLimit) Validate() error {
	if l.MaxUsagePerUser != nil && *l.MaxUsagePerUser < 0 {
		return ErrInvalidMaxUsagePerUser
	}
	if l.MaxTotalUsage != nil && *l.MaxTotalUsage < 0 {
		return ErrInvalidMaxTotalUsage
	}
	if l.StartTime != nil && l.EndTime != nil && !l.EndTime.After(*l.StartTime) {
		return ErrInvalidTimeRange
	}
	return nil
}
