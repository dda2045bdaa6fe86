package model

import (
	"github.com/google/uuid"
)

// Reasons returned to callers. Callers may switch on these values.
const (
	ReasonCommandNotFound     = "口令不存在"
	ReasonCouponNotFound      = "优惠券不存在"
	ReasonOutsideTimeWindow   = "口令使用时间超出有效期"
	ReasonTotalUsageExhausted = "口令使用次数已达上限"
	ReasonUserNotAllowed      = "您不在此口令的使用范围内"
	ReasonUserUsageExhausted  = "您已达到此口令的使用次数上限"

	MessageRedeemed    = "优惠券领取成功"
	MessageSystemError = "系统错误，请稍后重试"

	// SystemErrorPrefix prefixes the failure reason recorded for storage errors.
	SystemErrorPrefix = "系统错误: "
)

// ValidateCommandRequest asks whether a command could be redeemed.
type ValidateCommandRequest struct {
	Command string `json:"command"`
	UserID  string `json:"userId,omitempty"`
}

// UseCommandRequest redeems a command for a user.
type UseCommandRequest struct {
	Command  string `json:"command"`
	UserID   string `json:"userId"`
	ClientIP string `json:"-"`
}

// CouponInfo summarises the coupon a command grants.
type CouponInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CommandConfigSummary is the config snapshot returned by a successful validation.
type CommandConfigSummary struct {
	ID           uuid.UUID     `json:"id"`
	Command      string        `json:"command"`
	CommandLimit *CommandLimit `json:"commandLimit,omitempty"`
}

// ValidationResult is the outcome of ValidateCommand.
type ValidationResult struct {
	Valid         bool                  `json:"valid"`
	Reason        string                `json:"reason,omitempty"`
	CouponInfo    *CouponInfo           `json:"couponInfo,omitempty"`
	CommandConfig *CommandConfigSummary `json:"commandConfig,omitempty"`
}

// RedemptionResult is the outcome of UseCommand.
type RedemptionResult struct {
	Success  bool       `json:"success"`
	CouponID *uuid.UUID `json:"couponId,omitempty"`
	Message  string     `json:"message"`
}

// Rejected builds a failed ValidationResult.
func Rejected(reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Reason: reason}
}
