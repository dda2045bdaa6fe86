package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeMissingField          = "MISSING_FIELD"
	ErrCodeInvalidArgument       = "INVALID_ARGUMENT"
	ErrCodeCommandExists         = "COMMAND_EXISTS"
	ErrCodeCommandConfigNotFound = "COMMAND_CONFIG_NOT_FOUND"
	ErrCodeCouponNotFound        = "COUPON_NOT_FOUND"
	ErrCodeLimitExists           = "LIMIT_EXISTS"
	ErrCodeLimitNotFound         = "LIMIT_NOT_FOUND"
	ErrCodeUnauthorised          = "UNAUTHORIZED"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError unwraps err into a DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrCommandRequired        = NewDomainError(ErrCodeMissingField, "口令不能为空")
	ErrCommandTooLong         = NewDomainError(ErrCodeInvalidArgument, "口令不能超过1000个字符")
	ErrUserIDRequired         = NewDomainError(ErrCodeMissingField, "用户ID不能为空")
	ErrUserIDTooLong          = NewDomainError(ErrCodeInvalidArgument, "用户ID不能超过64个字符")
	ErrCouponNameRequired     = NewDomainError(ErrCodeMissingField, "优惠券名称不能为空")
	ErrCommandExists          = NewDomainError(ErrCodeCommandExists, "口令已存在")
	ErrCommandConfigNotFound  = NewDomainError(ErrCodeCommandConfigNotFound, "口令配置不存在")
	ErrCouponNotFound         = NewDomainError(ErrCodeCouponNotFound, "优惠券不存在")
	ErrLimitExists            = NewDomainError(ErrCodeLimitExists, "该口令已有限制配置")
	ErrLimitNotFound          = NewDomainError(ErrCodeLimitNotFound, "限制配置不存在")
	ErrInvalidTimeRange       = NewDomainError(ErrCodeInvalidArgument, "结束时间必须晚于开始时间")
	ErrInvalidMaxUsagePerUser = NewDomainError(ErrCodeInvalidArgument, "每人限领次数必须大于等于0")
	ErrInvalidMaxTotalUsage   = NewDomainError(ErrCodeInvalidArgument, "总限领次数必须大于等于0")
)
