// Package policy decides whether a command limit admits a redemption.
package policy

import (
	"context"
	"fmt"
	"time"

	"coupon-command/internal/model"

	"github.com/google/uuid"
)

// UsageCounter counts a user's past successful redemptions of a command.
type UsageCounter interface {
	CountSuccessByUserAndConfig(ctx context.Context, userID string, configID uuid.UUID) (int, error)
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Admissible bool
	Reason     string
}

// Admit is the decision returned when nothing restricts the redemption.
var Admit = Decision{Admissible: true}

func reject(reason string) Decision {
	return Decision{Admissible: false, Reason: reason}
}

// Evaluate runs the limit checks in order and stops at the first failure:
// time window, total quota, allow-list, per-user quota. The user checks are
// skipped when userID is empty. A nil or disabled limit admits everything.
// The counter is consulted only when a per-user quota applies.
func Evaluate(ctx context.Context, limit *model.CommandLimit, now time.Time, userID string, counter UsageCounter) (Decision, error) {
	if limit == nil || !limit.IsEnabled {
		return Admit, nil
	}

	if !limit.IsTimeValid(now) {
		return reject(model.ReasonOutsideTimeWindow), nil
	}

	if !limit.HasTotalUsageQuota() {
		return reject(model.ReasonTotalUsageExhausted), nil
	}

	if userID == "" {
		return Admit, nil
	}

	if !limit.IsUserAllowed(userID) {
		return reject(model.ReasonUserNotAllowed), nil
	}

	if limit.MaxUsagePerUser != nil {
		used, err := counter.CountSuccessByUserAndConfig(ctx, userID, limit.CommandConfigID)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to count user usage: %w", err)
		}
		if used >= *limit.MaxUsagePerUser {
			return reject(model.ReasonUserUsageExhausted), nil
		}
	}

	return Admit, nil
}
