package importer

import (
	"context"
	"errors"
	"fmt"

	"coupon-command/internal/model"

	"github.com/rs/zerolog"
)

// Creator creates command configs. service.CommandService satisfies it.
type Creator interface {
	CreateCommandConfig(ctx context.Context, req *model.CreateCommandConfigRequest) (*model.CommandConfig, error)
}

// Summary counts the outcome of an import run.
type Summary struct {
	Created  int
	Skipped  int
	Rejected int
}

// Run creates a command config for every entry. Commands that already exist
// are skipped; entries the service rejects are counted and logged. Any other
// error aborts the run.
func Run(ctx context.Context, creator Creator, entries []Entry, logger zerolog.Logger) (Summary, error) {
	var summary Summary
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, err := creator.CreateCommandConfig(ctx, &model.CreateCommandConfigRequest{
			Command:  e.Command,
			CouponID: e.CouponID,
		})
		switch {
		case err == nil:
			summary.Created++
		case errors.Is(err, model.ErrCommandExists):
			summary.Skipped++
			logger.Debug().Int("line", e.Line).Msg("command already exists, skipping")
		default:
			de, ok := model.AsDomainError(err)
			if !ok {
				return summary, fmt.Errorf("line %d: %w", e.Line, err)
			}
			summary.Rejected++
			logger.Warn().Int("line", e.Line).Str("code", de.Code).Str("reason", de.Message).Msg("command rejected")
		}
	}
	return summary, nil
}
