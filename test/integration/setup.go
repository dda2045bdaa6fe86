package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"coupon-command/internal/cache"
	"coupon-command/internal/config"
	"coupon-command/internal/handler"
	"coupon-command/internal/model"
	"coupon-command/internal/repository"
	"coupon-command/internal/router"
	"coupon-command/internal/service"
	"coupon-command/internal/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const testAPIKey = "test-api-key"

// App is the fully wired service running against real infrastructure.
type App struct {
	Pool       *pgxpool.Pool
	Redemption service.RedemptionService
	Commands   service.CommandService
	Handler    http.Handler
}

// SetupApp starts PostgreSQL, and Redis when redisCfg is non-nil, then wires
// repositories, services, handlers and the router the way cmd/api does.
func SetupApp(t *testing.T, redisCfg *config.RedisConfig) *App {
	t.Helper()

	testDB := testutil.SetupTestDB(t)
	logger := zerolog.Nop()

	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	configRepo := repository.NewCommandConfigRepository(testDB.Pool, logger)
	limitRepo := repository.NewCommandLimitRepository(testDB.Pool, logger)
	usageRepo := repository.NewUsageRecordRepository(testDB.Pool, logger)

	if redisCfg != nil {
		client, err := cache.NewRedisClient(context.Background(), *redisCfg)
		if err != nil {
			t.Fatalf("failed to connect to redis: %v", err)
		}
		t.Cleanup(func() { client.Close() })
		configRepo = cache.NewCommandConfigCache(configRepo, client, time.Duration(redisCfg.TTLSeconds)*time.Second, logger)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	redemption := service.NewRedemptionService(configRepo, limitRepo, usageRepo, couponRepo, node, logger)
	commands := service.NewCommandService(couponRepo, configRepo, limitRepo, usageRepo, logger)

	return &App{
		Pool:       testDB.Pool,
		Redemption: redemption,
		Commands:   commands,
		Handler: router.New(
			handler.NewCommandHandler(redemption, logger),
			handler.NewAdminHandler(commands, logger),
			testAPIKey,
			logger,
		),
	}
}

// SeedCommand creates a coupon and a command granting it, with an optional limit.
func SeedCommand(t *testing.T, app *App, command string, limit *model.LimitInput) (*model.CommandConfig, *model.CommandLimit) {
	t.Helper()

	ctx := context.Background()

	coupon, err := app.Commands.CreateCoupon(ctx, &model.CreateCouponRequest{Name: "coupon for " + command})
	if err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}

	cfg, err := app.Commands.CreateCommandConfig(ctx, &model.CreateCommandConfigRequest{Command: command, CouponID: coupon.ID})
	if err != nil {
		t.Fatalf("failed to seed command %s: %v", command, err)
	}

	if limit == nil {
		return cfg, nil
	}

	created, err := app.Commands.AddCommandLimit(ctx, cfg.ID, limit)
	if err != nil {
		t.Fatalf("failed to seed limit for %s: %v", command, err)
	}
	return cfg, created
}

// CurrentUsage reads current_usage straight from the limit row.
func CurrentUsage(t *testing.T, app *App, limitID uuid.UUID) int {
	t.Helper()

	var usage int
	err := app.Pool.QueryRow(context.Background(),
		"SELECT current_usage FROM command_limits WHERE id = $1", limitID,
	).Scan(&usage)
	if err != nil {
		t.Fatalf("failed to read current usage: %v", err)
	}
	return usage
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
