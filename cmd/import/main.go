// Command import bulk-creates command configs from a "command,couponId" file.
//
// Usage:
//
//	import -file data/commands/commands.gz
//
// When S3 is enabled the file is read from the configured bucket under the S3
// prefix first, falling back to the local path.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"coupon-command/internal/config"
	"coupon-command/internal/database"
	"coupon-command/internal/importer"
	"coupon-command/internal/repository"
	"coupon-command/internal/service"
)

func main() {
	file := flag.String("file", "", "import file path (plain or gzip)")
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string) error {
	if file == "" {
		return fmt.Errorf("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger).With().Str("cmd", "import").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileLoader := importer.NewFileLoader(logger)
	var s3Loader importer.Loader
	if cfg.S3.Enabled {
		s3Loader, err = importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	}
	loader := importer.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, logger)

	entries, err := loader.Load(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to load import file: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	commandService := service.NewCommandService(
		repository.NewCouponRepository(pool, logger),
		repository.NewCommandConfigRepository(pool, logger),
		repository.NewCommandLimitRepository(pool, logger),
		repository.NewUsageRecordRepository(pool, logger),
		logger,
	)

	summary, err := importer.Run(ctx, commandService, entries, logger)
	logger.Info().
		Int("entries", len(entries)).
		Int("created", summary.Created).
		Int("skipped", summary.Skipped).
		Int("rejected", summary.Rejected).
		Msg("import finished")
	if err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}
	return nil
}
