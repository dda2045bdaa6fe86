package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "import-file-loader").Logger(),
	}
}

// Load reads an import file from disk.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]Entry, error) {
	l.logger.Info().Str("file", filePath).Msg("loading import file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open import file")
		return nil, fmt.Errorf("failed to open import file %s: %w", filePath, err)
	}
	defer file.Close()

	entries, err := Parse(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to parse import file")
		return nil, fmt.Errorf("import file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("entries", len(entries)).
		Msg("import file loaded")

	return entries, nil
}
