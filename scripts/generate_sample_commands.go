package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// generateSampleCommands writes a gzipped import file for cmd/import.
// Every command points at the coupon given by -coupon, so create that coupon
// first through POST /api/admin/coupons.
func main() {
	couponFlag := flag.String("coupon", "", "coupon ID the sample commands grant")
	out := flag.String("out", "data/commands/commands.gz", "output file")
	count := flag.Int("count", 20, "number of generated commands")
	flag.Parse()

	couponID, err := uuid.Parse(*couponFlag)
	if err != nil {
		log.Fatalf("Invalid -coupon %q: %v", *couponFlag, err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	lines := []string{
		"# sample command import",
		"# command,couponId",
		"",
		"新年快乐," + couponID.String(),
		"双十一狂欢," + couponID.String(),
		"hello, world," + couponID.String(),
	}
	for i := 1; i <= *count; i++ {
		lines = append(lines, fmt.Sprintf("PROMO%04d,%s", i, couponID))
	}

	if err := writeGzip(*out, lines); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d commands\n", *out, *count+3)
	fmt.Printf("Import with: go run ./cmd/import -file %s\n", *out)
}

func writeGzip(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	for _, line := range lines {
		if _, err := gz.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}
