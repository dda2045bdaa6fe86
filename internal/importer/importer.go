// Package importer bulk-loads command definitions from line-oriented files.
//
// Each non-blank line holds "command,couponId". Lines starting with '#' are
// comments. The command is everything before the last comma, so command text
// may itself contain commas. Files may be plain text or gzip compressed.
package importer

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Entry is one command definition read from an import file.
type Entry struct {
	Line     int
	Command  string
	CouponID uuid.UUID
}

// LineError reports a malformed line.
type LineError struct {
	Line   int
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Loader reads import entries from a named source.
type Loader interface {
	// Load reads every entry from path. A file with any malformed line is
	// rejected as a whole; the error joins one LineError per bad line.
	Load(ctx context.Context, path string) ([]Entry, error)
}

var gzipMagic = []byte{0x1f, 0x8b}

// Parse reads entries from r, transparently decompressing gzip input.
func Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(gzipMagic)); err == nil && string(head) == string(gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		return parseLines(ctx, gz)
	}
	return parseLines(ctx, br)
}

func parseLines(ctx context.Context, r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		entries []Entry
		errs    []error
	)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(lineNo, line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return entries, nil
}

func parseLine(lineNo int, line string) (Entry, error) {
	i := strings.LastIndex(line, ",")
	if i < 0 {
		return Entry{}, &LineError{Line: lineNo, Reason: "expected command,couponId"}
	}

	command := strings.TrimSpace(line[:i])
	if command == "" {
		return Entry{}, &LineError{Line: lineNo, Reason: "command is empty"}
	}

	couponID, err := uuid.Parse(strings.TrimSpace(line[i+1:]))
	if err != nil {
		return Entry{}, &LineError{Line: lineNo, Reason: "invalid coupon id"}
	}

	return Entry{Line: lineNo, Command: command, CouponID: couponID}, nil
}
