// Package jsonl streams raw listing records out of line-delimited JSON.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Bdemirbelul/DemirAI-v2/internal/config"
	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

// maxLineBytes bounds a single JSON line. Listing records are small; a
// larger line is a corrupt export, not data.
const maxLineBytes = 1 << 20

// StreamRaw streams one JSON object per line into listing.Raw values.
//
// Unknown keys are ignored and values that cannot be coerced become nil,
// mirroring the CSV parser's lenient loader contract. Blank lines are
// skipped. A malformed line is reported through onErr and skipped; it does
// not abort the stream.
func StreamRaw(
	ctx context.Context,
	src io.ReadCloser,
	opt config.Options,
	out chan<- listing.Raw,
	onErr func(line int, err error),
) error {
	defer src.Close()
	_ = opt // reserved; jsonl currently has no options

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var rec map[string]any
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("jsonl decode: %w", err))
			}
			continue
		}

		select {
		case out <- listing.FromRecord(rec):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
