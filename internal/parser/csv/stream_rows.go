// Package csv streams raw listing records out of a CSV export.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Bdemirbelul/DemirAI-v2/internal/config"
	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

// StreamRaw streams CSV records into listing.Raw values aligned to the
// canonical listing.Fields order.
//
// Options:
//   - has_header (default true)
//   - comma (default ",")
//   - trim_space (default true)
//   - lazy_quotes (default false)
//   - header_map: source header -> canonical field name. Headers without a
//     mapping are lowercased with spaces replaced by underscores.
//
// Row-level read errors are reported through onErr and the row is skipped;
// only a header read failure is fatal. Empty cells become nil fields, and a
// cell that cannot be coerced to its field type also becomes nil; the raw
// layer accepts records as-is.
func StreamRaw(
	ctx context.Context,
	src io.ReadCloser,
	opt config.Options,
	out chan<- listing.Raw,
	onErr func(line int, err error),
) error {
	defer src.Close()

	var line int

	hasHeader := opt.Bool("has_header", true)
	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)
	hm := opt.StringMap("header_map")
	lazy := opt.Bool("lazy_quotes", false)

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = lazy
	cr.FieldsPerRecord = -1

	// colIx[i] is the source column index for listing.Fields[i], -1 when the
	// field is absent from the input.
	colIx := make([]int, len(listing.Fields))
	for i := range colIx {
		colIx[i] = -1
	}

	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	if hasHeader {
		hdr, err := readRec()
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("read header: %w", err))
			}
			return err
		}
		srcToIdx := make(map[string]int, len(hdr))
		for i, h := range hdr {
			h = strings.TrimSpace(h)
			if i == 0 {
				h = strings.TrimPrefix(h, "\uFEFF")
			}
			if mapped, ok := hm[h]; ok {
				h = mapped
			} else {
				h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
			}
			srcToIdx[h] = i
		}
		for t, target := range listing.Fields {
			if si, ok := srcToIdx[target]; ok {
				colIx[t] = si
			}
		}
	} else {
		for i := range listing.Fields {
			colIx[i] = i
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		var raw listing.Raw
		for t, field := range listing.Fields {
			si := colIx[t]
			if si < 0 || si >= len(rec) {
				continue
			}
			v := rec[si]
			if trim {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			listing.SetField(&raw, field, v)
		}

		select {
		case out <- raw:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
