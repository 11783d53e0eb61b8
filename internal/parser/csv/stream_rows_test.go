package csv

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Bdemirbelul/DemirAI-v2/internal/config"
	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

func collect(t *testing.T, src string, opt config.Options) ([]listing.Raw, []int, error) {
	t.Helper()

	out := make(chan listing.Raw, 64)
	var skipped []int
	onErr := func(line int, err error) { skipped = append(skipped, line) }

	err := StreamRaw(context.Background(), io.NopCloser(strings.NewReader(src)), opt, out, onErr)
	close(out)

	var raws []listing.Raw
	for r := range out {
		raws = append(raws, r)
	}
	return raws, skipped, err
}

func TestStreamRawHeaderAlignment(t *testing.T) {
	in := "price,manufacturer,year\n" +
		"\"$24,000\",Toyota,2020\n" +
		",Honda,\n"

	raws, skipped, err := collect(t, in, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	if len(raws) != 2 {
		t.Fatalf("rows = %d, want 2", len(raws))
	}

	r := raws[0]
	if r.Price == nil || *r.Price != 24000 {
		t.Fatalf("price = %v, want 24000", r.Price)
	}
	if r.Manufacturer == nil || *r.Manufacturer != "Toyota" {
		t.Fatalf("manufacturer = %v", r.Manufacturer)
	}
	if r.Year == nil || *r.Year != 2020 {
		t.Fatalf("year = %v", r.Year)
	}

	// Empty cells are absent fields, not zero values.
	if raws[1].Price != nil || raws[1].Year != nil {
		t.Fatalf("empty cells must stay nil: %+v", raws[1])
	}
}

func TestStreamRawHeaderMapAndCase(t *testing.T) {
	in := "Brand,Model Name,MSRP\n" +
		"Honda,Civic,15000\n"

	raws, _, err := collect(t, in, config.Options{
		"header_map": map[string]any{
			"Brand": "manufacturer",
			"MSRP":  "price",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 {
		t.Fatalf("rows = %d, want 1", len(raws))
	}

	r := raws[0]
	if r.Manufacturer == nil || *r.Manufacturer != "Honda" {
		t.Fatalf("manufacturer = %v", r.Manufacturer)
	}
	if r.Price == nil || *r.Price != 15000 {
		t.Fatalf("price = %v", r.Price)
	}
	// "Model Name" lowercases to model_name, which is not a canonical field.
	if r.Model != nil {
		t.Fatalf("model = %v, want nil", r.Model)
	}
}

func TestStreamRawBOM(t *testing.T) {
	in := "\uFEFFmanufacturer,price\nToyota,24000\n"

	raws, _, err := collect(t, in, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 || raws[0].Manufacturer == nil || *raws[0].Manufacturer != "Toyota" {
		t.Fatalf("BOM header not stripped: %+v", raws)
	}
}

func TestStreamRawNoHeader(t *testing.T) {
	// Without a header, columns follow the canonical field order.
	in := "Toyota,Camry,2020\n"

	raws, _, err := collect(t, in, config.Options{"has_header": false})
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 {
		t.Fatalf("rows = %d, want 1", len(raws))
	}
	r := raws[0]
	if r.Manufacturer == nil || *r.Manufacturer != "Toyota" || r.Model == nil || *r.Model != "Camry" {
		t.Fatalf("positional mapping broken: %+v", r)
	}
	if r.Year == nil || *r.Year != 2020 {
		t.Fatalf("year = %v", r.Year)
	}
}

func TestStreamRawBadRowSkipped(t *testing.T) {
	in := "manufacturer,price\n" +
		"Toyota,24000\n" +
		"\"broken,15000\n" + // unterminated quote
		"Honda,15000\n"

	raws, skipped, err := collect(t, in, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 {
		// The unterminated quote swallows the rest of the input; only the
		// rows before it survive.
		t.Fatalf("rows = %d, want 1", len(raws))
	}
	if len(skipped) == 0 {
		t.Fatal("bad row not reported through onErr")
	}
}

func TestStreamRawHeaderErrorFatal(t *testing.T) {
	in := "\"manufacturer\n" // header itself is malformed

	_, skipped, err := collect(t, in, nil)
	if err == nil {
		t.Fatal("expected fatal header error")
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped = %v, want the header line reported", skipped)
	}
}

func TestStreamRawCustomComma(t *testing.T) {
	in := "manufacturer;price\nToyota;24000\n"

	raws, _, err := collect(t, in, config.Options{"comma": ";"})
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 || raws[0].Price == nil || *raws[0].Price != 24000 {
		t.Fatalf("semicolon input mishandled: %+v", raws)
	}
}
