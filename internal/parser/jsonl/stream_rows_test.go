package jsonl

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

func collect(t *testing.T, src string) ([]listing.Raw, []int, error) {
	t.Helper()

	out := make(chan listing.Raw, 64)
	var skipped []int
	onErr := func(line int, err error) { skipped = append(skipped, line) }

	err := StreamRaw(context.Background(), io.NopCloser(strings.NewReader(src)), nil, out, onErr)
	close(out)

	var raws []listing.Raw
	for r := range out {
		raws = append(raws, r)
	}
	return raws, skipped, err
}

func TestStreamRawDecodesLines(t *testing.T) {
	in := `{"manufacturer":"Toyota","year":2020,"price":24000,"one_owner":true}` + "\n" +
		"\n" + // blank lines are skipped
		`{"manufacturer":"Honda","seller_rating":"4.5"}` + "\n"

	raws, skipped, err := collect(t, in)
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
	if r.Manufacturer == nil || *r.Manufacturer != "Toyota" {
		t.Fatalf("manufacturer = %v", r.Manufacturer)
	}
	if r.Year == nil || *r.Year != 2020 {
		t.Fatalf("year = %v", r.Year)
	}
	if r.Price == nil || *r.Price != 24000 {
		t.Fatalf("price = %v", r.Price)
	}
	if r.OneOwner == nil || !*r.OneOwner {
		t.Fatalf("one_owner = %v", r.OneOwner)
	}

	if raws[1].SellerRating == nil || *raws[1].SellerRating != 4.5 {
		t.Fatalf("seller_rating = %v", raws[1].SellerRating)
	}
}

func TestStreamRawMalformedLineSkipped(t *testing.T) {
	in := `{"manufacturer":"Toyota"}` + "\n" +
		`{"manufacturer": oops}` + "\n" +
		`{"manufacturer":"Honda"}` + "\n"

	raws, skipped, err := collect(t, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 2 {
		t.Fatalf("rows = %d, want 2 (malformed line skipped)", len(raws))
	}
	if len(skipped) != 1 || skipped[0] != 2 {
		t.Fatalf("skipped = %v, want [2]", skipped)
	}
}

func TestStreamRawNullAndUnknownKeys(t *testing.T) {
	in := `{"manufacturer":null,"vin":"x","price":"not a number"}` + "\n"

	raws, _, err := collect(t, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 {
		t.Fatalf("rows = %d, want 1", len(raws))
	}
	r := raws[0]
	if r.Manufacturer != nil {
		t.Fatalf("manufacturer = %v, want nil", r.Manufacturer)
	}
	if r.Price != nil {
		t.Fatalf("price = %v, want nil (lenient coercion)", r.Price)
	}
}

func TestStreamRawContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan listing.Raw, 1)
	err := StreamRaw(ctx, io.NopCloser(strings.NewReader(`{"a":1}`+"\n")), nil, out, nil)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
