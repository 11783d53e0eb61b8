// Command extract-listings turns a directory of saved listing detail pages
// into the raw CSV the mart pipeline consumes.
//
// Usage:
//
//	extract-listings -dir pages/ [-out listings.csv]
//
// Pages that are not listing pages (no title) are skipped with a note on
// stderr. Output columns follow the canonical raw field order, so the CSV
// feeds straight into the pipeline's csv parser without a header_map.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
	"github.com/Bdemirbelul/DemirAI-v2/internal/scrape"
)

func main() {
	var dir, out string
	flag.StringVar(&dir, "dir", "", "directory of saved listing HTML pages")
	flag.StringVar(&out, "out", "", "output CSV path (default stdout)")
	flag.Parse()

	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: extract-listings -dir pages/ [-out listings.csv]")
		os.Exit(2)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := run(dir, w); err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string, w io.Writer) error {
	pages, err := scrape.ListPages(dir)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(listing.Fields); err != nil {
		return err
	}

	extracted := 0
	for _, page := range pages {
		doc, err := scrape.LoadFile(page)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", page, err)
			continue
		}
		raw, ok := scrape.Extract(doc)
		if !ok {
			fmt.Fprintf(os.Stderr, "skip %s: not a listing page\n", page)
			continue
		}
		if err := cw.Write(record(raw)); err != nil {
			return err
		}
		extracted++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "extracted %d of %d pages\n", extracted, len(pages))
	return nil
}

// record flattens a raw listing into CSV cells aligned to listing.Fields.
// Nil fields become empty cells, which the csv parser reads back as nil.
func record(r listing.Raw) []string {
	return []string{
		cellText(r.Manufacturer),
		cellText(r.Model),
		cellInt(r.Year),
		cellFloat(r.Mileage),
		cellText(r.Engine),
		cellText(r.Transmission),
		cellText(r.Drivetrain),
		cellText(r.FuelType),
		cellFloat(r.MPG),
		cellText(r.ExteriorColor),
		cellText(r.InteriorColor),
		cellBool(r.AccidentsOrDamage),
		cellBool(r.OneOwner),
		cellBool(r.PersonalUseOnly),
		cellText(r.SellerName),
		cellFloat(r.SellerRating),
		cellFloat(r.DriverRating),
		cellInt(r.DriverReviewsNum),
		cellFloat(r.PriceDrop),
		cellFloat(r.Price),
	}
}

func cellText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func cellInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func cellFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func cellBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
