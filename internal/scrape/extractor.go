package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

// titleRe splits "2020 Toyota Camry SE" into year, manufacturer and the
// rest of the trim line (kept as model).
var titleRe = regexp.MustCompile(`^(\d{4})\s+(\S+)\s+(.+)$`)

var reviewCountRe = regexp.MustCompile(`(\d[\d,]*)\s+review`)

// basicsFields maps the labels of the "Basics" description list to
// canonical raw fields.
var basicsFields = map[string]string{
	"exterior color": "exterior_color",
	"interior color": "interior_color",
	"drivetrain":     "drivetrain",
	"fuel type":      "fuel_type",
	"transmission":   "transmission",
	"engine":         "engine",
	"mileage":        "mileage",
	"mpg":            "mpg",
}

// Extract pulls one raw listing record out of a saved listing detail page.
//
// Missing selectors produce nil fields, never errors: a partially rendered
// page still yields a usable record, and the loader contract downstream is
// "accept as-is". ok is false only when the page has no listing title at
// all, i.e. it is not a listing page.
func Extract(doc *goquery.Document) (listing.Raw, bool) {
	var raw listing.Raw

	title := text(doc.Find("h1.listing-title").First())
	if title == "" {
		return raw, false
	}
	if m := titleRe.FindStringSubmatch(title); m != nil {
		listing.SetField(&raw, "year", m[1])
		listing.SetField(&raw, "manufacturer", m[2])
		listing.SetField(&raw, "model", m[3])
	}

	listing.SetField(&raw, "price", text(doc.Find("span.primary-price").First()))
	if drop := text(doc.Find("span.price-drop").First()); drop != "" {
		listing.SetField(&raw, "price_drop", drop)
	}

	// Basics section: <dl><dt>label</dt><dd>value</dd>...</dl>
	doc.Find("section.basics-section dl dt").Each(func(_ int, dt *goquery.Selection) {
		label := strings.ToLower(text(dt))
		field, ok := basicsFields[label]
		if !ok {
			return
		}
		listing.SetField(&raw, field, text(dt.NextFiltered("dd")))
	})

	// Vehicle history: boolean-ish rows keyed by label.
	doc.Find("section.vehicle-history dl dt").Each(func(_ int, dt *goquery.Selection) {
		label := strings.ToLower(text(dt))
		value := text(dt.NextFiltered("dd"))
		switch label {
		case "accidents or damage":
			setBool(&raw, "accidents_or_damage", !strings.EqualFold(value, "none reported"))
		case "1-owner vehicle":
			setBool(&raw, "one_owner", strings.EqualFold(value, "yes"))
		case "personal use only":
			setBool(&raw, "personal_use_only", strings.EqualFold(value, "yes"))
		}
	})

	listing.SetField(&raw, "seller_name", text(doc.Find("h3.seller-name").First()))
	listing.SetField(&raw, "seller_rating", text(doc.Find("span.sds-rating__count").First()))
	listing.SetField(&raw, "driver_rating", text(doc.Find("span.driver-rating__count").First()))
	if m := reviewCountRe.FindStringSubmatch(text(doc.Find("a.driver-rating__reviews").First())); m != nil {
		listing.SetField(&raw, "driver_reviews_num", m[1])
	}

	return raw, true
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

func setBool(raw *listing.Raw, field string, v bool) {
	if v {
		listing.SetField(raw, field, "true")
	} else {
		listing.SetField(raw, field, "false")
	}
}
