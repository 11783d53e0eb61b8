// Package listing defines the raw and staging record types for used-car
// listings, plus the lenient field coercion used by the input parsers.
//
// Raw records are accepted as-is: every field is nullable and a value that
// cannot be coerced to its declared type becomes nil, never an error. The
// raw layer is append-only and is never mutated downstream.
package listing

import (
	"strconv"
	"strings"
)

// Raw is one scraped listing record. All fields are optional.
type Raw struct {
	Manufacturer      *string
	Model             *string
	Year              *int64
	Mileage           *float64
	Engine            *string
	Transmission      *string
	Drivetrain        *string
	FuelType          *string
	MPG               *float64
	ExteriorColor     *string
	InteriorColor     *string
	AccidentsOrDamage *bool
	OneOwner          *bool
	PersonalUseOnly   *bool
	SellerName        *string
	SellerRating      *float64
	DriverRating      *float64
	DriverReviewsNum  *int64
	PriceDrop         *float64
	Price             *float64
}

// Staging is one Raw record plus the two derived canonical fields.
// It has no identity beyond its source row and is recomputed in full on
// every run.
type Staging struct {
	Raw

	TransmissionClass TransmissionClass
	FuelClass         FuelClass
}

// Fields lists the canonical raw field names in input order. Parsers align
// source columns to these names (see header_map in the CSV parser options).
var Fields = []string{
	"manufacturer",
	"model",
	"year",
	"mileage",
	"engine",
	"transmission",
	"drivetrain",
	"fuel_type",
	"mpg",
	"exterior_color",
	"interior_color",
	"accidents_or_damage",
	"one_owner",
	"personal_use_only",
	"seller_name",
	"seller_rating",
	"driver_rating",
	"driver_reviews_num",
	"price_drop",
	"price",
}

// SetField coerces v into the named field of r.
//
// Coercion is lenient on purpose: scraped values carry currency symbols,
// thousands separators and loose boolean spellings, and the loader contract
// is "no validation". Unknown field names and unparseable values are
// ignored (the field stays nil).
func SetField(r *Raw, name string, v any) {
	switch name {
	case "manufacturer":
		r.Manufacturer = coerceText(v)
	case "model":
		r.Model = coerceText(v)
	case "year":
		r.Year = coerceInt(v)
	case "mileage":
		r.Mileage = coerceNumber(v)
	case "engine":
		r.Engine = coerceText(v)
	case "transmission":
		r.Transmission = coerceText(v)
	case "drivetrain":
		r.Drivetrain = coerceText(v)
	case "fuel_type":
		r.FuelType = coerceText(v)
	case "mpg":
		r.MPG = coerceNumber(v)
	case "exterior_color":
		r.ExteriorColor = coerceText(v)
	case "interior_color":
		r.InteriorColor = coerceText(v)
	case "accidents_or_damage":
		r.AccidentsOrDamage = coerceBool(v)
	case "one_owner":
		r.OneOwner = coerceBool(v)
	case "personal_use_only":
		r.PersonalUseOnly = coerceBool(v)
	case "seller_name":
		r.SellerName = coerceText(v)
	case "seller_rating":
		r.SellerRating = coerceNumber(v)
	case "driver_rating":
		r.DriverRating = coerceNumber(v)
	case "driver_reviews_num":
		r.DriverReviewsNum = coerceInt(v)
	case "price_drop":
		r.PriceDrop = coerceNumber(v)
	case "price":
		r.Price = coerceNumber(v)
	}
}

// FromRecord builds a Raw from a loosely typed record (e.g. a decoded JSON
// object). Keys not present in Fields are ignored.
func FromRecord(rec map[string]any) Raw {
	var r Raw
	for k, v := range rec {
		SetField(&r, k, v)
	}
	return r
}

func coerceText(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	case []byte:
		return coerceText(string(t))
	default:
		return nil
	}
}

func coerceInt(v any) *int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case int64:
		n := t
		return &n
	case int:
		n := int64(t)
		return &n
	case float64:
		n := int64(t)
		return &n
	case string:
		s := scrubNumeric(t)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		// "2020.0" style values round-trip through float.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n := int64(f)
			return &n
		}
		return nil
	default:
		return nil
	}
}

func coerceNumber(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f := t
		return &f
	case int64:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case string:
		s := scrubNumeric(t)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func coerceBool(v any) *bool {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		b := t
		return &b
	case float64:
		b := t != 0
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "1":
			b := true
			return &b
		case "false", "f", "no", "n", "0":
			b := false
			return &b
		}
		return nil
	default:
		return nil
	}
}

// scrubNumeric strips currency symbols, thousands separators and unit
// suffixes commonly seen in scraped listing values ("$24,000", "12,345 mi.").
func scrubNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return s
}
