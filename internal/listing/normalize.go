package listing

import "strings"

// TransmissionClass is the canonical transmission category derived from the
// free-text transmission field.
type TransmissionClass string

const (
	TransmissionAutomatic TransmissionClass = "automatic"
	TransmissionManual    TransmissionClass = "manual"
	TransmissionOther     TransmissionClass = "other"
)

// FuelClass is the canonical fuel category derived from the free-text
// fuel_type field.
type FuelClass string

const (
	FuelGasoline FuelClass = "gasoline"
	FuelDiesel   FuelClass = "diesel"
	FuelHybrid   FuelClass = "hybrid"
	FuelElectric FuelClass = "electric"
	FuelOther    FuelClass = "other"
)

// ClassifyTransmission maps a free-text transmission description to its
// canonical class.
//
// Rules are evaluated in a fixed priority order with case-insensitive
// substring matching; the first match wins. A string containing both
// "auto" and "manual" therefore classifies as automatic, by rule order,
// not by specificity. Nil and empty input classify as other.
func ClassifyTransmission(s *string) TransmissionClass {
	if s == nil {
		return TransmissionOther
	}
	t := strings.ToLower(*s)
	switch {
	case strings.Contains(t, "auto"), strings.Contains(t, "cvt"), strings.Contains(t, "a/t"):
		return TransmissionAutomatic
	case strings.Contains(t, "manual"), strings.Contains(t, "m/t"):
		return TransmissionManual
	default:
		return TransmissionOther
	}
}

// ClassifyFuel maps a free-text fuel description to its canonical class.
// Same fixed-priority, first-match-wins contract as ClassifyTransmission.
func ClassifyFuel(s *string) FuelClass {
	if s == nil {
		return FuelOther
	}
	t := strings.ToLower(*s)
	switch {
	case strings.Contains(t, "gas"):
		return FuelGasoline
	case strings.Contains(t, "diesel"):
		return FuelDiesel
	case strings.Contains(t, "hybrid"):
		return FuelHybrid
	case strings.Contains(t, "electric"):
		return FuelElectric
	default:
		return FuelOther
	}
}

// Normalize derives the staging record for one raw record.
//
// It is pure and total: every raw record, including one with all fields
// nil, produces a staging record. Identical input always yields identical
// output; the dimension builder's dedup depends on that.
func Normalize(r Raw) Staging {
	return Staging{
		Raw:               r,
		TransmissionClass: ClassifyTransmission(r.Transmission),
		FuelClass:         ClassifyFuel(r.FuelType),
	}
}
