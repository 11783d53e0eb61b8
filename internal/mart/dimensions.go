// Package mart implements the dimensional transform: distinct natural keys
// from the staging layer become surrogate-keyed dimension rows, and each
// staging row becomes one fact row keyed to them.
package mart

import (
	"strconv"

	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

// missing marks an absent key component in the canonical key encoding.
// NUL cannot occur in scraped text, so nil never collides with a real value
// (or with the empty string).
const missing = "\x00"

// DimVehicle is one distinct vehicle entity.
//
// The natural key is the full 11-field tuple, including the two derived
// classes. Two staging rows differing in even one field are distinct
// entities: the same make/model/year with a typo-variant engine string
// mints a second row. That is a data-quality limitation inherited from the
// source, not something to fix silently here.
type DimVehicle struct {
	ID                int64
	Manufacturer      *string
	Model             *string
	Year              *int64
	Engine            *string
	Transmission      *string
	Drivetrain        *string
	FuelType          *string
	ExteriorColor     *string
	InteriorColor     *string
	TransmissionClass listing.TransmissionClass
	FuelClass         listing.FuelClass
}

// DimSeller is one distinct {seller_name, seller_rating} pair.
//
// The rating is part of the natural key, so the same seller observed with a
// different rating becomes a second entity. The rating is treated as a
// point-in-time attribute of the listing snapshot; whether that is intended
// or a latent source-data issue is deliberately left as observed.
type DimSeller struct {
	ID     int64
	Name   string
	Rating *float64
}

// DimTime is one distinct listing year.
type DimTime struct {
	ID   int64
	Year int64
}

type vehicleKey struct {
	manufacturer      string
	model             string
	year              string
	engine            string
	transmission      string
	drivetrain        string
	fuelType          string
	exteriorColor     string
	interiorColor     string
	transmissionClass string
	fuelClass         string
}

type sellerKey struct {
	name   string
	rating string
}

// Dimensions holds the three completed dimension tables of one run plus
// the natural-key lookup maps the fact assembler resolves against. The
// fact assembler only reads them.
type Dimensions struct {
	Vehicles []DimVehicle
	Sellers  []DimSeller
	Times    []DimTime

	vehicleIDs map[vehicleKey]int64
	sellerIDs  map[sellerKey]int64
	timeIDs    map[int64]int64
}

// BuildDimensions projects every staging row onto the three natural-key
// tuples and assigns each distinct tuple a surrogate id.
//
// Dedup is exact equality on the full tuple via an explicit in-memory map,
// never a database DISTINCT. Ids are assigned in first-seen order from a
// fresh per-dimension sequence. Seller rows with a nil seller_name and time
// rows with a nil year are excluded entirely; there is no "unknown" row.
func BuildDimensions(rows []listing.Staging) *Dimensions {
	d := &Dimensions{
		vehicleIDs: make(map[vehicleKey]int64),
		sellerIDs:  make(map[sellerKey]int64),
		timeIDs:    make(map[int64]int64),
	}

	var vehicleSeq, sellerSeq, timeSeq Sequence

	for i := range rows {
		s := &rows[i]

		vk := vehicleKeyOf(s)
		if _, ok := d.vehicleIDs[vk]; !ok {
			id := vehicleSeq.Next()
			d.vehicleIDs[vk] = id
			d.Vehicles = append(d.Vehicles, DimVehicle{
				ID:                id,
				Manufacturer:      s.Manufacturer,
				Model:             s.Model,
				Year:              s.Year,
				Engine:            s.Engine,
				Transmission:      s.Transmission,
				Drivetrain:        s.Drivetrain,
				FuelType:          s.FuelType,
				ExteriorColor:     s.ExteriorColor,
				InteriorColor:     s.InteriorColor,
				TransmissionClass: s.TransmissionClass,
				FuelClass:         s.FuelClass,
			})
		}

		if s.SellerName != nil {
			sk := sellerKeyOf(s)
			if _, ok := d.sellerIDs[sk]; !ok {
				id := sellerSeq.Next()
				d.sellerIDs[sk] = id
				d.Sellers = append(d.Sellers, DimSeller{
					ID:     id,
					Name:   *s.SellerName,
					Rating: s.SellerRating,
				})
			}
		}

		if s.Year != nil {
			if _, ok := d.timeIDs[*s.Year]; !ok {
				id := timeSeq.Next()
				d.timeIDs[*s.Year] = id
				d.Times = append(d.Times, DimTime{ID: id, Year: *s.Year})
			}
		}
	}

	return d
}

// VehicleID resolves the required vehicle surrogate id for a staging row.
// ok is false only when the dimension was built from a different staging
// snapshot; the caller must treat that as fatal.
func (d *Dimensions) VehicleID(s *listing.Staging) (int64, bool) {
	id, ok := d.vehicleIDs[vehicleKeyOf(s)]
	return id, ok
}

// SellerID resolves the optional seller surrogate id. Nil means the row
// has no seller_name or the pair was excluded during dimension building.
func (d *Dimensions) SellerID(s *listing.Staging) *int64 {
	if s.SellerName == nil {
		return nil
	}
	if id, ok := d.sellerIDs[sellerKeyOf(s)]; ok {
		return &id
	}
	return nil
}

// TimeID resolves the optional time surrogate id.
func (d *Dimensions) TimeID(s *listing.Staging) *int64 {
	if s.Year == nil {
		return nil
	}
	if id, ok := d.timeIDs[*s.Year]; ok {
		return &id
	}
	return nil
}

func vehicleKeyOf(s *listing.Staging) vehicleKey {
	return vehicleKey{
		manufacturer:      keyText(s.Manufacturer),
		model:             keyText(s.Model),
		year:              keyInt(s.Year),
		engine:            keyText(s.Engine),
		transmission:      keyText(s.Transmission),
		drivetrain:        keyText(s.Drivetrain),
		fuelType:          keyText(s.FuelType),
		exteriorColor:     keyText(s.ExteriorColor),
		interiorColor:     keyText(s.InteriorColor),
		transmissionClass: string(s.TransmissionClass),
		fuelClass:         string(s.FuelClass),
	}
}

func sellerKeyOf(s *listing.Staging) sellerKey {
	return sellerKey{
		name:   keyText(s.SellerName),
		rating: keyFloat(s.SellerRating),
	}
}

func keyText(v *string) string {
	if v == nil {
		return missing
	}
	return *v
}

func keyInt(v *int64) string {
	if v == nil {
		return missing
	}
	return strconv.FormatInt(*v, 10)
}

func keyFloat(v *float64) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
