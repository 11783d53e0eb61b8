package mart

import (
	"fmt"

	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
)

// FactListing is one fact row: surrogate foreign keys plus the measures
// copied through from staging unmodified.
type FactListing struct {
	ListingID int64
	VehicleID int64
	SellerID  *int64
	TimeID    *int64

	Price             *float64
	PriceDrop         *float64
	Mileage           *float64
	MPG               *float64
	DriverRating      *float64
	DriverReviewsNum  *int64
	AccidentsOrDamage *bool
	OneOwner          *bool
	PersonalUseOnly   *bool
}

// IntegrityError reports a staging row whose required vehicle key is absent
// from the built dimension. That can only happen when the builder and the
// assembler ran against different staging snapshots, so it aborts the batch
// instead of silently dropping the row and corrupting fact cardinality.
type IntegrityError struct {
	Row int // 0-based staging row index
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("mart: staging row %d: vehicle natural key missing from dim_vehicle (dimension built from a different snapshot?)", e.Row)
}

// AssembleFacts re-joins every staging row against the completed dimensions.
//
// The vehicle lookup is a required inner-join match. The seller and time
// lookups are left-outer: a nil or excluded key leaves the foreign key nil
// and the row is still emitted. Output cardinality is exactly one fact row
// per staging row; listing ids are assigned in input order from seq.
func AssembleFacts(rows []listing.Staging, dims *Dimensions, seq *Sequence) ([]FactListing, error) {
	out := make([]FactListing, 0, len(rows))

	for i := range rows {
		s := &rows[i]

		vehicleID, ok := dims.VehicleID(s)
		if !ok {
			return nil, &IntegrityError{Row: i}
		}

		out = append(out, FactListing{
			ListingID: seq.Next(),
			VehicleID: vehicleID,
			SellerID:  dims.SellerID(s),
			TimeID:    dims.TimeID(s),

			Price:             s.Price,
			PriceDrop:         s.PriceDrop,
			Mileage:           s.Mileage,
			MPG:               s.MPG,
			DriverRating:      s.DriverRating,
			DriverReviewsNum:  s.DriverReviewsNum,
			AccidentsOrDamage: s.AccidentsOrDamage,
			OneOwner:          s.OneOwner,
			PersonalUseOnly:   s.PersonalUseOnly,
		})
	}

	return out, nil
}
