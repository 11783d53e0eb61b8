package storage

import "github.com/Bdemirbelul/DemirAI-v2/internal/mart"

// Column lists and row flatteners shared by every backend. Keeping these in
// one place means a backend only decides dialect concerns (placeholders,
// identifier quoting, DDL types), not column order.

var (
	DimVehicleColumns = []string{
		"vehicle_id", "manufacturer", "model", "year", "engine",
		"transmission", "drivetrain", "fuel_type", "exterior_color",
		"interior_color", "transmission_class", "fuel_class",
	}

	DimSellerColumns = []string{"seller_id", "seller_name", "seller_rating"}

	DimTimeColumns = []string{"time_id", "year"}

	FactListingColumns = []string{
		"listing_id", "vehicle_id", "seller_id", "time_id", "price",
		"price_drop", "mileage", "mpg", "driver_rating",
		"driver_reviews_num", "accidents_or_damage", "one_owner",
		"personal_use_only",
	}
)

// DimVehicleRows flattens dimension rows into positional bind values
// aligned to DimVehicleColumns.
func DimVehicleRows(in []mart.DimVehicle) [][]any {
	out := make([][]any, 0, len(in))
	for _, v := range in {
		out = append(out, []any{
			v.ID, textArg(v.Manufacturer), textArg(v.Model), intArg(v.Year),
			textArg(v.Engine), textArg(v.Transmission), textArg(v.Drivetrain),
			textArg(v.FuelType), textArg(v.ExteriorColor), textArg(v.InteriorColor),
			string(v.TransmissionClass), string(v.FuelClass),
		})
	}
	return out
}

func DimSellerRows(in []mart.DimSeller) [][]any {
	out := make([][]any, 0, len(in))
	for _, s := range in {
		out = append(out, []any{s.ID, s.Name, floatArg(s.Rating)})
	}
	return out
}

func DimTimeRows(in []mart.DimTime) [][]any {
	out := make([][]any, 0, len(in))
	for _, t := range in {
		out = append(out, []any{t.ID, t.Year})
	}
	return out
}

func FactListingRows(in []mart.FactListing) [][]any {
	out := make([][]any, 0, len(in))
	for _, f := range in {
		out = append(out, []any{
			f.ListingID, f.VehicleID, intArg(f.SellerID), intArg(f.TimeID),
			floatArg(f.Price), floatArg(f.PriceDrop), floatArg(f.Mileage),
			floatArg(f.MPG), floatArg(f.DriverRating), intArg(f.DriverReviewsNum),
			boolArg(f.AccidentsOrDamage), boolArg(f.OneOwner), boolArg(f.PersonalUseOnly),
		})
	}
	return out
}

// Nil pointers must bind as SQL NULL, not as a typed nil pointer; some
// drivers reject the latter.

func textArg(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func intArg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolArg(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
