package mart

// Snapshot is the complete output of one rebuild: the three dimension
// tables and the fact table, internally consistent (every fact foreign key
// resolves inside the same snapshot).
//
// Storage backends replace the whole mart with a snapshot in one
// transaction; a snapshot is never applied partially.
type Snapshot struct {
	Vehicles []DimVehicle
	Sellers  []DimSeller
	Times    []DimTime
	Facts    []FactListing
}
