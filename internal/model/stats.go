package model

// DashboardStats is the headline aggregate block on every dashboard.
// It is cheap to compute and safe to cache for a few minutes.
type DashboardStats struct {
	TotalUsers       int     `json:"totalUsers"`
	TotalWasteKg     float64 `json:"totalWasteKg"`
	ActiveComplaints int     `json:"activeComplaints"`
	Facilities       int     `json:"facilities"`
}

// WardTypeAggregate is one cell of the ward × waste-type breakdown.
type WardTypeAggregate struct {
	Ward        string    `json:"ward"`
	WasteType   WasteType `json:"wasteType"`
	TotalKg     float64   `json:"totalKg"`
	Collections int       `json:"collections"`
}
