package model

// Facility is a processing site: recycling centre, composting plant and so on.
// Created and edited only by admins; there is no automated lifecycle.
type Facility struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"` // recycling_center, composting, e_waste, wte_plant
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	CapacityTPD      float64 `json:"capacityTpd"` // tonnes per day
	ContactNumber    string  `json:"contactNumber"`
	OperationalHours string  `json:"operationalHours"`
}
