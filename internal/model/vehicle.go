package model

import "time"

// VehicleStatus is the operational state of a collection vehicle.
// Unlike collection status there is no ordering — vehicles move freely
// between states as dispatch requires.
type VehicleStatus string

const (
	VehicleIdle        VehicleStatus = "idle"
	VehicleCollecting  VehicleStatus = "collecting"
	VehicleInTransit   VehicleStatus = "in_transit"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// Valid reports whether s is a known vehicle status.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleIdle, VehicleCollecting, VehicleInTransit, VehicleMaintenance:
		return true
	}
	return false
}

// Vehicle is a collection truck. Admins create the record; workers update
// position and status as the day goes on.
type Vehicle struct {
	ID           int64         `json:"id"`
	Number       string        `json:"number"` // registration plate, unique
	Type         string        `json:"type"`   // garbage_truck, recycling_truck
	CapacityTons float64       `json:"capacityTons"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	DriverName   string        `json:"driverName"`
	DriverPhone  string        `json:"driverPhone"`
	Status       VehicleStatus `json:"status"`
	LastUpdated  time.Time     `json:"lastUpdated"`
}
