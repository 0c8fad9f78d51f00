package model

import "time"

// WasteType is the category a pickup is declared as.
type WasteType string

const (
	WasteWet       WasteType = "wet"
	WasteDry       WasteType = "dry"
	WasteHazardous WasteType = "hazardous"
	WasteEWaste    WasteType = "e-waste"
)

// Valid reports whether t is one of the four accepted categories.
func (t WasteType) Valid() bool {
	switch t {
	case WasteWet, WasteDry, WasteHazardous, WasteEWaste:
		return true
	}
	return false
}

// CollectionStatus is the lifecycle state of a pickup.
// Transitions are strictly forward: scheduled → collected → processed.
// Skipping an intermediate state is allowed; moving backward is not.
type CollectionStatus string

const (
	CollectionScheduled CollectionStatus = "scheduled"
	CollectionCollected CollectionStatus = "collected"
	CollectionProcessed CollectionStatus = "processed"
)

// Rank orders statuses for the forward-only check. Unknown statuses rank -1
// so they never pass a transition comparison.
func (s CollectionStatus) Rank() int {
	switch s {
	case CollectionScheduled:
		return 0
	case CollectionCollected:
		return 1
	case CollectionProcessed:
		return 2
	}
	return -1
}

// Valid reports whether s is a known status.
func (s CollectionStatus) Valid() bool { return s.Rank() >= 0 }

// WasteCollection is one scheduled or completed pickup.
//
// CollectedBy and VehicleNumber stay empty until a worker advances the
// status to collected (or beyond) and stamps them in the same update.
type WasteCollection struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"userId"`
	ScheduledFor  time.Time        `json:"scheduledFor"`
	WasteType     WasteType        `json:"wasteType"`
	WeightKg      float64          `json:"weightKg"`
	Segregated    bool             `json:"segregated"`
	CollectedBy   string           `json:"collectedBy,omitempty"`
	VehicleNumber string           `json:"vehicleNumber,omitempty"`
	Status        CollectionStatus `json:"status"`
	Address       string           `json:"address"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// CollectionDetail is a collection joined with the owning user's contact
// fields. Workers see it on their route list; the report export emits it.
type CollectionDetail struct {
	WasteCollection
	FullName  string `json:"fullName"`
	Ward      string `json:"ward"`
	UserPhone string `json:"userPhone,omitempty"`
	UserAddr  string `json:"userAddress,omitempty"`
}
