package model

import "time"

// ComplaintType is the category a citizen files an issue under.
type ComplaintType string

const (
	ComplaintMissedCollection ComplaintType = "missed_collection"
	ComplaintOverflowingBins  ComplaintType = "overflowing_bins"
	ComplaintImproperDisposal ComplaintType = "improper_disposal"
	ComplaintVehicleIssues    ComplaintType = "vehicle_issues"
	ComplaintFacilityProblems ComplaintType = "facility_problems"
	ComplaintOther            ComplaintType = "other"
)

// Valid reports whether t is one of the six accepted categories.
func (t ComplaintType) Valid() bool {
	switch t {
	case ComplaintMissedCollection, ComplaintOverflowingBins,
		ComplaintImproperDisposal, ComplaintVehicleIssues,
		ComplaintFacilityProblems, ComplaintOther:
		return true
	}
	return false
}

// ComplaintStatus is the lifecycle state of a filed complaint.
// Forward-only: pending → in_progress → resolved.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

// Rank orders statuses for the forward-only check; unknown statuses rank -1.
func (s ComplaintStatus) Rank() int {
	switch s {
	case ComplaintPending:
		return 0
	case ComplaintInProgress:
		return 1
	case ComplaintResolved:
		return 2
	}
	return -1
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool { return s.Rank() >= 0 }

// Complaint is a citizen-filed issue report.
//
// Reference is a public code (xid) quoted by citizens when following up,
// so the internal numeric ID never leaves the system. ResolvedAt is set
// exactly once, on the transition to resolved.
type Complaint struct {
	ID          int64           `json:"id"`
	Reference   string          `json:"reference"`
	UserID      int64           `json:"userId"`
	Type        ComplaintType   `json:"type"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
}
