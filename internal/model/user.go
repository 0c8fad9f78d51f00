// Package model defines the data structures used throughout the application.
// Every row that comes out of the storage layer is mapped into one of these
// named-field structs — handlers and services never see positional columns.
package model

import "time"

// Role identifies what a user account is allowed to do.
// The portal knows exactly three roles; anything else is a data error.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleWorker  Role = "worker"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// Staff reports whether the role may perform worker/admin operations
// (advancing collection status, updating vehicles, resolving complaints).
func (r Role) Staff() bool {
	return r == RoleWorker || r == RoleAdmin
}

// User represents a registered account: identity plus gamification state.
//
// TrackingCode is the externally visible waste-tracking identifier assigned
// once at registration (format WG<year><8 hex chars>). It is distinct from
// the numeric ID, which stays internal.
//
// Points is the current balance. It is only ever mutated together with a
// rewards ledger row in the same transaction, so at any commit point
// Points == sum of the user's RewardEvent deltas.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt, never serialized
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         Role      `json:"role"`
	Ward         string    `json:"ward"`
	TrackingCode string    `json:"trackingCode"`
	RegisteredAt time.Time `json:"registeredAt"`
	TrainingDone bool      `json:"trainingDone"`
	Points       int       `json:"points"`
}
