package model

import "time"

// Reward event types. The type string plus description explain every entry
// on a citizen's points statement.
const (
	RewardCollection = "collection" // scheduling a pickup (10 segregated / 5 not)
	RewardComplaint  = "complaint"  // filing a complaint (5)
	RewardTraining   = "training"   // completing a module (module-specific)
	RewardPurchase   = "purchase"   // shop redemption (negative delta)
)

// RewardEvent is one append-only ledger row. Points is the signed delta
// applied to the user's balance: positive for credits, negative for debits.
// Rows are never updated or deleted; a user's balance is always the sum of
// their rows.
type RewardEvent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Type        string    `json:"type"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}
