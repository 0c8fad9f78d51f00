package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// RewardsService exposes the read side of the points ledger.
type RewardsService struct {
	ledger repository.LedgerRepository
	logger *slog.Logger
}

func NewRewardsService(ledger repository.LedgerRepository, logger *slog.Logger) *RewardsService {
	return &RewardsService{
		ledger: ledger,
		logger: logger,
	}
}

// History returns the user's ledger entries, newest first. Credits are
// positive, purchases negative; the running sum is the balance.
func (s *RewardsService) History(ctx context.Context, userID int64) ([]model.RewardEvent, error) {
	events, err := s.ledger.EventsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing reward events: %w", err)
	}
	return events, nil
}
