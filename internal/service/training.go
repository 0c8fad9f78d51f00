package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/repository"
)

// TrainingModule is one entry in the fixed education catalog. The
// catalog is code, not data: the municipality revises it by release.
type TrainingModule struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Points      int    `json:"points"`
	Difficulty  string `json:"difficulty"`
}

var trainingModules = []TrainingModule{
	{
		ID:          "waste-classification",
		Title:       "Waste Classification & Identification",
		Description: "Learn to identify different types of waste and their proper disposal methods",
		Duration:    "30 minutes",
		Points:      50,
		Difficulty:  "Beginner",
	},
	{
		ID:          "source-segregation",
		Title:       "Source Segregation Best Practices",
		Description: "Master the techniques of segregating waste at source for maximum efficiency",
		Duration:    "45 minutes",
		Points:      75,
		Difficulty:  "Intermediate",
	},
	{
		ID:          "home-composting",
		Title:       "Home Composting Workshop",
		Description: "Convert your kitchen waste into valuable compost for your garden",
		Duration:    "60 minutes",
		Points:      100,
		Difficulty:  "Advanced",
	},
	{
		ID:          "plastic-waste",
		Title:       "Plastic Waste Management",
		Description: "Understanding plastic types, recycling codes, and creative reuse methods",
		Duration:    "40 minutes",
		Points:      80,
		Difficulty:  "Intermediate",
	},
}

// TrainingService serves the module catalog and credits completions.
type TrainingService struct {
	ledger repository.LedgerRepository
	logger *slog.Logger
}

func NewTrainingService(ledger repository.LedgerRepository, logger *slog.Logger) *TrainingService {
	return &TrainingService{
		ledger: ledger,
		logger: logger,
	}
}

// Modules returns the catalog.
func (s *TrainingService) Modules() []TrainingModule {
	out := make([]TrainingModule, len(trainingModules))
	copy(out, trainingModules)
	return out
}

// Complete credits a module's points to the user. Each module pays out
// once per user; a repeat completion is a conflict and changes nothing.
func (s *TrainingService) Complete(ctx context.Context, userID int64, moduleID string) (int, error) {
	var module *TrainingModule
	for i := range trainingModules {
		if trainingModules[i].ID == moduleID {
			module = &trainingModules[i]
			break
		}
	}
	if module == nil {
		return 0, apperror.ValidationFailed("module_id", fmt.Sprintf("unknown training module %q", moduleID))
	}

	balance, err := s.ledger.CompleteTraining(ctx, userID, module.ID, module.Points,
		fmt.Sprintf("completed training: %s", module.Title))
	if err != nil {
		return 0, err
	}

	s.logger.Info("training module completed",
		slog.Int64("user_id", userID),
		slog.String("module", module.ID),
		slog.Int("points", module.Points),
	)
	return balance, nil
}
