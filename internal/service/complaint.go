package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// PointsComplaint is the reporting bonus for filing a complaint.
const PointsComplaint = 5

const MaxComplaintLength = 2000

// ComplaintInput describes a citizen's report of a waste problem.
type ComplaintInput struct {
	UserID      int64
	Type        model.ComplaintType
	Description string
	Location    string
	Latitude    float64
	Longitude   float64
}

// FiledComplaint carries the stored complaint plus the points outcome.
type FiledComplaint struct {
	Complaint  *model.Complaint `json:"complaint"`
	Points     int              `json:"points_earned"`
	NewBalance int              `json:"new_balance"`
}

// ComplaintService owns the complaint lifecycle.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	logger     *slog.Logger
}

func NewComplaintService(complaints repository.ComplaintRepository, logger *slog.Logger) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		logger:     logger,
	}
}

// File validates and stores a complaint, crediting the reporting bonus in
// the same transaction.
func (s *ComplaintService) File(ctx context.Context, in ComplaintInput) (*FiledComplaint, error) {
	if !in.Type.Valid() {
		return nil, apperror.ValidationFailed("complaint_type", fmt.Sprintf("unknown complaint type %q", in.Type))
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "a description is required")
	}
	if len(description) > MaxComplaintLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxComplaintLength))
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, apperror.ValidationFailed("location", "a location is required")
	}

	c := &model.Complaint{
		UserID:      in.UserID,
		Type:        in.Type,
		Description: description,
		Location:    strings.TrimSpace(in.Location),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}

	balance, err := s.complaints.FileComplaint(ctx, c, PointsComplaint, fmt.Sprintf("reported %s", c.Type))
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint filed",
		slog.Int64("complaint_id", c.ID),
		slog.String("reference", c.Reference),
		slog.Int64("user_id", c.UserID),
		slog.String("type", string(c.Type)),
	)

	return &FiledComplaint{Complaint: c, Points: PointsComplaint, NewBalance: balance}, nil
}

// HistoryForUser returns the citizen's own complaints, newest first.
func (s *ComplaintService) HistoryForUser(ctx context.Context, userID int64) ([]model.Complaint, error) {
	return s.complaints.ComplaintsByUser(ctx, userID)
}

// Get returns a single complaint. Citizens may only see their own.
func (s *ComplaintService) Get(ctx context.Context, id, callerID int64, callerRole model.Role) (*model.Complaint, error) {
	c, err := s.complaints.ComplaintByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !callerRole.Staff() && c.UserID != callerID {
		return nil, apperror.Forbidden("complaint belongs to another user")
	}
	return c, nil
}

// AdvanceStatus moves a complaint forward through pending → in_progress
// → resolved. The resolved timestamp is stamped on the final transition.
func (s *ComplaintService) AdvanceStatus(ctx context.Context, id int64, to model.ComplaintStatus) (*model.Complaint, error) {
	if !to.Valid() {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown complaint status %q", to))
	}

	c, err := s.complaints.AdvanceComplaintStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint status updated",
		slog.Int64("complaint_id", id),
		slog.String("status", string(to)),
	)
	return c, nil
}
