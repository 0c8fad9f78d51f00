package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// Hand-written in-memory mocks. They reproduce the store's observable
// behaviour (duplicates, balances, transition rules) without SQLite.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---------------------------------------------------------------------
// users

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return apperror.Duplicate("username")
		}
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Duplicate("email")
		}
	}
	m.nextID++
	user.ID = m.nextID
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = time.Now().UTC()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			result := *u
			return &result, nil
		}
	}
	return nil, &apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: fmt.Sprintf("user not found with username %s", username),
	}
}

func (m *mockUserRepo) ListUsers(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	result := []model.User{}
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	if opts.Offset >= len(result) {
		return []model.User{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockUserRepo) CountUsers(_ context.Context) (int, error) {
	return len(m.users), nil
}

// ---------------------------------------------------------------------
// ledger

type mockLedger struct {
	balances map[int64]int
	events   map[int64][]model.RewardEvent
	failWith error // when set, every mutation fails with this
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		balances: make(map[int64]int),
		events:   make(map[int64][]model.RewardEvent),
	}
}

func (m *mockLedger) apply(userID int64, delta int, rewardType, description string) int {
	m.balances[userID] += delta
	m.events[userID] = append(m.events[userID], model.RewardEvent{
		UserID:      userID,
		Type:        rewardType,
		Points:      delta,
		Description: description,
		EarnedAt:    time.Now().UTC(),
	})
	return m.balances[userID]
}

func (m *mockLedger) Credit(_ context.Context, userID int64, amount int, rewardType, description string) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return m.apply(userID, amount, rewardType, description), nil
}

func (m *mockLedger) Debit(_ context.Context, userID int64, amount int, rewardType, description string) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if m.balances[userID] < amount {
		return 0, apperror.InsufficientPoints(m.balances[userID], amount)
	}
	return m.apply(userID, -amount, rewardType, description), nil
}

func (m *mockLedger) CompleteTraining(_ context.Context, userID int64, moduleID string, points int, description string) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	rewardType := model.RewardTraining + ":" + moduleID
	for _, e := range m.events[userID] {
		if e.Type == rewardType {
			return 0, apperror.Conflict(fmt.Sprintf("training module %s already completed", moduleID))
		}
	}
	return m.apply(userID, points, rewardType, description), nil
}

func (m *mockLedger) EventsForUser(_ context.Context, userID int64) ([]model.RewardEvent, error) {
	events := m.events[userID]
	out := make([]model.RewardEvent, len(events))
	copy(out, events)
	return out, nil
}

func (m *mockLedger) SumForUser(_ context.Context, userID int64) (int, error) {
	sum := 0
	for _, e := range m.events[userID] {
		sum += e.Points
	}
	return sum, nil
}

// ---------------------------------------------------------------------
// collections

type mockCollectionRepo struct {
	collections map[int64]*model.WasteCollection
	ledger      *mockLedger
	nextID      int64
}

func newMockCollectionRepo(ledger *mockLedger) *mockCollectionRepo {
	return &mockCollectionRepo{
		collections: make(map[int64]*model.WasteCollection),
		ledger:      ledger,
	}
}

func (m *mockCollectionRepo) Schedule(_ context.Context, c *model.WasteCollection, points int, description string) (int, error) {
	m.nextID++
	c.ID = m.nextID
	c.Status = model.CollectionScheduled
	c.CreatedAt = time.Now().UTC()
	stored := *c
	m.collections[c.ID] = &stored
	return m.ledger.apply(c.UserID, points, model.RewardCollection, description), nil
}

func (m *mockCollectionRepo) CollectionByID(_ context.Context, id int64) (*model.WasteCollection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, apperror.NotFound("collection", id)
	}
	result := *c
	return &result, nil
}

func (m *mockCollectionRepo) CollectionsByUser(_ context.Context, userID int64) ([]model.WasteCollection, error) {
	result := []model.WasteCollection{}
	for id := m.nextID; id >= 1; id-- {
		if c, ok := m.collections[id]; ok && c.UserID == userID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCollectionRepo) CollectionsForDate(_ context.Context, day time.Time) ([]model.CollectionDetail, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	result := []model.CollectionDetail{}
	for id := int64(1); id <= m.nextID; id++ {
		c, ok := m.collections[id]
		if !ok {
			continue
		}
		if !c.ScheduledFor.Before(start) && c.ScheduledFor.Before(end) {
			result = append(result, model.CollectionDetail{WasteCollection: *c})
		}
	}
	return result, nil
}

func (m *mockCollectionRepo) AdvanceCollectionStatus(_ context.Context, id int64, to model.CollectionStatus, collectedBy, vehicleNumber string) (*model.WasteCollection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, apperror.NotFound("collection", id)
	}
	switch {
	case to.Rank() == c.Status.Rank():
		result := *c
		return &result, nil
	case to.Rank() < c.Status.Rank():
		return nil, apperror.Conflict(fmt.Sprintf(
			"collection status cannot move backward from %s to %s", c.Status, to))
	}
	if collectedBy != "" {
		c.CollectedBy = collectedBy
	}
	if vehicleNumber != "" {
		c.VehicleNumber = vehicleNumber
	}
	c.Status = to
	result := *c
	return &result, nil
}

// ---------------------------------------------------------------------
// complaints

type mockComplaintRepo struct {
	complaints map[int64]*model.Complaint
	ledger     *mockLedger
	nextID     int64
}

func newMockComplaintRepo(ledger *mockLedger) *mockComplaintRepo {
	return &mockComplaintRepo{
		complaints: make(map[int64]*model.Complaint),
		ledger:     ledger,
	}
}

func (m *mockComplaintRepo) FileComplaint(_ context.Context, c *model.Complaint, points int, description string) (int, error) {
	m.nextID++
	c.ID = m.nextID
	c.Reference = fmt.Sprintf("mock-ref-%d", m.nextID)
	c.Status = model.ComplaintPending
	c.CreatedAt = time.Now().UTC()
	stored := *c
	m.complaints[c.ID] = &stored
	return m.ledger.apply(c.UserID, points, model.RewardComplaint, description), nil
}

func (m *mockComplaintRepo) ComplaintByID(_ context.Context, id int64) (*model.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, apperror.NotFound("complaint", id)
	}
	result := *c
	return &result, nil
}

func (m *mockComplaintRepo) ComplaintsByUser(_ context.Context, userID int64) ([]model.Complaint, error) {
	result := []model.Complaint{}
	for id := m.nextID; id >= 1; id-- {
		if c, ok := m.complaints[id]; ok && c.UserID == userID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockComplaintRepo) AdvanceComplaintStatus(_ context.Context, id int64, to model.ComplaintStatus) (*model.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, apperror.NotFound("complaint", id)
	}
	switch {
	case to.Rank() == c.Status.Rank():
		result := *c
		return &result, nil
	case to.Rank() < c.Status.Rank():
		return nil, apperror.Conflict(fmt.Sprintf(
			"complaint status cannot move backward from %s to %s", c.Status, to))
	}
	if to == model.ComplaintResolved {
		t := time.Now().UTC()
		c.ResolvedAt = &t
	}
	c.Status = to
	result := *c
	return &result, nil
}

// ---------------------------------------------------------------------
// reports

type mockReportRepo struct {
	stats      model.DashboardStats
	aggregates []model.WardTypeAggregate
	details    []model.CollectionDetail
	rate       float64
	calls      int // DashboardStats invocations, for cache assertions
}

func (m *mockReportRepo) DashboardStats(_ context.Context) (*model.DashboardStats, error) {
	m.calls++
	stats := m.stats
	return &stats, nil
}

func (m *mockReportRepo) WasteByWardAndType(_ context.Context) ([]model.WardTypeAggregate, error) {
	return m.aggregates, nil
}

func (m *mockReportRepo) CollectionsByDateRange(_ context.Context, start, end time.Time) ([]model.CollectionDetail, error) {
	result := []model.CollectionDetail{}
	for _, d := range m.details {
		if !d.ScheduledFor.Before(start) && d.ScheduledFor.Before(end) {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockReportRepo) SegregationRate(_ context.Context) (float64, error) {
	return m.rate, nil
}

// interface conformance
var (
	_ repository.UserRepository       = (*mockUserRepo)(nil)
	_ repository.LedgerRepository     = (*mockLedger)(nil)
	_ repository.CollectionRepository = (*mockCollectionRepo)(nil)
	_ repository.ComplaintRepository  = (*mockComplaintRepo)(nil)
	_ repository.ReportRepository     = (*mockReportRepo)(nil)
)
