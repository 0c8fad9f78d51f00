// Package service contains the business rules of the portal. Services
// accept primitives and return domain models and apperror values; they
// know nothing about HTTP. Handlers sit above, repositories below.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	DefaultListLimit  = 50
	MaxListLimit      = 200
)

// dummyHash is a bcrypt hash of a throwaway value. Authenticate compares
// against it when the username does not exist, so a failed login takes
// the same time whether or not the account is real.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// RegisterInput is everything a new account needs. Role defaults to
// citizen when empty; only the bootstrap path creates admins directly.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
	Ward     string
	Role     model.Role
}

// IdentityService handles registration, login and the user directory.
type IdentityService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewIdentityService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates the input, hashes the password, assigns a tracking
// code and creates the account. Duplicate usernames and emails surface
// as apperror.ErrDuplicate from the store's unique constraints.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if strings.ContainsAny(username, " \t\n") {
		return nil, apperror.ValidationFailed("username", "username must not contain whitespace")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, apperror.ValidationFailed("full_name", "full name is required")
	}

	role := in.Role
	if role == "" {
		role = model.RoleCitizen
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", in.Role))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	code, err := newTrackingCode(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("generating tracking code: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		Ward:         strings.TrimSpace(in.Ward),
		TrackingCode: code,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Authenticate checks a username/password pair and returns the account.
// Any failure — unknown user or wrong password — comes back as the same
// apperror.Unauthorized, and the bcrypt comparison runs either way so the
// two cases are indistinguishable by timing.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		s.passwords.Verify(dummyHash, password)
		return nil, apperror.Unauthorized()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("failed login attempt", slog.String("username", username))
		return nil, apperror.Unauthorized()
	}

	return user, nil
}

// Profile returns the account behind an authenticated request.
func (s *IdentityService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ListUsers returns a page of the user directory for the admin panel.
func (s *IdentityService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.ListUsers(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// EnsureAdmin provisions the bootstrap admin account when the user table
// is empty, so a fresh deployment is reachable. On a populated database
// it does nothing.
func (s *IdentityService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking for existing users: %w", err)
	}
	if n > 0 {
		return nil
	}

	admin, err := s.Register(ctx, RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		FullName: "Portal Administrator",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap admin provisioned", slog.Int64("user_id", admin.ID))
	return nil
}

// newTrackingCode builds the citizen's public waste-tracking code:
// "WG", the four-digit year, then eight uppercase hex characters from
// a cryptographic source.
func newTrackingCode(t time.Time) (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("WG%d%s", t.Year(), strings.ToUpper(hex.EncodeToString(buf[:]))), nil
}
