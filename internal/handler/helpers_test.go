package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/model"
	sqliteRepo "github.com/sakif/waste-portal/internal/repository/sqlite"
	"github.com/sakif/waste-portal/internal/service"
)

const testPassword = "password123"

// testEnv wires real services over an in-memory database behind the same
// route tree the server uses, so tests exercise auth, role gates and
// handlers together.
type testEnv struct {
	router   *chi.Mux
	db       *sqliteRepo.DB
	identity *service.IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("handler-test-secret-key")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	identity := service.NewIdentityService(db, passwords, logger)
	collections := service.NewCollectionService(db, logger)
	complaints := service.NewComplaintService(db, logger)
	training := service.NewTrainingService(db, logger)
	shop := service.NewShopService(db, logger)
	rewards := service.NewRewardsService(db, logger)
	fleet := service.NewFleetService(db, db, logger)
	reports := service.NewReportService(db, nil, logger)

	authHandler := NewAuthHandler(identity, tokens, logger)
	collectionHandler := NewCollectionHandler(collections, logger)
	complaintHandler := NewComplaintHandler(complaints, logger)
	trainingHandler := NewTrainingHandler(training, logger)
	shopHandler := NewShopHandler(shop, logger)
	rewardsHandler := NewRewardsHandler(rewards, logger)
	fleetHandler := NewFleetHandler(fleet, logger)
	reportHandler := NewReportHandler(reports, identity, logger)

	requireAuth := auth.RequireAuth(tokens)
	staffOnly := auth.RequireRole(model.RoleWorker, model.RoleAdmin)
	adminOnly := auth.RequireRole(model.RoleAdmin)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", authHandler.HandleMe)

			r.Post("/collections", collectionHandler.HandleSchedule)
			r.Get("/collections/mine", collectionHandler.HandleMine)
			r.Get("/collections/{id}", collectionHandler.HandleGet)

			r.Post("/complaints", complaintHandler.HandleFile)
			r.Get("/complaints/mine", complaintHandler.HandleMine)
			r.Get("/complaints/{id}", complaintHandler.HandleGet)

			r.Get("/shop/products", shopHandler.HandleProducts)
			r.Post("/shop/purchase", shopHandler.HandlePurchase)

			r.Get("/training/modules", trainingHandler.HandleModules)
			r.Post("/training/{id}/complete", trainingHandler.HandleComplete)

			r.Get("/rewards/mine", rewardsHandler.HandleMine)

			r.Get("/stats/dashboard", reportHandler.HandleDashboard)
			r.Get("/stats/segregation", reportHandler.HandleSegregation)
			r.Get("/facilities", fleetHandler.HandleListFacilities)

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)

				r.Get("/collections", collectionHandler.HandleRoute)
				r.Patch("/collections/{id}/status", collectionHandler.HandleStatus)
				r.Patch("/complaints/{id}/status", complaintHandler.HandleStatus)
				r.Get("/stats/wards", reportHandler.HandleWards)
				r.Get("/vehicles", fleetHandler.HandleListVehicles)
				r.Patch("/vehicles/{id}/position", fleetHandler.HandleUpdatePosition)
			})

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/facilities", fleetHandler.HandleCreateFacility)
				r.Post("/vehicles", fleetHandler.HandleCreateVehicle)
				r.Get("/users", reportHandler.HandleListUsers)
				r.Get("/reports/collections.csv", reportHandler.HandleExportCSV)
			})
		})
	})

	return &testEnv{router: r, db: db, identity: identity}
}

// do sends a JSON request through the full router.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register creates a citizen through the public endpoint.
func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
		"fullName": "Test User",
		"ward":     "Ward-1",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return &user
}

// login returns the session cookie for an existing account.
func (e *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

// registerStaff provisions a worker or admin directly; public
// registration only creates citizens.
func (e *testEnv) registerStaff(t *testing.T, username string, role model.Role) *http.Cookie {
	t.Helper()

	_, err := e.identity.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
		FullName: "Staff User",
		Role:     role,
	})
	require.NoError(t, err)
	return e.login(t, username)
}
