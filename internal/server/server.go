// Package server is the composition root: it opens the database and the
// optional Redis cache, assembles repositories, services and handlers,
// defines every route with its role gate, and runs the HTTP server with
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/cache"
	"github.com/sakif/waste-portal/internal/handler"
	"github.com/sakif/waste-portal/internal/middleware"
	"github.com/sakif/waste-portal/internal/model"
	sqliteRepo "github.com/sakif/waste-portal/internal/repository/sqlite"
	"github.com/sakif/waste-portal/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	RedisAddr string // empty disables the dashboard cache

	// Bootstrap admin, created only when the user table is empty.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Server owns the router and the resources that must be closed on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	cache  *cache.Cache
}

// New opens the database and cache and wires the whole dependency
// chain: DB → repositories → services → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c, err := cache.New(context.Background(), cfg.RedisAddr)
	if err != nil {
		// The portal works without Redis; log and continue uncached.
		logger.Warn("redis unavailable, dashboard cache disabled",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		c = nil
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		cache:  c,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	// Services. The single *sqlite.DB satisfies every repository
	// interface; each service receives only the slice it needs.
	identity := service.NewIdentityService(s.db, passwords, s.logger)
	collections := service.NewCollectionService(s.db, s.logger)
	complaints := service.NewComplaintService(s.db, s.logger)
	training := service.NewTrainingService(s.db, s.logger)
	shop := service.NewShopService(s.db, s.logger)
	rewards := service.NewRewardsService(s.db, s.logger)
	fleet := service.NewFleetService(s.db, s.db, s.logger)
	reports := service.NewReportService(s.db, s.cache, s.logger)

	// Handlers.
	authHandler := handler.NewAuthHandler(identity, tokens, s.logger)
	collectionHandler := handler.NewCollectionHandler(collections, s.logger)
	complaintHandler := handler.NewComplaintHandler(complaints, s.logger)
	trainingHandler := handler.NewTrainingHandler(training, s.logger)
	shopHandler := handler.NewShopHandler(shop, s.logger)
	rewardsHandler := handler.NewRewardsHandler(rewards, s.logger)
	fleetHandler := handler.NewFleetHandler(fleet, s.logger)
	reportHandler := handler.NewReportHandler(reports, identity, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	staffOnly := auth.RequireRole(model.RoleWorker, model.RoleAdmin)
	adminOnly := auth.RequireRole(model.RoleAdmin)

	s.router.Route("/api", func(r chi.Router) {
		// Public.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Authenticated.
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

			// Worker/admin.
			r.Group(func(r chi.Router) {
				r.Use(staffOnly)

				r.Get("/collections", collectionHandler.HandleRoute)
				r.Patch("/collections/{id}/status", collectionHandler.HandleStatus)
				r.Patch("/complaints/{id}/status", complaintHandler.HandleStatus)
				r.Get("/stats/wards", reportHandler.HandleWards)
				r.Get("/vehicles", fleetHandler.HandleListVehicles)
				r.Patch("/vehicles/{id}/position", fleetHandler.HandleUpdatePosition)
			})

			// Admin.
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/facilities", fleetHandler.HandleCreateFacility)
				r.Post("/vehicles", fleetHandler.HandleCreateVehicle)
				r.Get("/users", reportHandler.HandleListUsers)
				r.Get("/reports/collections.csv", reportHandler.HandleExportCSV)
			})
		})
	})

	// Provision the bootstrap admin so a fresh database is reachable.
	if s.config.AdminUsername != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := identity.EnsureAdmin(ctx, s.config.AdminUsername, s.config.AdminEmail, s.config.AdminPassword); err != nil {
			return fmt.Errorf("provisioning admin: %w", err)
		}
	}

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database and cache.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.cache.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
