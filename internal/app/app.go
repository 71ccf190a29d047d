// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	httpapi "community-platform-backend/internal/api/http"
	"community-platform-backend/internal/config"
	"community-platform-backend/internal/geo"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/mail"
	"community-platform-backend/internal/repository/postgres"
	"community-platform-backend/internal/service"
	"community-platform-backend/internal/storage"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config   *config.Config
	DB       *sql.DB
	Repos    service.Repositories
	Storage  storage.Storage
	Redis    *redis.Client
	Services httpapi.Services
	Score    service.ScoreService
}

// OpenDB connects to PostgreSQL and verifies the connection
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Debug("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")
	return db, nil
}

// Repositories exposes the postgres store as the service dependency bundle
func Repositories(db *sql.DB) service.Repositories {
	store := postgres.NewStore(db)
	return service.Repositories{
		Profiles:      store.ProfileRepository,
		Organizations: store.OrganizationRepository,
		Memberships:   store.MembershipRepository,
		Networks:      store.NetworkRepository,
		Events:        store.EventRepository,
		Projects:      store.ProjectRepository,
		Areas:         store.AreaRepository,
		Reports:       store.ReportRepository,
	}
}

// New connects every backend named in cfg and builds the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, Repos: Repositories(db)}

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	var err error
	a.Storage, err = storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	images, err := storage.NewImageResolver(a.Storage, cfg.Storage.Imgproxy)
	if err != nil {
		return fmt.Errorf("init image resolver: %w", err)
	}
	files := service.NewFileStore(a.Storage, images, cfg.Storage.MaxUploadMB)

	mailer, err := mail.New(ctx, cfg.Mail)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	renderer, err := mail.NewRenderer()
	if err != nil {
		return fmt.Errorf("init mail templates: %w", err)
	}
	emailSvc := service.NewEmailService(mailer, renderer, cfg.Server.PublicURL, cfg.Mail.SupportAddress)
	logger.Info("Mailer initialized", "driver", cfg.Mail.Driver)

	a.Redis, err = geo.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, geocoding runs uncached", "error", err)
		a.Redis = nil
	}
	geocoder := geo.NewGeocoder(cfg.Geocoding, a.Redis)

	a.Services = httpapi.Services{
		Auth:         service.NewAuthService(a.Repos.Profiles, emailSvc),
		Profile:      service.NewProfileService(a.Repos, files, emailSvc),
		Organization: service.NewOrganizationService(a.Repos, geocoder, files, emailSvc),
		Network:      service.NewNetworkService(a.Repos, emailSvc),
		Event:        service.NewEventService(a.Repos, files, emailSvc, storage.PresignExpiration(cfg.Storage)),
		Project:      service.NewProjectService(a.Repos, files),
		Report:       service.NewReportService(a.Repos, emailSvc),
		Region:       service.NewRegionService(a.Repos),
	}
	a.Score = service.NewScoreService(a.Repos)
	return nil
}

// FileReader returns the storage when it serves files through this process
func (a *App) FileReader() storage.FileReader {
	if r, ok := a.Storage.(storage.FileReader); ok {
		return r
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close redis", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
}
