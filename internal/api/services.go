package api

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/guard"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/config"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

// Services contains all the dependencies for API handlers
type Services struct {
	DB       *sql.DB
	Logger   *logger.Logger
	Config   *config.Config
	Registry *prometheus.Registry

	manager interfaces.SessionManager
	guard   *guard.Guard
	backend interfaces.BackendClient
	events  interfaces.EventLog
}

// NewServices creates a new services container. db and events may be nil
// when durable storage is disabled.
func NewServices(
	db *sql.DB,
	manager interfaces.SessionManager,
	accessGuard *guard.Guard,
	backendClient interfaces.BackendClient,
	events interfaces.EventLog,
	registry *prometheus.Registry,
	log *logger.Logger,
	cfg *config.Config,
) *Services {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Services{
		DB:       db,
		Logger:   log,
		Config:   cfg,
		Registry: registry,
		manager:  manager,
		guard:    accessGuard,
		backend:  backendClient,
		events:   events,
	}
}

func (s *Services) GetLogger() *logger.Logger {
	return s.Logger
}

func (s *Services) GetConfig() *config.Config {
	return s.Config
}

func (s *Services) SessionManager() interfaces.SessionManager {
	return s.manager
}

func (s *Services) Guard() *guard.Guard {
	return s.guard
}

func (s *Services) Backend() interfaces.BackendClient {
	return s.backend
}

func (s *Services) EventLog() interfaces.EventLog {
	return s.events
}

func (s *Services) Gatherer() prometheus.Gatherer {
	return s.Registry
}

// StorageStatus reports the durable tier's health: "disabled", "connected"
// or "unreachable".
func (s *Services) StorageStatus(ctx context.Context) string {
	if s.DB == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		s.Logger.Warning("Storage health check failed", "error", err.Error())
		return "unreachable"
	}
	return "connected"
}
