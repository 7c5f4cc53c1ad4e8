package interfaces

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/guard"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/config"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

// Services defines the interface for API services
type Services interface {
	GetLogger() *logger.Logger
	GetConfig() *config.Config
	SessionManager() SessionManager
	Guard() *guard.Guard
	Backend() BackendClient
	// EventLog is nil when durable storage is disabled.
	EventLog() EventLog
	Gatherer() prometheus.Gatherer
	StorageStatus(ctx context.Context) string
}
