package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	ws "ordenescli/internal/websocket"
)

// HubReporter reports websocket hub activity. Implemented by the
// websocket hub.
type HubReporter interface {
	Stats() ws.HubStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	reports   *ReportService
	hub       HubReporter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime string, reports *ReportService, hub HubReporter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		reports:   reports,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns the overall service health
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	services := map[string]interface{}{
		"datasets": map[string]interface{}{
			"status": "healthy",
			"count":  hs.reports.Count(),
		},
	}
	if hs.hub != nil {
		stats := hs.hub.Stats()
		services["websocket"] = map[string]interface{}{
			"status":            "healthy",
			"clients":           stats.ActiveClients,
			"total_connections": stats.TotalConnections,
			"messages_sent":     stats.MessagesSent,
		}
	}

	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
		},
		Services: services,
	}
}

// LivenessCheck is a lightweight probe for orchestration
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
	}
}

// Version returns build information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"build_time": hs.buildTime,
		"go_version": runtime.Version(),
	}
}
