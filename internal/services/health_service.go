package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"ordersdash/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	commit    string
	sources   config.SourcesConfig
	reports   *ReportService
	cache     *SourceCache
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Runtime   map[string]any `json:"runtime,omitempty"`
	Services  map[string]any `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. reports and cache may be nil.
func NewHealthService(version, buildTime, commit string, sources config.SourcesConfig, reports *ReportService, cache *SourceCache, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("commit", commit))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		commit:    commit,
		sources:   sources,
		reports:   reports,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]any{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports whether the default sources can be served
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]any{
			"primary_source":   checkSourceFile(hs.sources.PrimaryPath),
			"secondary_source": checkSourceFile(hs.sources.SecondaryPath),
			"datasets":         hs.checkDatasets(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	result := map[string]any{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.commit != "" {
		result["commit"] = hs.commit
	}
	return result
}

func (hs *HealthService) checkDatasets() ServiceHealth {
	if hs.reports == nil {
		return ServiceHealth{Status: "not_ready", Message: "report service not initialized"}
	}
	msg := fmt.Sprintf("%d uploaded datasets", hs.reports.DatasetCount())
	if hs.cache != nil {
		msg += fmt.Sprintf(", %d cached sources", hs.cache.Len())
	}
	return ServiceHealth{Status: "ready", Message: msg}
}

func checkSourceFile(path string) ServiceHealth {
	if path == "" {
		return ServiceHealth{Status: "not_ready", Message: "no source configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("source not readable: %v", err)}
	}
	if info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("source is a directory: %s", path)}
	}
	return ServiceHealth{Status: "ready", Message: path}
}
