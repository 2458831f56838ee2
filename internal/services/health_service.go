package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"esgpulse/internal/analyzer"
	"esgpulse/internal/config"
	"esgpulse/pkg/contracts"
)

// HealthService reports whether the processing dependencies are usable:
// the document analysis engine and the output storage location.
type HealthService struct {
	analyzer  analyzer.Analyzer
	paths     config.PathsConfig
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health check response shape.
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Services  ServicesStatus `json:"services"`
}

// ServicesStatus holds per-dependency reachability booleans.
type ServicesStatus struct {
	DocumentIntelligence bool `json:"document_intelligence"`
	BlobStorage          bool `json:"blob_storage"`
}

// UnhealthyStatus is the failure response shape.
type UnhealthyStatus struct {
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHealthService creates a health service over the analysis engine and
// configured paths.
func NewHealthService(a analyzer.Analyzer, paths config.PathsConfig, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		analyzer:  a,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck probes both dependencies and returns the health status. The
// booleans carry the per-service state; the call itself only errors on
// unexpected internal failure.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services: ServicesStatus{
			DocumentIntelligence: hs.checkAnalyzer(ctx),
			BlobStorage:          hs.checkStorage(),
		},
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.Bool("document_intelligence", status.Services.DocumentIntelligence),
		slog.Bool("blob_storage", status.Services.BlobStorage))

	return status
}

// LivenessCheck reports process liveness with runtime information.
func (hs *HealthService) LivenessCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"runtime": map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports readiness: the service is ready only when both
// dependencies are reachable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) (HealthStatus, bool) {
	status := hs.HealthCheck(ctx)
	ready := status.Services.DocumentIntelligence && status.Services.BlobStorage
	if !ready {
		status.Status = "not_ready"
	} else {
		status.Status = "ready"
	}
	return status, ready
}

// Version returns the build description plus process uptime.
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkAnalyzer(ctx context.Context) bool {
	if hs.analyzer == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := hs.analyzer.Ping(ctx); err != nil {
		hs.logger.WarnContext(ctx, "analyzer unreachable",
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// checkStorage verifies that the output location is writable, the
// filesystem analogue of blob storage reachability.
func (hs *HealthService) checkStorage() bool {
	if err := os.MkdirAll(hs.paths.OutputDir, 0o755); err != nil {
		return false
	}
	testFile := filepath.Join(hs.paths.OutputDir, ".health_check")
	f, err := os.Create(testFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(testFile)
	return true
}
