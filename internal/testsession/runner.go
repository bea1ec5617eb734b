package testsession

import (
	"context"
	"fmt"
	"time"

	"github.com/flexflow/flexflow/pkg/logger"
)

// Run executes the complete session test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting flexflow session test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.NumSessions),
		logger.String("watch", config.Watch.String()),
		logger.String("timeout", config.Timeout.String()),
		logger.String("query", config.SearchQuery),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health and readiness
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Start sessions
	ids, err := startSessions(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("session start failed: %w", err)
	}

	// Step 3: Wait for metrics to converge
	if err := awaitConvergence(ctx, config, ids, stats); err != nil {
		return fmt.Errorf("metrics convergence failed: %w", err)
	}

	// Step 4: Watch the landmark feeds
	if config.Watch > 0 {
		if err := watchLandmarks(ctx, config, ids, stats); err != nil {
			return fmt.Errorf("landmark watch failed: %w", err)
		}
	}

	// Step 5: Exercise search smoke test
	if config.SearchQuery != "" {
		if err := searchExercises(ctx, config, stats); err != nil {
			return fmt.Errorf("exercise search failed: %w", err)
		}
	}

	// Step 6: Verify frame accounting
	if err := verifyResults(ctx, config, ids, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Stop sessions
	if err := stopSessions(ctx, config, ids); err != nil {
		return fmt.Errorf("session stop failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running and ready.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	resp, err = client.Get(ctx, config.BaseURL+"/readyz")
	if err != nil {
		return fmt.Errorf("failed to check readiness: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read readiness response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service readiness check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy and ready")
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var convergenceRate, dropRate float64

	if stats.SessionsStarted > 0 {
		convergenceRate = float64(stats.SessionsConverged) / float64(stats.SessionsStarted) * PercentageMultiplier
	}
	if stats.FramesDelivered > 0 {
		dropRate = float64(stats.FramesDropped) / float64(stats.FramesDelivered) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessionsStarted", stats.SessionsStarted),
		logger.Int("sessionsConverged", stats.SessionsConverged),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("landmarkEvents", stats.LandmarkEvents),
		logger.Any("framesDelivered", stats.FramesDelivered),
		logger.Any("framesProcessed", stats.FramesProcessed),
		logger.Any("framesDropped", stats.FramesDropped),
		logger.Int("searchResults", stats.SearchResults),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("convergenceRate", convergenceRate),
		logger.Float64("dropRate", dropRate))
}
