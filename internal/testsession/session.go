package testsession

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flexflow/flexflow/pkg/logger"
)

// startSessions starts the configured number of sessions concurrently and
// returns their IDs.
func startSessions(ctx context.Context, config *Config, stats *Stats) ([]string, error) {
	logger.Get().Info(ctx, "starting sessions", logger.Int("count", config.NumSessions))

	client := newHTTPClient(config.Timeout)
	ids := make([]string, config.NumSessions)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < config.NumSessions; i++ {
		i := i
		g.Go(func() error {
			id := fmt.Sprintf("drill-%d", i+1)
			started, err := startSingleSession(gctx, client, config.BaseURL, id)
			if err != nil {
				return fmt.Errorf("session %s: %w", id, err)
			}
			ids[i] = started
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.SessionsStarted = len(ids)
	logger.Get().Info(ctx, "sessions started", logger.Any("ids", ids))
	return ids, nil
}

// startSingleSession posts one session start and returns the assigned ID.
func startSingleSession(ctx context.Context, client *HTTPClient, baseURL, id string) (string, error) {
	resp, err := client.Post(ctx, baseURL+"/api/v1/sessions", sessionResponse{SessionID: id})
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var sr sessionResponse
	if err := unmarshalJSON(body, &sr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return sr.SessionID, nil
}

// awaitConvergence polls each session's metrics until the pipeline has
// committed a real reading: the synthetic standing pose has visible legs,
// so the upper-body-only flag flipping to false marks the first fully
// processed frame.
func awaitConvergence(ctx context.Context, config *Config, ids []string, stats *Stats) error {
	log.Printf("⏳ Waiting for %d sessions to converge...", len(ids))

	client := newHTTPClient(config.Timeout)
	var converged int64

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			deadline := time.Now().Add(ConvergenceTimeout)
			for time.Now().Before(deadline) {
				snap, err := getMetrics(gctx, client, config.BaseURL, id)
				if err == nil && !snap.IsUpperBodyOnly && snap.ArmAngles.LeftElbow > 0 {
					atomic.AddInt64(&converged, 1)
					if config.Verbose {
						log.Printf("📐 %s converged: neck %.1f°, elbows %.1f°/%.1f°",
							id, snap.NeckAngle, snap.ArmAngles.LeftElbow, snap.ArmAngles.RightElbow)
					}
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(ConvergencePoll):
				}
			}
			return fmt.Errorf("session %s did not converge within %s", id, ConvergenceTimeout)
		})
	}
	err := g.Wait()

	stats.SessionsConverged = int(atomic.LoadInt64(&converged))
	stats.SessionsFailed = len(ids) - stats.SessionsConverged
	if err != nil {
		return err
	}

	log.Printf("✅ All %d sessions converged", stats.SessionsConverged)
	return nil
}

// getMetrics fetches the current metrics snapshot for a session.
func getMetrics(ctx context.Context, client *HTTPClient, baseURL, id string) (metricsSnapshot, error) {
	resp, err := client.Get(ctx, fmt.Sprintf("%s/api/v1/metrics/%s", baseURL, id))
	if err != nil {
		return metricsSnapshot{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return metricsSnapshot{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return metricsSnapshot{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var snap metricsSnapshot
	if err := unmarshalJSON(body, &snap); err != nil {
		return metricsSnapshot{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return snap, nil
}

// stopSessions deletes every started session and confirms the registry no
// longer lists them.
func stopSessions(ctx context.Context, config *Config, ids []string) error {
	logger.Get().Info(ctx, "stopping sessions", logger.Int("count", len(ids)))

	client := newHTTPClient(config.Timeout)
	for _, id := range ids {
		resp, err := client.Delete(ctx, fmt.Sprintf("%s/api/v1/sessions/%s", config.BaseURL, id))
		if err != nil {
			return fmt.Errorf("stopping %s: %w", id, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("stopping %s: failed to read response: %w", id, err)
		}
		if resp.StatusCode != StatusOK {
			return fmt.Errorf("stopping %s: HTTP %d: %s", id, resp.StatusCode, string(body))
		}
	}

	resp, err := client.Get(ctx, config.BaseURL+"/api/v1/sessions")
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	var list sessionListResponse
	if err := unmarshalJSON(body, &list); err != nil {
		return fmt.Errorf("parsing session list: %w", err)
	}
	for _, id := range ids {
		for _, active := range list.Sessions {
			if id == active {
				return fmt.Errorf("session %s still listed after stop", id)
			}
		}
	}

	logger.Get().Info(ctx, "sessions stopped and deregistered")
	return nil
}
