package testsession

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// verifyResults pulls the service statistics and checks the frame
// accounting for every driven session. The single-slot cell makes the
// pipeline lossy: delivered counts everything the source handed over,
// processed what the estimator consumed, dropped what the slot overwrote.
// At most one frame may sit in the slot between the three counters.
func verifyResults(ctx context.Context, config *Config, ids []string, stats *Stats) error {
	log.Println("🔍 Verifying frame accounting...")

	perSession, err := fetchSessionStats(ctx, config)
	if err != nil {
		return err
	}

	for _, id := range ids {
		acct, ok := perSession[id]
		if !ok {
			return fmt.Errorf("no stats reported for session %s", id)
		}

		if acct.Processed == 0 {
			return fmt.Errorf("session %s processed no frames", id)
		}
		if acct.Delivered < acct.Processed {
			return fmt.Errorf("session %s delivered %d but processed %d",
				id, acct.Delivered, acct.Processed)
		}
		pending := acct.Delivered - acct.Processed - acct.Dropped
		if pending > 1 {
			return fmt.Errorf("session %s accounting leak: delivered %d, processed %d, dropped %d",
				id, acct.Delivered, acct.Processed, acct.Dropped)
		}

		stats.FramesDelivered += acct.Delivered
		stats.FramesDropped += acct.Dropped
		stats.FramesProcessed += acct.Processed

		log.Printf("   %s: delivered %d, processed %d, dropped %d",
			id, acct.Delivered, acct.Processed, acct.Dropped)
	}

	if stats.FramesDropped == 0 {
		log.Println("ℹ️  No drops observed; the estimator kept up with the source")
	}

	log.Println("✅ Frame accounting verified")
	return nil
}

// fetchSessionStats reads GET /stats and extracts per-session counters.
func fetchSessionStats(ctx context.Context, config *Config) (map[string]sessionAccounting, error) {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/stats")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		Sessions map[string]struct {
			FramesDelivered uint64 `json:"frames_delivered"`
			FramesDropped   uint64 `json:"frames_dropped"`
			FramesProcessed uint64 `json:"frames_processed"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse stats: %w", err)
	}

	perSession := make(map[string]sessionAccounting, len(raw.Sessions))
	for id, s := range raw.Sessions {
		perSession[id] = sessionAccounting{
			Delivered: s.FramesDelivered,
			Dropped:   s.FramesDropped,
			Processed: s.FramesProcessed,
		}
	}
	return perSession, nil
}
