package invidious

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// probePath is a cheap endpoint every instance serves.
const probePath = "/trending"

// ProbeResult is the reachability of one instance at probe time.
type ProbeResult struct {
	Instance   string        `json:"instance"`
	Healthy    bool          `json:"healthy"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"`
	Error      string        `json:"error,omitempty"`
}

// Probe checks every instance concurrently and returns results in trial
// order. It is informational only: the result is not remembered and does
// not change the order Resolve uses.
func (c *Client) Probe(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, len(c.instances))

	var eg errgroup.Group
	for i, instance := range c.instances {
		eg.Go(func() error {
			results[i] = c.probeOne(ctx, instance)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// AnyHealthy reports whether at least one probe succeeded.
func AnyHealthy(results []ProbeResult) bool {
	for _, r := range results {
		if r.Healthy {
			return true
		}
	}
	return false
}

func (c *Client) probeOne(ctx context.Context, instance string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.Get(ctx, instance+APIPrefix+probePath)
	result := ProbeResult{Instance: instance, Latency: time.Since(start)}

	switch {
	case err != nil:
		result.Error = err.Error()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		result.StatusCode = resp.StatusCode
		result.Error = "unexpected status"
	default:
		result.StatusCode = resp.StatusCode
		result.Healthy = true
	}

	if !result.Healthy {
		c.logger.Debug("instance probe failed",
			zap.String("instance", instance),
			zap.Int("status", result.StatusCode),
			zap.String("error", result.Error))
	}
	return result
}
