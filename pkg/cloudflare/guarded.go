package cloudflare

import (
	"context"
	"log/slog"
	"time"

	"github.com/nebari-dev/cfzones/pkg/limiter"
	"github.com/nebari-dev/cfzones/pkg/retry"
)

// guardedClient admits every call through a shared limiter and retries
// rate-limited calls. The limiter slot is held for one attempt only, so a
// call waiting out its backoff does not hold up other callers.
type guardedClient struct {
	next    Client
	limiter *limiter.Limiter
	policy  retry.Policy
}

// NewGuardedClient wraps next with admission control and retry. A nil
// policy.Retryable retries rate-limit failures only; a nil policy.OnRetry
// logs each backoff at warn level.
func NewGuardedClient(next Client, l *limiter.Limiter, policy retry.Policy) Client {
	if policy.Retryable == nil {
		policy.Retryable = IsRateLimited
	}
	if policy.OnRetry == nil {
		name := l.Name()
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			slog.Warn("Rate limited, backing off",
				"limiter", name,
				"attempt", attempt+1,
				"delay", delay,
				"error", err)
		}
	}

	return &guardedClient{next: next, limiter: l, policy: policy}
}

func guarded[T any](ctx context.Context, c *guardedClient, op func(context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (T, error) {
		return limiter.Run(ctx, c.limiter, op)
	})
}

func (c *guardedClient) ListZones(ctx context.Context, params ZoneListParams) (*ZonePage, error) {
	return guarded(ctx, c, func(ctx context.Context) (*ZonePage, error) {
		return c.next.ListZones(ctx, params)
	})
}

func (c *guardedClient) CreateDNSRecord(ctx context.Context, zoneID string, record CAARecord) (*Envelope, error) {
	return guarded(ctx, c, func(ctx context.Context) (*Envelope, error) {
		return c.next.CreateDNSRecord(ctx, zoneID, record)
	})
}

func (c *guardedClient) PatchZoneSetting(ctx context.Context, zoneID string, settingPath string, payload any) (*Envelope, error) {
	return guarded(ctx, c, func(ctx context.Context) (*Envelope, error) {
		return c.next.PatchZoneSetting(ctx, zoneID, settingPath, payload)
	})
}
