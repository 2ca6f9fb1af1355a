package goGate

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGate/internal/rate"
)

// throttleCheck refuses a login while the identifier or IP is blocked. Redis
// failures are logged and let the login through.
func (g *Gate) throttleCheck(ctx context.Context, email, ip string) error {
	if g.limiter == nil {
		return nil
	}
	err := g.limiter.Check(ctx, email, ip)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		g.metrics.Inc(MetricLoginRateLimited)
		g.emitAudit(ctx, AuditEvent{
			Kind:       AuditLoginRateLimited,
			Identifier: identifierHash(email),
			Reason:     string(auditErrRateLimited),
		})
		return ErrLoginRateLimited
	default:
		g.metrics.Inc(MetricCollaboratorFailure)
		g.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		return nil
	}
}

func (g *Gate) throttleFail(ctx context.Context, email, ip string) {
	if g.limiter == nil {
		return
	}
	if err := g.limiter.Fail(ctx, email, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		g.metrics.Inc(MetricCollaboratorFailure)
		g.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
	}
}

func (g *Gate) throttleReset(ctx context.Context, email string) {
	if g.limiter == nil {
		return
	}
	if err := g.limiter.Reset(ctx, email); err != nil {
		g.metrics.Inc(MetricCollaboratorFailure)
		g.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
	}
}
