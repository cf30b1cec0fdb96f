package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/globaledutech/payments/internal/clock"
	obsmetrics "github.com/globaledutech/payments/internal/observability/metrics"
	"github.com/globaledutech/payments/internal/payment/domain"
	"github.com/globaledutech/payments/internal/payment/resolver"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("reconciler: missing dependency")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Checker resolver.StatusChecker
	Clock   clock.Clock
	Config  Config `optional:"true"`
}

// Reconciler is the background loop that keeps locally stored payment state
// aligned with the gateway's ground truth. One instance runs for the process
// lifetime; candidates are processed strictly sequentially within a cycle.
type Reconciler struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     Config
	repo    domain.Repository
	checker resolver.StatusChecker
	clock   clock.Clock
}

func New(p Params) (*Reconciler, error) {
	if p.DB == nil || p.Log == nil || p.Repo == nil || p.Checker == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Reconciler{
		db:      p.DB,
		log:     p.Log.Named("reconciler").With(zap.String("component", "reconciler")),
		cfg:     p.Config.withDefaults(),
		repo:    p.Repo,
		checker: p.Checker,
		clock:   p.Clock,
	}, nil
}

// RunOnce executes one full reconciliation cycle. It returns an error only
// for systemic failures (the candidate listing itself); per-candidate
// failures are logged, counted, and skipped until the next cycle.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	m := obsmetrics.Reconciler()
	m.IncCycle()
	start := time.Now()
	defer func() {
		m.ObserveCycleDuration(time.Since(start))
	}()

	cutoff := r.clock.Now().Add(-r.cfg.Lookback)
	candidates, err := r.repo.ListCandidates(ctx, r.db, domain.CandidateStatuses(), cutoff)
	if err != nil {
		m.IncCycleError()
		return fmt.Errorf("list candidates: %w", err)
	}

	r.log.Debug("reconcile cycle",
		zap.Time("cutoff", cutoff),
		zap.Int("pending", len(candidates)),
	)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.reconcileCandidate(ctx, candidate)
	}
	return nil
}

func (r *Reconciler) reconcileCandidate(ctx context.Context, candidate domain.PaymentRequest) {
	m := obsmetrics.Reconciler()

	externalID := candidate.ExternalID()
	if externalID == "" {
		// cannot be fixed by retrying; the window will age it out
		m.IncCandidateError(obsmetrics.CandidateErrorReasonMalformedRecord)
		r.log.Warn("skipping malformed payment record",
			zap.String("record_id", candidate.ID.String()),
			zap.String("user_id", candidate.UserID),
		)
		return
	}

	res, err := r.checker.Check(ctx, externalID)
	if err != nil {
		m.IncCandidateError(obsmetrics.ClassifyCandidateErrorReason(err))
		r.log.Error("status check failed",
			zap.String("payment_id", externalID),
			zap.Error(err),
		)
		return
	}

	now := r.clock.Now()
	update := domain.StatusUpdate{
		Status:    res.Status,
		Raw:       res.Raw,
		PaidAt:    res.PaidAt,
		CheckedAt: now,
	}
	if err := r.repo.ApplyStatus(ctx, r.db, externalID, update); err != nil {
		m.IncCandidateError(obsmetrics.CandidateErrorReasonDB)
		r.log.Error("status update failed",
			zap.String("payment_id", externalID),
			zap.Error(err),
		)
		return
	}

	snap := domain.PaymentStatusSnapshot{
		PaymentID: externalID,
		Status:    res.Status,
		CheckedAt: now,
		UpdatedAt: now,
		Raw:       res.Raw,
	}
	if err := r.repo.UpsertStatusSnapshot(ctx, r.db, &snap); err != nil {
		m.IncCandidateError(obsmetrics.CandidateErrorReasonDB)
		r.log.Error("snapshot upsert failed",
			zap.String("payment_id", externalID),
			zap.Error(err),
		)
		return
	}

	m.IncCandidateProcessed()
	r.log.Debug("payment reconciled",
		zap.String("payment_id", externalID),
		zap.String("status", string(res.Status)),
	)
}

// RunForever loops RunOnce until ctx is cancelled, sleeping Interval after a
// normal cycle and ErrorBackoff after a systemic one. No error class stops
// the loop.
func (r *Reconciler) RunForever(ctx context.Context) {
	r.log.Info("reconciler started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("error_backoff", r.cfg.ErrorBackoff),
		zap.Duration("lookback", r.cfg.Lookback),
	)

	for {
		delay := r.cfg.Interval
		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.Warn("reconcile cycle failed", zap.Error(err))
			delay = r.cfg.ErrorBackoff
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
