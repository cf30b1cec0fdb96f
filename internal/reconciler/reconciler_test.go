package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/globaledutech/payments/internal/clock"
	"github.com/globaledutech/payments/internal/payment/domain"
	"github.com/globaledutech/payments/internal/payment/repository"
	"github.com/globaledutech/payments/internal/payment/resolver"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type scriptedChecker struct {
	resolutions map[string]resolver.Resolution
	errs        map[string]error
	calls       map[string]int
}

func newScriptedChecker() *scriptedChecker {
	return &scriptedChecker{
		resolutions: map[string]resolver.Resolution{},
		errs:        map[string]error{},
		calls:       map[string]int{},
	}
}

func (s *scriptedChecker) Check(ctx context.Context, externalID string) (resolver.Resolution, error) {
	s.calls[externalID]++
	if err, ok := s.errs[externalID]; ok {
		return resolver.Resolution{}, err
	}
	res, ok := s.resolutions[externalID]
	if !ok {
		return resolver.Resolution{}, errors.New("unexpected id: " + externalID)
	}
	return res, nil
}

type harness struct {
	rec     *Reconciler
	db      *gorm.DB
	repo    domain.Repository
	checker *scriptedChecker
	clock   *clock.FakeClock
	node    *snowflake.Node
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.PaymentRequest{}, &domain.PaymentStatusSnapshot{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	checker := newScriptedChecker()
	repo := repository.Provide()

	rec, err := New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		Repo:    repo,
		Checker: checker,
		Clock:   fake,
	})
	require.NoError(t, err)

	return &harness{rec: rec, db: conn, repo: repo, checker: checker, clock: fake, node: node}
}

func (h *harness) insertLink(t *testing.T, linkID string, status domain.Status, createdAt time.Time) {
	t.Helper()
	id := linkID
	require.NoError(t, h.repo.UpsertPaymentRequest(context.Background(), h.db, &domain.PaymentRequest{
		ID:          h.node.Generate(),
		LinkID:      &id,
		UserID:      "user-1",
		ProductType: "course",
		ProductID:   "c1",
		Gateway:     domain.GatewayRazorpay,
		Amount:      100,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}))
}

func TestRunOncePromotesToPaidOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created := h.clock.Now()

	h.insertLink(t, "plink_flow", domain.StatusCreated, created)

	// first cycle: still unpaid
	h.checker.resolutions["plink_flow"] = resolver.Resolution{
		Status: domain.StatusActive,
		Raw:    datatypes.JSON(`{"status":"active"}`),
	}
	h.clock.Advance(5 * time.Second)
	require.NoError(t, h.rec.RunOnce(ctx))

	record, err := h.repo.FindByExternalID(ctx, h.db, "plink_flow")
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, record.Status)
	require.Nil(t, record.PaidAt)

	// second cycle: the gateway reports a captured payment
	h.clock.Advance(5 * time.Second)
	paidAt := h.clock.Now()
	h.checker.resolutions["plink_flow"] = resolver.Resolution{
		Status: domain.StatusPaid,
		Raw:    datatypes.JSON(`{"status":"active","payments":[{"status":"captured"}]}`),
		PaidAt: &paidAt,
	}
	require.NoError(t, h.rec.RunOnce(ctx))

	record, err = h.repo.FindByExternalID(ctx, h.db, "plink_flow")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, record.Status)
	require.NotNil(t, record.PaidAt)
	require.WithinDuration(t, paidAt, *record.PaidAt, time.Second)

	snap, err := h.repo.FindSnapshot(ctx, h.db, "plink_flow")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Equal(t, domain.StatusPaid, snap.Status)

	// third cycle: paid records are no longer candidates
	checks := h.checker.calls["plink_flow"]
	h.clock.Advance(5 * time.Second)
	require.NoError(t, h.rec.RunOnce(ctx))
	require.Equal(t, checks, h.checker.calls["plink_flow"])

	record, err = h.repo.FindByExternalID(ctx, h.db, "plink_flow")
	require.NoError(t, err)
	require.WithinDuration(t, paidAt, *record.PaidAt, time.Second)
}

func TestRunOnceSkipsRecordsOutsideWindow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.insertLink(t, "plink_fresh", domain.StatusCreated, h.clock.Now().Add(-time.Minute))
	h.insertLink(t, "plink_aged", domain.StatusCreated, h.clock.Now().Add(-30*time.Minute))

	h.checker.resolutions["plink_fresh"] = resolver.Resolution{
		Status: domain.StatusCreated,
		Raw:    datatypes.JSON(`{"status":"created"}`),
	}

	require.NoError(t, h.rec.RunOnce(ctx))
	require.Equal(t, 1, h.checker.calls["plink_fresh"])
	require.Zero(t, h.checker.calls["plink_aged"])
}

func TestRunOnceIsolatesCandidateFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := h.clock.Now()

	h.insertLink(t, "plink_bad", domain.StatusCreated, now.Add(-2*time.Minute))
	h.insertLink(t, "plink_good", domain.StatusCreated, now.Add(-time.Minute))

	h.checker.errs["plink_bad"] = errors.New("gateway exploded")
	h.checker.resolutions["plink_good"] = resolver.Resolution{
		Status: domain.StatusPending,
		Raw:    datatypes.JSON(`{"status":"pending"}`),
	}

	require.NoError(t, h.rec.RunOnce(ctx))

	good, err := h.repo.FindByExternalID(ctx, h.db, "plink_good")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, good.Status)

	bad, err := h.repo.FindByExternalID(ctx, h.db, "plink_bad")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCreated, bad.Status)
}

func TestRunOnceSkipsMalformedRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := h.clock.Now()

	require.NoError(t, h.db.Exec(
		`INSERT INTO payment_links (id, user_id, product_type, product_id, gateway, amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.node.Generate(), "user-1", "course", "c1", domain.GatewayRazorpay, 100, domain.StatusCreated, now, now,
	).Error)
	h.insertLink(t, "plink_after", domain.StatusCreated, now)
	h.checker.resolutions["plink_after"] = resolver.Resolution{
		Status: domain.StatusCreated,
		Raw:    datatypes.JSON(`{"status":"created"}`),
	}

	require.NoError(t, h.rec.RunOnce(ctx))
	require.Equal(t, 1, h.checker.calls["plink_after"])
	require.Len(t, h.checker.calls, 1)
}

func TestRunOnceListFailureIsSystemic(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.db.Exec(`DROP TABLE payment_links`).Error)

	err := h.rec.RunOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "list candidates")
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.rec.RunForever(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reconciler did not stop on cancel")
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
