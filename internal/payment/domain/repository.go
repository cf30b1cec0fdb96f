package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatusUpdate is the per-check mutation applied to a payment request.
// PaidAt is only honored on the first transition to paid; the repository
// must never overwrite an already-set paid_at.
type StatusUpdate struct {
	Status    Status
	Raw       datatypes.JSON
	PaidAt    *time.Time
	CheckedAt time.Time
}

type ListFilter struct {
	Status      Status
	ProductType string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	// UpsertPaymentRequest writes the full record keyed by link_id.
	UpsertPaymentRequest(ctx context.Context, db *gorm.DB, req *PaymentRequest) error
	// ApplyStatus updates status/raw/updated_at for the record whose link_id
	// or order_id equals externalID, guarding paid_at set-once semantics.
	ApplyStatus(ctx context.Context, db *gorm.DB, externalID string, update StatusUpdate) error
	// UpsertStatusSnapshot keeps at most one snapshot row per payment id.
	UpsertStatusSnapshot(ctx context.Context, db *gorm.DB, snap *PaymentStatusSnapshot) error
	// ListCandidates returns requests whose status is in statuses and whose
	// created_at is at or after createdAfter.
	ListCandidates(ctx context.Context, db *gorm.DB, statuses []Status, createdAfter time.Time) ([]PaymentRequest, error)

	FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*PaymentRequest, error)
	FindSnapshot(ctx context.Context, db *gorm.DB, paymentID string) (*PaymentStatusSnapshot, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]PaymentRequest, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, limit, offset int) ([]PaymentRequest, int64, error)
	Stats(ctx context.Context, db *gorm.DB, recentSince time.Time) (*StatsResult, error)
}

type StatusBreakdown struct {
	Status Status  `json:"status"`
	Count  int64   `json:"count"`
	Amount float64 `json:"total_amount"`
}

type ProductBreakdown struct {
	ProductType string `json:"product_type"`
	Count       int64  `json:"count"`
}

type StatsResult struct {
	TotalPayments    int64              `json:"total_payments"`
	StatusBreakdown  []StatusBreakdown  `json:"status_breakdown"`
	ProductBreakdown []ProductBreakdown `json:"product_type_breakdown"`
	RecentPayments   int64              `json:"recent_payments_24h"`
}
