package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the canonical gateway-agnostic payment state. Raw gateway
// payloads from both resource kinds collapse into this one enum.
type Status string

const (
	StatusCreated Status = "created"
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusIssued  Status = "issued"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
	StatusUnknown Status = "unknown"
)

// CandidateStatuses are the non-terminal states the reconciler keeps polling.
func CandidateStatuses() []Status {
	return []Status{StatusCreated, StatusPending, StatusIssued, StatusActive}
}

func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusFailed
}

const GatewayRazorpay = "razorpay"

// LinkIDPrefix marks link-kind gateway identifiers. Everything else is an
// order-kind identifier.
const LinkIDPrefix = "plink_"

// PaymentRequest is one externally-visible payment attempt. Created once,
// mutated in place by the reconciler, never deleted.
type PaymentRequest struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	LinkID      *string        `gorm:"column:link_id;uniqueIndex" json:"link_id,omitempty"`
	OrderID     *string        `gorm:"column:order_id;uniqueIndex" json:"order_id,omitempty"`
	UserID      string         `gorm:"column:user_id;not null;index" json:"user_id"`
	ProductType string         `gorm:"type:text;not null" json:"product_type"`
	ProductID   string         `gorm:"type:text;not null" json:"product_id"`
	Gateway     string         `gorm:"type:text;not null" json:"gateway"`
	Amount      float64        `gorm:"type:numeric(12,2);not null" json:"amount"`
	LinkURL     string         `gorm:"type:text" json:"link_url,omitempty"`
	Status      Status         `gorm:"type:text;not null;index" json:"status"`
	RawLast     datatypes.JSON `gorm:"type:jsonb" json:"raw_last,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	PaidAt      *time.Time     `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

func (PaymentRequest) TableName() string { return "payment_links" }

// ExternalID returns the canonical gateway identifier, preferring the link id.
// Empty means the record is malformed and cannot be reconciled.
func (p PaymentRequest) ExternalID() string {
	if p.LinkID != nil && *p.LinkID != "" {
		return *p.LinkID
	}
	if p.OrderID != nil && *p.OrderID != "" {
		return *p.OrderID
	}
	return ""
}

// PaymentStatusSnapshot is the most recent check result for one external id,
// kept separate from the request's audit trail for cheap reads.
type PaymentStatusSnapshot struct {
	PaymentID string         `gorm:"column:payment_id;primaryKey" json:"payment_id"`
	Status    Status         `gorm:"type:text;not null" json:"status"`
	CheckedAt time.Time      `gorm:"not null" json:"checked_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	Raw       datatypes.JSON `gorm:"type:jsonb" json:"raw,omitempty"`
}

func (PaymentStatusSnapshot) TableName() string { return "payment_status" }
