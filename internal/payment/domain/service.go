package domain

import (
	"context"
	"errors"
	"time"
)

type CreatePaymentLinkRequest struct {
	UserID      string
	ProductType string
	ProductID   string
	Amount      float64
}

type CreatePaymentLinkResponse struct {
	PaymentID   string `json:"payment_id"`
	PaymentLink string `json:"payment_link"`
}

type CheckStatusResponse struct {
	PaymentID string     `json:"payment_id"`
	Status    Status     `json:"status"`
	Raw       any        `json:"raw,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

type UserHistoryResponse struct {
	UserID          string                  `json:"user_id"`
	PaymentLinks    []PaymentRequest        `json:"payment_links"`
	PaymentStatuses []PaymentStatusSnapshot `json:"payment_statuses"`
}

type HistoryRequest struct {
	Limit       int
	Offset      int
	Status      Status
	ProductType string
	StartDate   *time.Time
	EndDate     *time.Time
}

type HistoryResponse struct {
	PaymentLinks []PaymentRequest `json:"payment_links"`
	TotalCount   int64            `json:"total_count"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

type StatsResponse struct {
	StatsResult
	GeneratedAt time.Time `json:"generated_at"`
}

type Service interface {
	CreatePaymentLink(ctx context.Context, req CreatePaymentLinkRequest) (CreatePaymentLinkResponse, error)
	CheckStatus(ctx context.Context, paymentID string) (CheckStatusResponse, error)
	UserHistory(ctx context.Context, userID string) (UserHistoryResponse, error)
	History(ctx context.Context, req HistoryRequest) (HistoryResponse, error)
	Stats(ctx context.Context) (StatsResponse, error)
}

var (
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidProduct = errors.New("invalid_product")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
