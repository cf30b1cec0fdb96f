package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/globaledutech/payments/internal/clock"
	"github.com/globaledutech/payments/internal/gateway"
	"github.com/globaledutech/payments/internal/payment/domain"
	"github.com/globaledutech/payments/internal/payment/resolver"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Gateway *gateway.Client
	Checker resolver.StatusChecker
	Clock   clock.Clock
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	gw      *gateway.Client
	checker resolver.StatusChecker
	clock   clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		gw:      p.Gateway,
		checker: p.Checker,
		clock:   p.Clock,
	}
}

type createLinkResponse struct {
	ID         string `json:"id"`
	ShortURL   string `json:"short_url"`
	PaymentURL string `json:"payment_url"`
	StatusLink string `json:"status_link"`
	Status     string `json:"status"`
}

func (s *Service) CreatePaymentLink(ctx context.Context, req domain.CreatePaymentLinkRequest) (domain.CreatePaymentLinkResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.CreatePaymentLinkResponse{}, domain.ErrInvalidUser
	}
	productType := strings.TrimSpace(req.ProductType)
	productID := strings.TrimSpace(req.ProductID)
	if productType == "" || productID == "" {
		return domain.CreatePaymentLinkResponse{}, domain.ErrInvalidProduct
	}
	if req.Amount <= 0 {
		return domain.CreatePaymentLinkResponse{}, domain.ErrInvalidAmount
	}

	refID := newReferenceToken()
	body := map[string]any{
		"amount":       int64(math.Round(req.Amount * 100)),
		"currency":     "INR",
		"description":  fmt.Sprintf("%s:%s", productType, productID),
		"reference_id": refID,
		"notify":       map[string]bool{"sms": false, "email": false},
		// Mobile deep-link callback; the gateway appends payment/order/status
		// query params on redirect.
		"callback_method": "get",
		"callback_url":    fmt.Sprintf("myapp://razorpay/payment?ref_id=%s", refID),
		"notes": map[string]string{
			"user_id":      userID,
			"product_type": productType,
			"product_id":   productID,
		},
	}

	raw, err := s.gw.PostJSON(ctx, "/v1/payment_links", body)
	if err != nil {
		// no local record on failure: nothing to reconcile later
		return domain.CreatePaymentLinkResponse{}, fmt.Errorf("create payment link: %w", err)
	}

	var created createLinkResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return domain.CreatePaymentLinkResponse{}, fmt.Errorf("decode payment link response: %w", err)
	}
	if created.ID == "" {
		return domain.CreatePaymentLinkResponse{}, fmt.Errorf("create payment link: %w", domain.ErrInvalidID)
	}

	linkURL := created.ShortURL
	if linkURL == "" {
		linkURL = created.PaymentURL
	}
	if linkURL == "" {
		linkURL = created.StatusLink
	}

	now := s.clock.Now()
	linkID := created.ID
	record := domain.PaymentRequest{
		ID:          s.genID.Generate(),
		LinkID:      &linkID,
		UserID:      userID,
		ProductType: productType,
		ProductID:   productID,
		Gateway:     domain.GatewayRazorpay,
		Amount:      req.Amount,
		LinkURL:     linkURL,
		Status:      creationStatus(created.Status),
		RawLast:     datatypes.JSON(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertPaymentRequest(ctx, s.db, &record); err != nil {
		return domain.CreatePaymentLinkResponse{}, fmt.Errorf("persist payment link: %w", err)
	}

	s.log.Info("payment link created",
		zap.String("link_id", linkID),
		zap.String("user_id", userID),
		zap.String("status", string(record.Status)),
	)
	return domain.CreatePaymentLinkResponse{
		PaymentID:   linkID,
		PaymentLink: linkURL,
	}, nil
}

func creationStatus(raw string) domain.Status {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return domain.StatusCreated
	}
	return domain.Status(raw)
}

// CheckStatus resolves the current gateway state on demand and persists a
// snapshot for quick reads. It does not touch the payment request itself;
// that is the reconciler's job.
func (s *Service) CheckStatus(ctx context.Context, paymentID string) (domain.CheckStatusResponse, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return domain.CheckStatusResponse{}, domain.ErrInvalidID
	}

	res, err := s.checker.Check(ctx, paymentID)
	if err != nil {
		return domain.CheckStatusResponse{}, err
	}

	now := s.clock.Now()
	snap := domain.PaymentStatusSnapshot{
		PaymentID: paymentID,
		Status:    res.Status,
		CheckedAt: now,
		UpdatedAt: now,
		Raw:       res.Raw,
	}
	if err := s.repo.UpsertStatusSnapshot(ctx, s.db, &snap); err != nil {
		return domain.CheckStatusResponse{}, fmt.Errorf("persist status snapshot: %w", err)
	}

	var rawAny any
	_ = json.Unmarshal(res.Raw, &rawAny)
	return domain.CheckStatusResponse{
		PaymentID: paymentID,
		Status:    res.Status,
		Raw:       rawAny,
		PaidAt:    res.PaidAt,
	}, nil
}

func (s *Service) UserHistory(ctx context.Context, userID string) (domain.UserHistoryResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserHistoryResponse{}, domain.ErrInvalidUser
	}

	links, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return domain.UserHistoryResponse{}, err
	}

	statuses := make([]domain.PaymentStatusSnapshot, 0, len(links))
	for _, link := range links {
		externalID := link.ExternalID()
		if externalID == "" {
			continue
		}
		snap, err := s.repo.FindSnapshot(ctx, s.db, externalID)
		if err != nil {
			return domain.UserHistoryResponse{}, err
		}
		if snap != nil {
			statuses = append(statuses, *snap)
		}
	}

	return domain.UserHistoryResponse{
		UserID:          userID,
		PaymentLinks:    links,
		PaymentStatuses: statuses,
	}, nil
}

func (s *Service) History(ctx context.Context, req domain.HistoryRequest) (domain.HistoryResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	filter := domain.ListFilter{
		Status:      req.Status,
		ProductType: strings.TrimSpace(req.ProductType),
		CreatedFrom: req.StartDate,
		CreatedTo:   req.EndDate,
	}
	items, total, err := s.repo.List(ctx, s.db, filter, limit, offset)
	if err != nil {
		return domain.HistoryResponse{}, err
	}

	return domain.HistoryResponse{
		PaymentLinks: items,
		TotalCount:   total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func (s *Service) Stats(ctx context.Context) (domain.StatsResponse, error) {
	now := s.clock.Now()
	result, err := s.repo.Stats(ctx, s.db, now.Add(-24*time.Hour))
	if err != nil {
		return domain.StatsResponse{}, err
	}
	return domain.StatsResponse{
		StatsResult: *result,
		GeneratedAt: now,
	}, nil
}
