package repository

import (
	"context"
	"time"

	"github.com/globaledutech/payments/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertPaymentRequest(ctx context.Context, db *gorm.DB, req *domain.PaymentRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_links (
			id, link_id, order_id, user_id, product_type, product_id,
			gateway, amount, link_url, status, raw_last, created_at, updated_at, paid_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (link_id) DO UPDATE SET
			user_id = excluded.user_id,
			product_type = excluded.product_type,
			product_id = excluded.product_id,
			gateway = excluded.gateway,
			amount = excluded.amount,
			link_url = excluded.link_url,
			status = excluded.status,
			raw_last = excluded.raw_last,
			updated_at = excluded.updated_at`,
		req.ID,
		req.LinkID,
		req.OrderID,
		req.UserID,
		req.ProductType,
		req.ProductID,
		req.Gateway,
		req.Amount,
		req.LinkURL,
		req.Status,
		req.RawLast,
		req.CreatedAt,
		req.UpdatedAt,
		req.PaidAt,
	).Error
}

// ApplyStatus leaves paid_at untouched once set; the COALESCE is the
// compare-and-set guard for the first transition to paid.
func (r *repo) ApplyStatus(ctx context.Context, db *gorm.DB, externalID string, update domain.StatusUpdate) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_links
		 SET status = ?,
			raw_last = ?,
			updated_at = ?,
			paid_at = COALESCE(paid_at, ?)
		 WHERE link_id = ? OR order_id = ?`,
		update.Status,
		update.Raw,
		update.CheckedAt,
		update.PaidAt,
		externalID,
		externalID,
	).Error
}

func (r *repo) UpsertStatusSnapshot(ctx context.Context, db *gorm.DB, snap *domain.PaymentStatusSnapshot) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_status (payment_id, status, checked_at, updated_at, raw)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (payment_id) DO UPDATE SET
			status = excluded.status,
			checked_at = excluded.checked_at,
			updated_at = excluded.updated_at,
			raw = excluded.raw`,
		snap.PaymentID,
		snap.Status,
		snap.CheckedAt,
		snap.UpdatedAt,
		snap.Raw,
	).Error
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, statuses []domain.Status, createdAfter time.Time) ([]domain.PaymentRequest, error) {
	var items []domain.PaymentRequest
	err := db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("created_at >= ?", createdAfter).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*domain.PaymentRequest, error) {
	var item domain.PaymentRequest
	err := db.WithContext(ctx).
		Where("link_id = ? OR order_id = ?", externalID, externalID).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindSnapshot(ctx context.Context, db *gorm.DB, paymentID string) (*domain.PaymentStatusSnapshot, error) {
	var snap domain.PaymentStatusSnapshot
	err := db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Limit(1).
		Find(&snap).Error
	if err != nil {
		return nil, err
	}
	if snap.PaymentID == "" {
		return nil, nil
	}
	return &snap, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.PaymentRequest, error) {
	var items []domain.PaymentRequest
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, limit, offset int) ([]domain.PaymentRequest, int64, error) {
	query := db.WithContext(ctx).Model(&domain.PaymentRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductType != "" {
		query = query.Where("product_type = ?", filter.ProductType)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.PaymentRequest
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, recentSince time.Time) (*domain.StatsResult, error) {
	result := &domain.StatsResult{}

	if err := db.WithContext(ctx).
		Model(&domain.PaymentRequest{}).
		Count(&result.TotalPayments).Error; err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).
		Model(&domain.PaymentRequest{}).
		Select("status, COUNT(*) AS count, SUM(amount) AS amount").
		Group("status").
		Scan(&result.StatusBreakdown).Error; err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).
		Model(&domain.PaymentRequest{}).
		Select("product_type, COUNT(*) AS count").
		Group("product_type").
		Scan(&result.ProductBreakdown).Error; err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).
		Model(&domain.PaymentRequest{}).
		Where("created_at >= ?", recentSince).
		Count(&result.RecentPayments).Error; err != nil {
		return nil, err
	}

	return result, nil
}
