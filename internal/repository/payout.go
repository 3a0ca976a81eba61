package repository

import (
	"context"

	"onchat/internal/models"

	"gorm.io/gorm"
)

// PayoutRepository defines persistence operations for the payout audit
// trail.
type PayoutRepository interface {
	Create(ctx context.Context, payout *models.Payout) error
	List(ctx context.Context, limit, offset int, recipient string) ([]*models.Payout, error)
}

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository returns a new PayoutRepository implementation.
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	if err := r.db.WithContext(ctx).Create(payout).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns payouts newest first, optionally filtered by recipient.
func (r *payoutRepository) List(ctx context.Context, limit, offset int, recipient string) ([]*models.Payout, error) {
	query := readDB(r.db).WithContext(ctx)
	if recipient != "" {
		query = query.Where("recipient = ?", recipient)
	}

	var payouts []*models.Payout
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payouts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return payouts, nil
}
