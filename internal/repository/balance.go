package repository

import (
	"context"
	"errors"

	"onchat/internal/models"

	"gorm.io/gorm"
)

// BalanceRepository defines persistence operations for claimable owner
// balances.
type BalanceRepository interface {
	Get(ctx context.Context, address string) (*models.OwnerBalance, error)
	GetForUpdate(ctx context.Context, address string) (*models.OwnerBalance, error)
	Save(ctx context.Context, balance *models.OwnerBalance) error
}

type balanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository returns a new BalanceRepository implementation.
func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) Get(ctx context.Context, address string) (*models.OwnerBalance, error) {
	var balance models.OwnerBalance
	err := readDB(r.db).WithContext(ctx).Where("address = ?", address).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &balance, nil
}

// GetForUpdate loads the balance row under a row lock so concurrent credits
// and claims serialize. A missing row means the address has never earned.
func (r *balanceRepository) GetForUpdate(ctx context.Context, address string) (*models.OwnerBalance, error) {
	var balance models.OwnerBalance
	err := lockForUpdate(r.db.WithContext(ctx)).Where("address = ?", address).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &balance, nil
}

func (r *balanceRepository) Save(ctx context.Context, balance *models.OwnerBalance) error {
	if err := r.db.WithContext(ctx).Save(balance).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
