package repository

import (
	"context"
	"errors"

	"onchat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateRepository defines persistence operations for the singleton ledger
// state row.
type StateRepository interface {
	Get(ctx context.Context) (*models.LedgerState, error)
	GetForUpdate(ctx context.Context) (*models.LedgerState, error)
	Save(ctx context.Context, state *models.LedgerState) error
	Seed(ctx context.Context, state *models.LedgerState) error
}

type stateRepository struct {
	db *gorm.DB
}

// NewStateRepository returns a new StateRepository implementation.
func NewStateRepository(db *gorm.DB) StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) Get(ctx context.Context) (*models.LedgerState, error) {
	var state models.LedgerState
	err := r.db.WithContext(ctx).First(&state, models.LedgerStateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &state, nil
}

// GetForUpdate locks the state row. Fee collection and treasury mutation
// run under this lock.
func (r *stateRepository) GetForUpdate(ctx context.Context) (*models.LedgerState, error) {
	var state models.LedgerState
	err := lockForUpdate(r.db.WithContext(ctx)).First(&state, models.LedgerStateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &state, nil
}

func (r *stateRepository) Save(ctx context.Context, state *models.LedgerState) error {
	if err := r.db.WithContext(ctx).Save(state).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Seed inserts the initial state row if none exists yet. An existing row is
// left untouched so restarts never clobber admin changes.
func (r *stateRepository) Seed(ctx context.Context, state *models.LedgerState) error {
	state.ID = models.LedgerStateID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(state).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
