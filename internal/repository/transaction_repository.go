package repository

import (
	"context"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	FindByParcel(ctx context.Context, parcelID string) (*model.Transaction, error)
	UpdateStatusByParcel(ctx context.Context, parcelID string, status model.TransactionStatus) error
	SetDB(db *gorm.DB)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transactionRepository) FindByParcel(ctx context.Context, parcelID string) (*model.Transaction, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var t model.Transaction
	if err := r.db.WithContext(ctx).
		Where("parcel_id = ?", parcelID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) UpdateStatusByParcel(ctx context.Context, parcelID string, status model.TransactionStatus) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("parcel_id = ?", parcelID).
		Update("status", status).Error
}

func (r *transactionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
