package repository

import (
	"context"
	"errors"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(ctx context.Context, a *model.Address) error
	FindByID(ctx context.Context, id string) (*model.Address, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Address, error)
	FindMatch(ctx context.Context, ownerUID, line, city string) (*model.Address, error)
	SetDB(db *gorm.DB)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *addressRepository) FindByID(ctx context.Context, id string) (*model.Address, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var a model.Address
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Address, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(ids) == 0 {
		return []model.Address{}, nil
	}
	var list []model.Address
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindMatch returns nil, nil when no address matches; callers then insert
// a fresh row.
func (r *addressRepository) FindMatch(ctx context.Context, ownerUID, line, city string) (*model.Address, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var a model.Address
	err := r.db.WithContext(ctx).
		Where("owner_uid = ? AND line = ? AND city = ?", ownerUID, line, city).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) SetDB(db *gorm.DB) {
	r.db = db
}
