package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type ParcelRepository interface {
	Create(ctx context.Context, p *model.Parcel) error
	FindByID(ctx context.Context, id string) (*model.Parcel, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Parcel, error)
	FindByTrackingCode(ctx context.Context, code string) (*model.Parcel, error)
	ListBySender(ctx context.Context, senderUID string) ([]model.Parcel, error)
	ListByUser(ctx context.Context, uid string) ([]model.Parcel, error)
	ListIDsByUser(ctx context.Context, uid string, statuses []model.ParcelStatus, sortBy, sortDir string) ([]string, error)
	ActiveIDsByUser(ctx context.Context, uid string, sortBy, sortDir string) ([]string, error)
	CountByUserAndStatuses(ctx context.Context, uid string, statuses []model.ParcelStatus) (int64, error)
	ExistsTrackingCode(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, p *model.Parcel) error
	UpdateStatus(ctx context.Context, id string, status model.ParcelStatus) error
	SearchByUser(ctx context.Context, uid, query string) ([]model.Parcel, error)
	SetDB(db *gorm.DB)
}

type parcelRepository struct {
	db *gorm.DB
}

func NewParcelRepository(db *gorm.DB) ParcelRepository {
	return &parcelRepository{db: db}
}

// sortColumns whitelists caller-supplied sort keys before they reach SQL.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
}

func orderClause(sortBy, sortDir string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func (r *parcelRepository) Create(ctx context.Context, p *model.Parcel) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *parcelRepository) FindByID(ctx context.Context, id string) (*model.Parcel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Parcel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *parcelRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Parcel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(ids) == 0 {
		return []model.Parcel{}, nil
	}
	var list []model.Parcel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *parcelRepository) FindByTrackingCode(ctx context.Context, code string) (*model.Parcel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Parcel
	if err := r.db.WithContext(ctx).Where("tracking_code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *parcelRepository) ListBySender(ctx context.Context, senderUID string) ([]model.Parcel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Parcel
	if err := r.db.WithContext(ctx).
		Where("sender_uid = ?", senderUID).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *parcelRepository) ListByUser(ctx context.Context, uid string) ([]model.Parcel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Parcel
	if err := r.db.WithContext(ctx).
		Where("sender_uid = ? OR receiver_uid = ?", uid, uid).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *parcelRepository) ListIDsByUser(ctx context.Context, uid string, statuses []model.ParcelStatus, sortBy, sortDir string) ([]string, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Parcel{}).
		Where("sender_uid = ? OR receiver_uid = ?", uid, uid)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var ids []string
	if err := q.Order(orderClause(sortBy, sortDir)).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ActiveIDsByUser reads the active_deliveries view, the aggregated read
// model the dashboard is served from. Callers fall back to ListIDsByUser
// when the view is unavailable.
func (r *parcelRepository) ActiveIDsByUser(ctx context.Context, uid string, sortBy, sortDir string) ([]string, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ids []string
	sql := fmt.Sprintf(
		"SELECT id FROM active_deliveries WHERE sender_uid = ? OR receiver_uid = ? ORDER BY %s",
		orderClause(sortBy, sortDir),
	)
	if err := r.db.WithContext(ctx).Raw(sql, uid, uid).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *parcelRepository) CountByUserAndStatuses(ctx context.Context, uid string, statuses []model.ParcelStatus) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Parcel{}).
		Where("sender_uid = ? OR receiver_uid = ?", uid, uid)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *parcelRepository) ExistsTrackingCode(ctx context.Context, code string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Parcel{}).
		Where("tracking_code = ?", code).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *parcelRepository) Update(ctx context.Context, p *model.Parcel) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *parcelRepository) UpdateStatus(ctx context.Context, id string, status model.ParcelStatus) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).Model(&model.Parcel{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *parcelRepository) SearchByUser(ctx context.Context, uid, query string) ([]model.Parcel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	pattern := "%" + strings.ToLower(query) + "%"
	var list []model.Parcel
	if err := r.db.WithContext(ctx).
		Where("(sender_uid = ? OR receiver_uid = ?)", uid, uid).
		Where("(LOWER(tracking_code) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *parcelRepository) SetDB(db *gorm.DB) {
	r.db = db
}
