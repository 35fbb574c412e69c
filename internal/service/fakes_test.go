package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"gorm.io/gorm"
)

var errFakeDown = errors.New("store unavailable")

type fakeParcelRepo struct {
	order   []string
	parcels map[string]*model.Parcel

	failCreate     bool
	failFind       bool
	failListIDs    bool
	failActiveIDs  bool
	failCount      bool
	codeTaken      bool
	failUpdateStat bool
}

func newFakeParcelRepo() *fakeParcelRepo {
	return &fakeParcelRepo{parcels: map[string]*model.Parcel{}}
}

func (f *fakeParcelRepo) Create(_ context.Context, p *model.Parcel) error {
	if f.failCreate {
		return errFakeDown
	}
	cp := *p
	f.parcels[p.ID] = &cp
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeParcelRepo) FindByID(_ context.Context, id string) (*model.Parcel, error) {
	if f.failFind {
		return nil, errFakeDown
	}
	p, ok := f.parcels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeParcelRepo) FindByIDs(_ context.Context, ids []string) ([]model.Parcel, error) {
	out := []model.Parcel{}
	for _, id := range ids {
		if p, ok := f.parcels[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParcelRepo) FindByTrackingCode(_ context.Context, code string) (*model.Parcel, error) {
	for _, id := range f.order {
		if f.parcels[id].TrackingCode == code {
			cp := *f.parcels[id]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeParcelRepo) ListBySender(_ context.Context, senderUID string) ([]model.Parcel, error) {
	out := []model.Parcel{}
	for _, id := range f.order {
		if f.parcels[id].SenderUID == senderUID {
			out = append(out, *f.parcels[id])
		}
	}
	return out, nil
}

func (f *fakeParcelRepo) ListByUser(_ context.Context, uid string) ([]model.Parcel, error) {
	out := []model.Parcel{}
	for _, id := range f.order {
		if f.owned(id, uid) {
			out = append(out, *f.parcels[id])
		}
	}
	return out, nil
}

func (f *fakeParcelRepo) ListIDsByUser(_ context.Context, uid string, statuses []model.ParcelStatus, _, _ string) ([]string, error) {
	if f.failListIDs {
		return nil, errFakeDown
	}
	var ids []string
	for _, id := range f.order {
		if !f.owned(id, uid) {
			continue
		}
		if len(statuses) > 0 && !statusIn(f.parcels[id].Status, statuses) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeParcelRepo) ActiveIDsByUser(_ context.Context, uid string, _, _ string) ([]string, error) {
	if f.failActiveIDs {
		return nil, errFakeDown
	}
	var ids []string
	for _, id := range f.order {
		if f.owned(id, uid) && f.parcels[id].Status.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeParcelRepo) CountByUserAndStatuses(_ context.Context, uid string, statuses []model.ParcelStatus) (int64, error) {
	if f.failCount {
		return 0, errFakeDown
	}
	var cnt int64
	for _, id := range f.order {
		if f.owned(id, uid) && (len(statuses) == 0 || statusIn(f.parcels[id].Status, statuses)) {
			cnt++
		}
	}
	return cnt, nil
}

func (f *fakeParcelRepo) ExistsTrackingCode(_ context.Context, code string) (bool, error) {
	if f.codeTaken {
		return true, nil
	}
	for _, id := range f.order {
		if f.parcels[id].TrackingCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeParcelRepo) Update(_ context.Context, p *model.Parcel) error {
	cp := *p
	f.parcels[p.ID] = &cp
	return nil
}

func (f *fakeParcelRepo) UpdateStatus(_ context.Context, id string, status model.ParcelStatus) error {
	if f.failUpdateStat {
		return errFakeDown
	}
	p, ok := f.parcels[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeParcelRepo) SearchByUser(_ context.Context, uid, query string) ([]model.Parcel, error) {
	q := strings.ToLower(query)
	out := []model.Parcel{}
	for _, id := range f.order {
		p := f.parcels[id]
		if !f.owned(id, uid) {
			continue
		}
		if strings.Contains(strings.ToLower(p.TrackingCode), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParcelRepo) SetDB(*gorm.DB) {}

func (f *fakeParcelRepo) owned(id, uid string) bool {
	p := f.parcels[id]
	return p.SenderUID == uid || (p.ReceiverUID != nil && *p.ReceiverUID == uid)
}

func statusIn(s model.ParcelStatus, set []model.ParcelStatus) bool {
	for _, st := range set {
		if s == st {
			return true
		}
	}
	return false
}

type fakeAddressRepo struct {
	addrs map[string]*model.Address

	failCreate bool
	failFind   bool
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addrs: map[string]*model.Address{}}
}

func (f *fakeAddressRepo) Create(_ context.Context, a *model.Address) error {
	if f.failCreate {
		return errFakeDown
	}
	cp := *a
	f.addrs[a.ID] = &cp
	return nil
}

func (f *fakeAddressRepo) FindByID(_ context.Context, id string) (*model.Address, error) {
	if f.failFind {
		return nil, errFakeDown
	}
	a, ok := f.addrs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddressRepo) FindByIDs(_ context.Context, ids []string) ([]model.Address, error) {
	out := []model.Address{}
	for _, id := range ids {
		if a, ok := f.addrs[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAddressRepo) FindMatch(_ context.Context, ownerUID, line, city string) (*model.Address, error) {
	for _, a := range f.addrs {
		if a.OwnerUID == ownerUID && a.Line == line && a.City == city {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAddressRepo) SetDB(*gorm.DB) {}

type fakeTransactionRepo struct {
	byParcel map[string]*model.Transaction

	failCreate bool
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byParcel: map[string]*model.Transaction{}}
}

func (f *fakeTransactionRepo) Create(_ context.Context, t *model.Transaction) error {
	if f.failCreate {
		return errFakeDown
	}
	cp := *t
	f.byParcel[t.ParcelID] = &cp
	return nil
}

func (f *fakeTransactionRepo) FindByParcel(_ context.Context, parcelID string) (*model.Transaction, error) {
	t, ok := f.byParcel[parcelID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTransactionRepo) UpdateStatusByParcel(_ context.Context, parcelID string, status model.TransactionStatus) error {
	if t, ok := f.byParcel[parcelID]; ok {
		t.Status = status
	}
	return nil
}

func (f *fakeTransactionRepo) SetDB(*gorm.DB) {}
