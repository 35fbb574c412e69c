package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
)

func newTestQueryService() (ParcelQueryService, *fakeParcelRepo, *fakeAddressRepo) {
	parcels := newFakeParcelRepo()
	addrs := newFakeAddressRepo()
	return NewParcelQueryService(parcels, addrs), parcels, addrs
}

func seedParcel(t *testing.T, repo *fakeParcelRepo, addrs *fakeAddressRepo, i int, uid string, status model.ParcelStatus) *model.Parcel {
	t.Helper()
	addr := &model.Address{ID: fmt.Sprintf("addr-%d", i), OwnerUID: uid, Line: "Bole Road", City: "Addis Ababa"}
	if err := addrs.Create(context.Background(), addr); err != nil {
		t.Fatalf("seed address: %v", err)
	}
	p := &model.Parcel{
		ID:               fmt.Sprintf("parcel-%03d", i),
		TrackingCode:     fmt.Sprintf("MBA-CODE%06d", i),
		SenderUID:        uid,
		PickupAddressID:  addr.ID,
		DropoffAddressID: addr.ID,
		Status:           status,
		Size:             model.ParcelSizeSmall,
		Description:      fmt.Sprintf("package number %d", i),
		PaymentStatus:    model.PaymentStatusPending,
		PaymentMethod:    model.PaymentMethodCash,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed parcel: %v", err)
	}
	return p
}

func TestPaginateLastPageClamp(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	for i := 0; i < 45; i++ {
		seedParcel(t, parcels, addrs, i, "user-1", model.ParcelStatusPending)
	}

	// Page 5 of 45 at size 20 starts past the end; the engine must hand
	// back the last page (indices 40-44), never an empty one.
	res, err := svc.Paginate(context.Background(), "user-1", "all", 5, 20, "created_at", "desc")
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.TotalCount != 45 {
		t.Fatalf("total=%d want=45", res.TotalCount)
	}
	if res.Page != 3 {
		t.Fatalf("page=%d want clamp to 3", res.Page)
	}
	if len(res.Items) != 5 {
		t.Fatalf("items=%d want=5", len(res.Items))
	}
	for i, v := range res.Items {
		want := fmt.Sprintf("parcel-%03d", 40+i)
		if v.Parcel.ID != want {
			t.Fatalf("items[%d]=%s want=%s", i, v.Parcel.ID, want)
		}
	}
}

func TestPaginateEmptyResult(t *testing.T) {
	svc, _, _ := newTestQueryService()

	res, err := svc.Paginate(context.Background(), "user-1", "all", 3, 20, "", "")
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.TotalCount != 0 || len(res.Items) != 0 {
		t.Fatalf("want empty page for empty set, got total=%d items=%d", res.TotalCount, len(res.Items))
	}
}

func TestPaginateStatusFilters(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	statuses := []model.ParcelStatus{
		model.ParcelStatusPending,
		model.ParcelStatusConfirmed,
		model.ParcelStatusPickedUp,
		model.ParcelStatusInTransit,
		model.ParcelStatusDelivered,
		model.ParcelStatusCancelled,
	}
	for i, st := range statuses {
		seedParcel(t, parcels, addrs, i, "user-1", st)
	}

	tests := []struct {
		filter string
		want   int
	}{
		{"all", 6},
		{"active", 4},
		{"delivered", 1},
		{"cancelled", 1},
		{"pending", 1},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			res, err := svc.Paginate(context.Background(), "user-1", tt.filter, 1, 20, "", "")
			if err != nil {
				t.Fatalf("Paginate(%s): %v", tt.filter, err)
			}
			if int(res.TotalCount) != tt.want || len(res.Items) != tt.want {
				t.Fatalf("filter=%s total=%d items=%d want=%d", tt.filter, res.TotalCount, len(res.Items), tt.want)
			}
		})
	}

	if _, err := svc.Paginate(context.Background(), "user-1", "accepted", 1, 20, "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("err=%v want ErrValidation for unknown filter", err)
	}
}

func TestPaginateViewFallback(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	for i := 0; i < 3; i++ {
		seedParcel(t, parcels, addrs, i, "user-1", model.ParcelStatusInTransit)
	}

	// Active filter is served from the view; when the view is down the
	// base table must still answer.
	parcels.failActiveIDs = true
	res, err := svc.Paginate(context.Background(), "user-1", "active", 1, 20, "", "")
	if err != nil {
		t.Fatalf("Paginate with failed view stage: %v", err)
	}
	if res.TotalCount != 3 {
		t.Fatalf("total=%d want=3 via fallback stage", res.TotalCount)
	}

	// Both stages down: degrade to empty, never error.
	parcels.failListIDs = true
	res, err = svc.Paginate(context.Background(), "user-1", "active", 1, 20, "", "")
	if err != nil {
		t.Fatalf("Paginate must absorb read failures: %v", err)
	}
	if res.TotalCount != 0 || len(res.Items) != 0 {
		t.Fatalf("want empty degraded page, got total=%d items=%d", res.TotalCount, len(res.Items))
	}
}

func TestSearchEmptyQueryGuard(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	seedParcel(t, parcels, addrs, 0, "user-1", model.ParcelStatusPending)

	for _, q := range []string{"", "   ", "\t"} {
		got, err := svc.Search(context.Background(), "user-1", q)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(got) != 0 {
			t.Fatalf("Search(%q) returned %d items, want none", q, len(got))
		}
	}
}

func TestSearchMatches(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	p := seedParcel(t, parcels, addrs, 7, "user-1", model.ParcelStatusPending)
	seedParcel(t, parcels, addrs, 8, "user-2", model.ParcelStatusPending)

	// Case-insensitive substring over tracking code.
	got, err := svc.Search(context.Background(), "user-1", "code000007")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Parcel.ID != p.ID {
		t.Fatalf("search by code got %d items", len(got))
	}

	// Substring over description, scoped to the caller's parcels only.
	got, err = svc.Search(context.Background(), "user-1", "package number")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("search must be scoped to owner, got %d items", len(got))
	}
}

func TestStatistics(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	i := 0
	for _, st := range model.ActiveStatuses {
		seedParcel(t, parcels, addrs, i, "user-1", st)
		i++
	}
	for j := 0; j < 3; j++ {
		seedParcel(t, parcels, addrs, i, "user-1", model.ParcelStatusDelivered)
		i++
	}
	seedParcel(t, parcels, addrs, i, "user-1", model.ParcelStatusCancelled)

	stats, err := svc.Statistics(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.Active != 4 || stats.Delivered != 3 || stats.Cancelled != 1 {
		t.Fatalf("stats=%+v want active=4 delivered=3 cancelled=1", stats)
	}
	if stats.Total != stats.Active+stats.Delivered+stats.Cancelled {
		t.Fatalf("total=%d must equal sum of buckets", stats.Total)
	}
}

func TestStatisticsZeroParcels(t *testing.T) {
	svc, _, _ := newTestQueryService()

	stats, err := svc.Statistics(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats != (Statistics{}) {
		t.Fatalf("stats=%+v want all zero", stats)
	}
}

func TestStatisticsDegradesToZero(t *testing.T) {
	svc, parcels, addrs := newTestQueryService()
	seedParcel(t, parcels, addrs, 0, "user-1", model.ParcelStatusDelivered)

	parcels.failActiveIDs = true
	parcels.failListIDs = true
	parcels.failCount = true

	stats, err := svc.Statistics(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Statistics must never hard-fail: %v", err)
	}
	if stats != (Statistics{}) {
		t.Fatalf("stats=%+v want best-effort zeros", stats)
	}
	if stats.Total != stats.Active+stats.Delivered+stats.Cancelled {
		t.Fatal("sum invariant must hold even when degraded")
	}
}
