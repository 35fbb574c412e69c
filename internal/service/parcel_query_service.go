package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/repository"
)

const (
	StatusFilterAll    = "all"
	StatusFilterActive = "active"

	defaultPageSize = 20
	maxPageSize     = 100
)

type PageResult struct {
	Items      []ParcelView
	TotalCount int64
	Page       int
	PageSize   int
}

type Statistics struct {
	Total     int64
	Active    int64
	Delivered int64
	Cancelled int64
}

type ParcelQueryService interface {
	Paginate(ctx context.Context, uid, statusFilter string, page, pageSize int, sortBy, sortDir string) (*PageResult, error)
	Search(ctx context.Context, uid, query string) ([]ParcelView, error)
	Statistics(ctx context.Context, uid string) (Statistics, error)
}

type parcelQueryService struct {
	parcelRepo repository.ParcelRepository
	addrRepo   repository.AddressRepository
}

func NewParcelQueryService(parcelRepo repository.ParcelRepository, addrRepo repository.AddressRepository) ParcelQueryService {
	return &parcelQueryService{parcelRepo: parcelRepo, addrRepo: addrRepo}
}

// resolveFilter maps a caller filter to a status set. nil means no
// status predicate.
func resolveFilter(filter string) ([]model.ParcelStatus, error) {
	switch filter {
	case "", StatusFilterAll:
		return nil, nil
	case StatusFilterActive:
		return model.ActiveStatuses, nil
	}
	st, ok := model.ParseParcelStatus(filter)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status filter %q", ErrValidation, filter)
	}
	return []model.ParcelStatus{st}, nil
}

// idStage is one step of the ordered fallback pipeline that replaced the
// nested catch-and-retry chains: try the aggregated view, then the base
// table, then give up with an empty result. Every stage outcome is
// logged so degraded reads are visible in ops.
type idStage struct {
	name  string
	fetch func(ctx context.Context) ([]string, error)
}

func (s *parcelQueryService) fetchIDs(ctx context.Context, uid string, statuses []model.ParcelStatus, sortBy, sortDir string) []string {
	viewStage := idStage{
		name: "active_deliveries view",
		fetch: func(ctx context.Context) ([]string, error) {
			return s.parcelRepo.ActiveIDsByUser(ctx, uid, sortBy, sortDir)
		},
	}
	tableStage := idStage{
		name: "parcels table",
		fetch: func(ctx context.Context) ([]string, error) {
			return s.parcelRepo.ListIDsByUser(ctx, uid, statuses, sortBy, sortDir)
		},
	}

	var stages []idStage
	switch {
	case statuses == nil:
		// "all" prefers the base table; when that fails the active view
		// still gives the user something useful.
		stages = []idStage{tableStage, viewStage}
	case isActiveSet(statuses):
		stages = []idStage{viewStage, tableStage}
	default:
		stages = []idStage{tableStage}
	}

	for _, st := range stages {
		ids, err := st.fetch(ctx)
		if err != nil {
			log.Printf("parcel feed: stage %q failed: %v", st.name, err)
			continue
		}
		return ids
	}
	log.Printf("parcel feed: all stages failed for user %s; returning empty set", uid)
	return nil
}

func isActiveSet(statuses []model.ParcelStatus) bool {
	if len(statuses) != len(model.ActiveStatuses) {
		return false
	}
	for i, st := range statuses {
		if st != model.ActiveStatuses[i] {
			return false
		}
	}
	return true
}

func (s *parcelQueryService) Paginate(ctx context.Context, uid, statusFilter string, page, pageSize int, sortBy, sortDir string) (*PageResult, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	statuses, err := resolveFilter(statusFilter)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	// Snapshot the full matching id set first; the window is computed
	// against this snapshot so mid-request writes cannot shift it.
	ids := s.fetchIDs(ctx, uid, statuses, sortBy, sortDir)
	total := len(ids)
	if total == 0 {
		return &PageResult{Items: []ParcelView{}, TotalCount: 0, Page: 1, PageSize: pageSize}, nil
	}

	// Requests past the end land on the last non-empty page, never an
	// empty one. Deliberate UX: a shrinking list keeps showing results.
	lastPage := (total + pageSize - 1) / pageSize
	if page > lastPage {
		page = lastPage
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	window := ids[start:end]
	parcels, err := s.parcelRepo.FindByIDs(ctx, window)
	if err != nil {
		log.Printf("parcel feed: hydrate window failed for user %s: %v", uid, err)
		return &PageResult{Items: []ParcelView{}, TotalCount: int64(total), Page: page, PageSize: pageSize}, nil
	}

	// FindByIDs gives no ordering guarantee; restore the snapshot order.
	byID := make(map[string]model.Parcel, len(parcels))
	for i := range parcels {
		byID[parcels[i].ID] = parcels[i]
	}
	ordered := make([]model.Parcel, 0, len(window))
	for _, id := range window {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return &PageResult{
		Items:      hydrateViews(ctx, s.addrRepo, ordered),
		TotalCount: int64(total),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *parcelQueryService) Search(ctx context.Context, uid, query string) ([]ParcelView, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	// An empty search box must not become a full scan.
	query = strings.TrimSpace(query)
	if query == "" {
		return []ParcelView{}, nil
	}
	parcels, err := s.parcelRepo.SearchByUser(ctx, uid, query)
	if err != nil {
		return nil, err
	}
	return hydrateViews(ctx, s.addrRepo, parcels), nil
}

// Statistics never fails: each bucket degrades to zero on error so the
// dashboard always renders. Total is the sum of the three buckets, not
// an independent count.
func (s *parcelQueryService) Statistics(ctx context.Context, uid string) (Statistics, error) {
	if uid == "" {
		return Statistics{}, fmt.Errorf("%w: user is required", ErrValidation)
	}

	active := int64(len(s.fetchIDs(ctx, uid, model.ActiveStatuses, "", "")))

	delivered, err := s.parcelRepo.CountByUserAndStatuses(ctx, uid, []model.ParcelStatus{model.ParcelStatusDelivered})
	if err != nil {
		log.Printf("statistics: delivered count failed for user %s: %v", uid, err)
		delivered = 0
	}
	cancelled, err := s.parcelRepo.CountByUserAndStatuses(ctx, uid, []model.ParcelStatus{model.ParcelStatusCancelled})
	if err != nil {
		log.Printf("statistics: cancelled count failed for user %s: %v", uid, err)
		cancelled = 0
	}

	return Statistics{
		Total:     active + delivered + cancelled,
		Active:    active,
		Delivered: delivered,
		Cancelled: cancelled,
	}, nil
}
