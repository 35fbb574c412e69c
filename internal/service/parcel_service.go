package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/repository"
	"github.com/mbet-dev/mbet-adera-backend/internal/trackcode"
	"gorm.io/gorm"
)

// ErrNotFound covers both a genuinely missing parcel and a parcel the
// requester does not own. Keeping the two indistinguishable prevents
// probing for other users' parcel ids.
var ErrNotFound = errors.New("not found")

var ErrValidation = errors.New("validation failed")

// ErrPaymentRecordFailed signals that the parcel was created but its
// companion transaction was not. The parcel is kept; callers surface a
// warning instead of rolling back.
var ErrPaymentRecordFailed = errors.New("payment record failed")

const trackingCodeAttempts = 5

type CreateParcelInput struct {
	SenderUID     string
	ReceiverUID   *string
	Pickup        AddressInput
	Dropoff       AddressInput
	Size          string
	Description   string
	Fragile       bool
	WeightKG      *float64
	PaymentMethod string
	FeeETB        float64
}

type ParcelService interface {
	Create(ctx context.Context, in CreateParcelInput) (*ParcelView, error)
	Get(ctx context.Context, id, uid string) (*ParcelView, error)
	List(ctx context.Context, uid string) ([]ParcelView, error)
	Track(ctx context.Context, code string) (*ParcelView, error)
	Cancel(ctx context.Context, id, uid string) (*ParcelView, error)
	SetStatus(ctx context.Context, id, status string) (*ParcelView, error)
}

type parcelService struct {
	parcelRepo repository.ParcelRepository
	addrRepo   repository.AddressRepository
	txRepo     repository.TransactionRepository
	resolver   AddressResolver
}

func NewParcelService(parcelRepo repository.ParcelRepository, addrRepo repository.AddressRepository, txRepo repository.TransactionRepository, resolver AddressResolver) ParcelService {
	return &parcelService{parcelRepo: parcelRepo, addrRepo: addrRepo, txRepo: txRepo, resolver: resolver}
}

func (s *parcelService) Create(ctx context.Context, in CreateParcelInput) (*ParcelView, error) {
	if in.SenderUID == "" {
		return nil, fmt.Errorf("%w: sender is required", ErrValidation)
	}
	size, ok := model.ParseParcelSize(in.Size)
	if !ok {
		return nil, fmt.Errorf("%w: unknown size %q", ErrValidation, in.Size)
	}
	method, ok := model.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.PaymentMethod)
	}

	pickupID, err := s.resolver.Resolve(ctx, in.SenderUID, in.Pickup)
	if err != nil {
		return nil, fmt.Errorf("resolve pickup: %w", err)
	}
	dropoffID, err := s.resolver.Resolve(ctx, in.SenderUID, in.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("resolve dropoff: %w", err)
	}

	code, err := s.newTrackingCode(ctx)
	if err != nil {
		return nil, err
	}

	fee := in.FeeETB
	if fee <= 0 {
		fee = size.DefaultFee()
	}

	p := &model.Parcel{
		ID:               uuid.NewString(),
		TrackingCode:     code,
		SenderUID:        in.SenderUID,
		ReceiverUID:      in.ReceiverUID,
		PickupAddressID:  pickupID,
		DropoffAddressID: dropoffID,
		Status:           model.ParcelStatusPending,
		Size:             size,
		Description:      in.Description,
		Fragile:          in.Fragile,
		WeightKG:         in.WeightKG,
		FeeETB:           fee,
		PaymentStatus:    model.PaymentStatusPending,
		PaymentMethod:    method,
	}
	if err := s.parcelRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create parcel: %w", err)
	}

	view := hydrateOne(ctx, s.addrRepo, p)

	tx := &model.Transaction{
		ID:            uuid.NewString(),
		ParcelID:      p.ID,
		AmountETB:     fee,
		Status:        model.TransactionStatusPending,
		PaymentMethod: method,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		// The parcel is already durable; do not roll it back.
		return view, fmt.Errorf("%w: %v", ErrPaymentRecordFailed, err)
	}
	return view, nil
}

// newTrackingCode retries on collision; the unique index on
// tracking_code is the final arbiter.
func (s *parcelService) newTrackingCode(ctx context.Context) (string, error) {
	for i := 0; i < trackingCodeAttempts; i++ {
		code, err := trackcode.New()
		if err != nil {
			return "", fmt.Errorf("generate tracking code: %w", err)
		}
		exists, err := s.parcelRepo.ExistsTrackingCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check tracking code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique tracking code")
}

func (s *parcelService) Get(ctx context.Context, id, uid string) (*ParcelView, error) {
	p, err := s.ownedParcel(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return hydrateOne(ctx, s.addrRepo, p), nil
}

func (s *parcelService) List(ctx context.Context, uid string) ([]ParcelView, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	parcels, err := s.parcelRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return hydrateViews(ctx, s.addrRepo, parcels), nil
}

func (s *parcelService) Track(ctx context.Context, code string) (*ParcelView, error) {
	if !trackcode.Valid(code) {
		return nil, ErrNotFound
	}
	p, err := s.parcelRepo.FindByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return hydrateOne(ctx, s.addrRepo, p), nil
}

// Cancel is idempotent refusal: when the parcel is past the cancellable
// window the unchanged parcel comes back with no error. Callers detect
// the refusal from the unchanged status.
func (s *parcelService) Cancel(ctx context.Context, id, uid string) (*ParcelView, error) {
	p, err := s.ownedParcel(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanCancel() {
		return hydrateOne(ctx, s.addrRepo, p), nil
	}
	if err := s.parcelRepo.UpdateStatus(ctx, p.ID, model.ParcelStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel parcel: %w", err)
	}
	p.Status = model.ParcelStatusCancelled
	// Best effort; the refund sweep reconciles stragglers.
	_ = s.txRepo.UpdateStatusByParcel(ctx, p.ID, model.TransactionStatusRefunded)
	return hydrateOne(ctx, s.addrRepo, p), nil
}

// SetStatus is the operator path and is intentionally unguarded apart
// from rejecting unknown status values. Courier and dispatch tooling
// depend on being able to set any status directly.
func (s *parcelService) SetStatus(ctx context.Context, id, status string) (*ParcelView, error) {
	st, ok := model.ParseParcelStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	p, err := s.parcelRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.parcelRepo.UpdateStatus(ctx, p.ID, st); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	p.Status = st
	return hydrateOne(ctx, s.addrRepo, p), nil
}

func (s *parcelService) ownedParcel(ctx context.Context, id, uid string) (*model.Parcel, error) {
	p, err := s.parcelRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uid != p.SenderUID && (p.ReceiverUID == nil || uid != *p.ReceiverUID) {
		return nil, ErrNotFound
	}
	return p, nil
}
