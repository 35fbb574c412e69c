package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/repository"
)

// AddressInput is a location descriptor from the client: a free-form
// line plus city, optionally with coordinates (partner locations carry
// them, typed-in addresses usually do not).
type AddressInput struct {
	Line       string
	City       string
	PostalCode *string
	Latitude   *float64
	Longitude  *float64
}

type AddressResolver interface {
	Resolve(ctx context.Context, ownerUID string, in AddressInput) (string, error)
}

type addressResolver struct {
	repo repository.AddressRepository
}

func NewAddressResolver(repo repository.AddressRepository) AddressResolver {
	return &addressResolver{repo: repo}
}

// Resolve returns the id of an existing matching address or inserts a
// new one. An insert failure propagates: a parcel must never be created
// with a dangling address reference.
func (r *addressResolver) Resolve(ctx context.Context, ownerUID string, in AddressInput) (string, error) {
	line := strings.TrimSpace(in.Line)
	city := strings.TrimSpace(in.City)
	if line == "" {
		return "", fmt.Errorf("%w: address line is required", ErrValidation)
	}
	if city == "" {
		return "", fmt.Errorf("%w: city is required", ErrValidation)
	}

	existing, err := r.repo.FindMatch(ctx, ownerUID, line, city)
	if err != nil {
		return "", fmt.Errorf("match address: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	a := &model.Address{
		ID:         uuid.NewString(),
		OwnerUID:   ownerUID,
		Line:       line,
		City:       city,
		PostalCode: in.PostalCode,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
	}
	if err := r.repo.Create(ctx, a); err != nil {
		return "", fmt.Errorf("create address: %w", err)
	}
	return a.ID, nil
}
