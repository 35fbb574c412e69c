package service

import (
	"context"
	"sync"
	"time"

	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ParcelView is a parcel with its address relations resolved. Either
// address may be nil when resolution fails; consumers render the field
// as absent instead of failing the whole record.
type ParcelView struct {
	Parcel            model.Parcel
	Pickup            *model.Address
	Dropoff           *model.Address
	EstimatedDelivery time.Time
}

// addressFetchLimit caps concurrent address lookups during hydration.
// Store protection, not a correctness requirement.
const addressFetchLimit = 5

func hydrateViews(ctx context.Context, addrRepo repository.AddressRepository, parcels []model.Parcel) []ParcelView {
	idSet := make(map[string]bool)
	for i := range parcels {
		idSet[parcels[i].PickupAddressID] = true
		idSet[parcels[i].DropoffAddressID] = true
	}

	var mu sync.Mutex
	found := make(map[string]*model.Address, len(idSet))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(addressFetchLimit)
	for id := range idSet {
		if id == "" {
			continue
		}
		id := id
		g.Go(func() error {
			a, err := addrRepo.FindByID(gctx, id)
			if err != nil {
				// Missing or unreadable address: leave the view field nil.
				return nil
			}
			mu.Lock()
			found[id] = a
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	views := make([]ParcelView, 0, len(parcels))
	for i := range parcels {
		views = append(views, ParcelView{
			Parcel:            parcels[i],
			Pickup:            found[parcels[i].PickupAddressID],
			Dropoff:           found[parcels[i].DropoffAddressID],
			EstimatedDelivery: parcels[i].EstimatedDelivery(),
		})
	}
	return views
}

func hydrateOne(ctx context.Context, addrRepo repository.AddressRepository, p *model.Parcel) *ParcelView {
	views := hydrateViews(ctx, addrRepo, []model.Parcel{*p})
	return &views[0]
}
