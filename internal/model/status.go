package model

type ParcelStatus string

const (
	ParcelStatusPending   ParcelStatus = "pending"
	ParcelStatusConfirmed ParcelStatus = "confirmed"
	ParcelStatusPickedUp  ParcelStatus = "picked_up"
	ParcelStatusInTransit ParcelStatus = "in_transit"
	ParcelStatusDelivered ParcelStatus = "delivered"
	ParcelStatusCancelled ParcelStatus = "cancelled"
)

// ActiveStatuses is the single authoritative definition of "active":
// every status a parcel can hold before it reaches a terminal state.
// Both the pagination filter and the statistics aggregator read this
// slice so the two can never disagree.
var ActiveStatuses = []ParcelStatus{
	ParcelStatusPending,
	ParcelStatusConfirmed,
	ParcelStatusPickedUp,
	ParcelStatusInTransit,
}

func ParseParcelStatus(s string) (ParcelStatus, bool) {
	switch ParcelStatus(s) {
	case ParcelStatusPending, ParcelStatusConfirmed, ParcelStatusPickedUp,
		ParcelStatusInTransit, ParcelStatusDelivered, ParcelStatusCancelled:
		return ParcelStatus(s), true
	}
	return "", false
}

func (s ParcelStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// CanCancel reports whether a sender may still cancel the parcel.
// Once a courier has it (picked_up onwards) cancellation is refused.
func (s ParcelStatus) CanCancel() bool {
	return s == ParcelStatusPending || s == ParcelStatusConfirmed
}

func (s ParcelStatus) IsTerminal() bool {
	return s == ParcelStatusDelivered || s == ParcelStatusCancelled
}
