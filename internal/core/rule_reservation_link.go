package core

import (
	"context"

	"innkeeper/pkg/domain"
)

// NewReservationLinkRule returns the rule requiring every stored reservation
// to name both a customer and a hotel.
func NewReservationLinkRule() domain.Rule {
	return reservationLinkRule{}
}

type reservationLinkRule struct{}

func (reservationLinkRule) Name() string { return "reservation_link" }

func (r reservationLinkRule) Evaluate(_ context.Context, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		reservation, ok := change.After.(domain.Reservation)
		if !ok {
			continue
		}
		if reservation.CustomerID == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  "reservation " + reservation.ID + " has no customer",
				Entity:   domain.EntityReservation,
				EntityID: reservation.ID,
			})
		}
		if reservation.HotelID == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  "reservation " + reservation.ID + " has no hotel",
				Entity:   domain.EntityReservation,
				EntityID: reservation.ID,
			})
		}
	}
	return res, nil
}
