package core

import (
	"context"
	"fmt"

	"innkeeper/pkg/domain"
)

// NewRoomInventoryRule returns the rule keeping hotel room counts within
// [0, capacity].
func NewRoomInventoryRule() domain.Rule {
	return roomInventoryRule{}
}

type roomInventoryRule struct{}

func (roomInventoryRule) Name() string { return "room_inventory" }

func (r roomInventoryRule) Evaluate(_ context.Context, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		hotel, ok := change.After.(domain.Hotel)
		if !ok {
			continue
		}
		switch {
		case hotel.Rooms < 0:
			res.Violations = append(res.Violations, r.violation(hotel,
				fmt.Sprintf("hotel %s has negative room count %d", hotel.ID, hotel.Rooms)))
		case hotel.Capacity < 0:
			res.Violations = append(res.Violations, r.violation(hotel,
				fmt.Sprintf("hotel %s has negative capacity %d", hotel.ID, hotel.Capacity)))
		case hotel.HasCapacityBound() && hotel.Rooms > hotel.Capacity:
			res.Violations = append(res.Violations, r.violation(hotel,
				fmt.Sprintf("hotel %s over capacity: %d/%d rooms", hotel.ID, hotel.Rooms, hotel.Capacity)))
		default:
			if before, ok := change.Before.(domain.Hotel); ok && before.Rooms > 0 && hotel.Rooms == 0 {
				v := r.violation(hotel, fmt.Sprintf("hotel %s is fully booked", hotel.ID))
				v.Severity = domain.SeverityLog
				res.Violations = append(res.Violations, v)
			}
		}
	}
	return res, nil
}

func (r roomInventoryRule) violation(hotel domain.Hotel, msg string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   domain.EntityHotel,
		EntityID: hotel.ID,
	}
}
