package core

import "innkeeper/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRoomInventoryRule())
	engine.Register(NewReservationLinkRule())
	return engine
}
