// Package domain defines the persistent records, error kinds, and rule
// evaluation primitives used by innkeeper.
package domain

// EntityType identifies the type of record stored by a registry.
type EntityType string

// Supported entity type identifiers used in Change records and error reporting.
const (
	// EntityHotel identifies a hotel record.
	EntityHotel EntityType = "hotel"
	// EntityCustomer identifies a customer record.
	EntityCustomer EntityType = "customer"
	// EntityReservation identifies a reservation record.
	EntityReservation EntityType = "reservation"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks the document write.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows the write.
	SeverityWarn Severity = "warn"
	// SeverityLog records an informational notice.
	SeverityLog Severity = "log"
)

// Hotel is a lodging with a room inventory. ID is the document key and is not
// part of the encoded record.
type Hotel struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Rooms    int    `json:"rooms"`
	// Capacity bounds Rooms from above. Zero means unbounded, which is how
	// records written without the field decode.
	Capacity int `json:"capacity,omitempty"`
}

// HasCapacityBound reports whether the hotel enforces an upper bound on rooms.
func (h Hotel) HasCapacityBound() bool { return h.Capacity > 0 }

// HotelPatch carries optional replacements for hotel fields. Nil fields are
// left unchanged.
type HotelPatch struct {
	Name     *string
	Location *string
	Rooms    *int
}

// Apply overwrites the fields present in the patch. Setting rooms on an
// unbounded hotel bounds it at the new count, and raising rooms above the
// capacity raises the capacity with it.
func (p HotelPatch) Apply(h *Hotel) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Location != nil {
		h.Location = *p.Location
	}
	if p.Rooms != nil {
		h.Rooms = *p.Rooms
		if !h.HasCapacityBound() || h.Rooms > h.Capacity {
			h.Capacity = h.Rooms
		}
	}
}

// Customer is a guest that may hold reservations.
type Customer struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomerPatch carries optional replacements for customer fields.
type CustomerPatch struct {
	Name  *string
	Email *string
}

// Apply overwrites the fields present in the patch.
func (p CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
}

// Reservation holds one room at a hotel on behalf of a customer.
type Reservation struct {
	ID         string `json:"-"`
	CustomerID string `json:"customer_id"`
	HotelID    string `json:"hotel_id"`
}

// Change describes a mutation applied to a record during a unit of work.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Blocking returns only the violations that block a write.
func (r Result) Blocking() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	blocking := e.Result.Blocking()
	if len(blocking) == 0 {
		return "write blocked by rules"
	}
	return "write blocked by rules: " + blocking[0].Message
}
