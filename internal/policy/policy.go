// Package policy decides which procurement operations an actor may perform.
package policy

import (
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

// Action names an operation guarded by the policy.
type Action string

const (
	ActionList         Action = "list"
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionChangeStatus Action = "change_status"
	ActionExport       Action = "export"
)

// Actor is the authenticated caller, passed explicitly into every service call.
type Actor struct {
	UserID    int64       `json:"id"`
	Name      string      `json:"name"`
	Role      entity.Role `json:"role"`
	VenueName string      `json:"venue_name,omitempty"`
}

// IsSuperAdmin reports whether the actor holds the administrator role.
func (a Actor) IsSuperAdmin() bool { return a.Role == entity.RoleSuperAdmin }

// Rules is the decision surface of one role.
type Rules interface {
	// Allows reports whether action is permitted; record is nil for list, create and export.
	Allows(action Action, record *entity.ProcurementRequest) bool
	// Scope returns the requester id list queries must be restricted to, or nil for no restriction.
	Scope() *int64
}

type superAdminRules struct{}

func (superAdminRules) Allows(Action, *entity.ProcurementRequest) bool { return true }
func (superAdminRules) Scope() *int64                                   { return nil }

type venueUserRules struct {
	userID int64
}

func (r venueUserRules) Allows(action Action, record *entity.ProcurementRequest) bool {
	switch action {
	case ActionList, ActionCreate:
		return true
	case ActionRead, ActionUpdate, ActionDelete, ActionChangeStatus:
		return record != nil && record.RequesterID == r.userID
	default:
		return false
	}
}

func (r venueUserRules) Scope() *int64 {
	id := r.userID
	return &id
}

// denyAll covers actors with an unknown role.
type denyAll struct{}

func (denyAll) Allows(Action, *entity.ProcurementRequest) bool { return false }
func (denyAll) Scope() *int64 {
	none := int64(-1)
	return &none
}

// For returns the rule set matching the actor's role.
func For(actor Actor) Rules {
	switch actor.Role {
	case entity.RoleSuperAdmin:
		return superAdminRules{}
	case entity.RoleVenueUser:
		return venueUserRules{userID: actor.UserID}
	default:
		return denyAll{}
	}
}

// Authorize returns a forbidden error when actor may not perform action on record.
func Authorize(actor Actor, action Action, record *entity.ProcurementRequest) error {
	if For(actor).Allows(action, record) {
		return nil
	}
	return errorbank.Forbidden("unauthorized action",
		errorbank.WithDetail("action", string(action)),
	)
}

// ListScope returns the requester filter list queries must apply for actor.
func ListScope(actor Actor) *int64 {
	return For(actor).Scope()
}
