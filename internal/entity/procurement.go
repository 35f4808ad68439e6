package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the review label attached to a procurement request.
type Status string

const (
	StatusPending  Status = "Tertunda"
	StatusApproved Status = "Disetujui"
	StatusRejected Status = "Ditolak"
	StatusShipped  Status = "Terkirim"
)

// Statuses lists every persisted status value in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusShipped}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusShipped:
		return true
	}
	return false
}

// ProcurementRequest is a venue's request for goods.
type ProcurementRequest struct {
	bun.BaseModel `bun:"table:procurement_requests,alias:pr"`

	ID               int64     `bun:",pk,autoincrement" json:"id"`
	RequesterID      int64     `bun:"requester_id,notnull" json:"requester_id"`
	Requester        *User     `bun:"rel:belongs-to,join:requester_id=id" json:"requester,omitempty"`
	RequestDate      time.Time `bun:"request_date,type:date,notnull" json:"request_date"`
	VenueName        string    `bun:"venue_name,notnull" json:"venue_name"`
	ItemName         string    `bun:"item_name,notnull" json:"item_name"`
	Quantity         int       `bun:"quantity,notnull" json:"quantity"`
	RemainingStock   string    `bun:"remaining_stock,nullzero" json:"remaining_stock,omitempty"`
	UsageDescription string    `bun:"usage_description,notnull" json:"usage_description"`
	RecipientContact string    `bun:"recipient_contact,notnull" json:"recipient_contact"`
	ItemLink         string    `bun:"item_link,nullzero" json:"item_link,omitempty"`
	Note             string    `bun:"note,nullzero" json:"note,omitempty"`
	Description      string    `bun:"description,nullzero" json:"description,omitempty"`
	Status           Status    `bun:"status,notnull,default:'Tertunda'" json:"status"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// RequesterName returns the owning user's display name, or "" when the relation is not loaded.
func (p *ProcurementRequest) RequesterName() string {
	if p == nil || p.Requester == nil {
		return ""
	}
	return p.Requester.Name
}
