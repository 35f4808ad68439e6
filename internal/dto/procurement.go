package dto

import (
	"time"

	"github.com/Additional-Code/procura/internal/entity"
)

// ProcurementResponse represents a procurement request as exposed via transport layers.
type ProcurementResponse struct {
	ID               int64     `json:"id"`
	RequesterID      int64     `json:"requester_id"`
	RequesterName    string    `json:"requester_name"`
	RequestDate      string    `json:"request_date"`
	VenueName        string    `json:"venue_name"`
	ItemName         string    `json:"item_name"`
	Quantity         int       `json:"quantity"`
	RemainingStock   string    `json:"remaining_stock"`
	UsageDescription string    `json:"usage_description"`
	RecipientContact string    `json:"recipient_contact"`
	ItemLink         string    `json:"item_link"`
	Note             string    `json:"note"`
	Description      string    `json:"description"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewProcurementResponse maps an entity onto its wire shape.
func NewProcurementResponse(req *entity.ProcurementRequest) ProcurementResponse {
	return ProcurementResponse{
		ID:               req.ID,
		RequesterID:      req.RequesterID,
		RequesterName:    req.RequesterName(),
		RequestDate:      req.RequestDate.Format("2006-01-02"),
		VenueName:        req.VenueName,
		ItemName:         req.ItemName,
		Quantity:         req.Quantity,
		RemainingStock:   req.RemainingStock,
		UsageDescription: req.UsageDescription,
		RecipientContact: req.RecipientContact,
		ItemLink:         req.ItemLink,
		Note:             req.Note,
		Description:      req.Description,
		Status:           string(req.Status),
		CreatedAt:        req.CreatedAt,
		UpdatedAt:        req.UpdatedAt,
	}
}

// NewProcurementList maps a slice of entities.
func NewProcurementList(reqs []entity.ProcurementRequest) []ProcurementResponse {
	out := make([]ProcurementResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, NewProcurementResponse(&reqs[i]))
	}
	return out
}

// ProcurementOptions lists the values form fields may take.
type ProcurementOptions struct {
	Venues   []string `json:"venues"`
	Statuses []string `json:"statuses"`
}

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StatusRequest carries the target status of a status change.
type StatusRequest struct {
	Status string `json:"status"`
}
