package procurement

import (
	"strings"
	"time"

	"github.com/Additional-Code/procura/internal/entity"
)

// CreateInput carries the fields a caller may supply when raising a request.
// Status is accepted for validation only; new requests always start as Tertunda.
type CreateInput struct {
	RequestDate      string `json:"request_date" validate:"required,datetime=2006-01-02"`
	VenueName        string `json:"venue_name" validate:"required,venue"`
	ItemName         string `json:"item_name" validate:"required,max=255"`
	Quantity         *int   `json:"quantity" validate:"required,min=1"`
	RemainingStock   string `json:"remaining_stock" validate:"max=255"`
	UsageDescription string `json:"usage_description" validate:"required"`
	RecipientContact string `json:"recipient_contact" validate:"required,max=255"`
	ItemLink         string `json:"item_link" validate:"omitempty,url,max=500"`
	Note             string `json:"note"`
	Description      string `json:"description"`
	Status           string `json:"status" validate:"omitempty,status"`
}

func (in *CreateInput) normalize() {
	in.RequestDate = strings.TrimSpace(in.RequestDate)
	in.VenueName = strings.TrimSpace(in.VenueName)
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.RemainingStock = strings.TrimSpace(in.RemainingStock)
	in.UsageDescription = strings.TrimSpace(in.UsageDescription)
	in.RecipientContact = strings.TrimSpace(in.RecipientContact)
	in.ItemLink = strings.TrimSpace(in.ItemLink)
	in.Note = strings.TrimSpace(in.Note)
	in.Description = strings.TrimSpace(in.Description)
	in.Status = strings.TrimSpace(in.Status)
}

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	RequestDate      *string `json:"request_date" validate:"omitempty,datetime=2006-01-02"`
	VenueName        *string `json:"venue_name" validate:"omitempty,venue"`
	ItemName         *string `json:"item_name" validate:"omitempty,max=255"`
	Quantity         *int    `json:"quantity" validate:"omitempty,min=1"`
	RemainingStock   *string `json:"remaining_stock" validate:"omitempty,max=255"`
	UsageDescription *string `json:"usage_description"`
	RecipientContact *string `json:"recipient_contact" validate:"omitempty,max=255"`
	ItemLink         *string `json:"item_link" validate:"omitempty,url,max=500"`
	Note             *string `json:"note"`
	Description      *string `json:"description"`
	Status           *string `json:"status" validate:"omitempty,status"`
}

func (in *UpdateInput) normalize() {
	for _, p := range []*string{
		in.RequestDate, in.VenueName, in.ItemName, in.RemainingStock, in.UsageDescription,
		in.RecipientContact, in.ItemLink, in.Note, in.Description, in.Status,
	} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// requiredCleared lists required fields the update tries to blank out.
func (in *UpdateInput) requiredCleared() map[string]string {
	fields := map[string]string{}
	check := func(name string, p *string) {
		if p != nil && *p == "" {
			fields[name] = name + " is required"
		}
	}
	check("request_date", in.RequestDate)
	check("venue_name", in.VenueName)
	check("item_name", in.ItemName)
	check("usage_description", in.UsageDescription)
	check("recipient_contact", in.RecipientContact)
	if in.Quantity != nil && *in.Quantity < 1 {
		fields["quantity"] = "quantity must be at least 1"
	}
	return fields
}

func (in *UpdateInput) apply(req *entity.ProcurementRequest) {
	if in.RequestDate != nil {
		req.RequestDate, _ = time.Parse(dateLayout, *in.RequestDate)
	}
	if in.VenueName != nil {
		req.VenueName = *in.VenueName
	}
	if in.ItemName != nil {
		req.ItemName = *in.ItemName
	}
	if in.Quantity != nil {
		req.Quantity = *in.Quantity
	}
	if in.RemainingStock != nil {
		req.RemainingStock = *in.RemainingStock
	}
	if in.UsageDescription != nil {
		req.UsageDescription = *in.UsageDescription
	}
	if in.RecipientContact != nil {
		req.RecipientContact = *in.RecipientContact
	}
	if in.ItemLink != nil {
		req.ItemLink = *in.ItemLink
	}
	if in.Note != nil {
		req.Note = *in.Note
	}
	if in.Description != nil {
		req.Description = *in.Description
	}
	if in.Status != nil {
		req.Status = entity.Status(*in.Status)
	}
}

// ListFilter holds the optional equality filters and page number of a list call.
type ListFilter struct {
	VenueName string
	Status    string
	Page      int
}

// ListResult is one page of requests.
type ListResult struct {
	Items    []entity.ProcurementRequest
	Total    int
	Page     int
	PerPage  int
	LastPage int
}
