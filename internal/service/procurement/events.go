package procurement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/procura/internal/entity"
)

// EventType names a lifecycle transition published to the message bus.
type EventType string

const (
	EventCreated       EventType = "procurement.created"
	EventUpdated       EventType = "procurement.updated"
	EventStatusChanged EventType = "procurement.status_changed"
	EventDeleted       EventType = "procurement.deleted"
)

// Event is emitted after a lifecycle mutation is persisted.
type Event struct {
	Type        EventType     `json:"type"`
	ID          int64         `json:"id"`
	RequesterID int64         `json:"requester_id"`
	VenueName   string        `json:"venue_name"`
	ItemName    string        `json:"item_name"`
	Status      entity.Status `json:"status"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

func (s *Service) publish(ctx context.Context, typ EventType, req *entity.ProcurementRequest) {
	if !s.messaging.enabled || s.publisher == nil || req == nil {
		return
	}
	event := Event{
		Type:        typ,
		ID:          req.ID,
		RequesterID: req.RequesterID,
		VenueName:   req.VenueName,
		ItemName:    req.ItemName,
		Status:      req.Status,
		OccurredAt:  s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal procurement event", zap.String("type", string(typ)), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("procurement-%d", req.ID)), payload); err != nil {
		s.logger.Error("publish procurement event", zap.String("type", string(typ)), zap.Error(err))
	}
}
