package procurement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/procura/internal/cache"
	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/messaging"
	"github.com/Additional-Code/procura/internal/policy"
	repo "github.com/Additional-Code/procura/internal/repository/procurement"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/procura/service/procurement")

// Store is the persistence surface the lifecycle needs.
type Store interface {
	Create(ctx context.Context, req *entity.ProcurementRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ProcurementRequest, error)
	List(ctx context.Context, filter repo.Filter, page repo.Page) ([]entity.ProcurementRequest, int, error)
	Update(ctx context.Context, req *entity.ProcurementRequest) error
	UpdateStatus(ctx context.Context, id int64, status entity.Status, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// Service runs the procurement request lifecycle, checking the access policy before every operation.
type Service struct {
	store     Store
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	pageSize  int
	ops       metric.Int64Counter
	now       func() time.Time
}

type messagingConfig struct {
	enabled bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := p.Config.Procurement.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	ops, err := otel.Meter("github.com/Additional-Code/procura/service/procurement").
		Int64Counter("procurement.requests.operations", metric.WithDescription("Procurement lifecycle operations by kind"))
	if err != nil {
		logger.Warn("procurement counter unavailable", zap.Error(err))
		ops, _ = noop.NewMeterProvider().Meter("").Int64Counter("procurement.requests.operations")
	}

	return &Service{
		store:     p.Store,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    logger,
		publisher: p.Publisher,
		messaging: messagingConfig{enabled: p.Config.Messaging.Enabled},
		pageSize:  pageSize,
		ops:       ops,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in and persists a new request owned by actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, in CreateInput) (*entity.ProcurementRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Create", trace.WithAttributes(attribute.Int64("actor.id", actor.UserID)))
	defer span.End()

	if err := policy.Authorize(actor, policy.ActionCreate, nil); err != nil {
		return nil, err
	}

	in.normalize()
	if !actor.IsSuperAdmin() && actor.VenueName != "" {
		in.VenueName = actor.VenueName
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	requestDate, err := time.Parse(dateLayout, in.RequestDate)
	if err != nil {
		return nil, invalidField("request_date", "request_date must be a date formatted YYYY-MM-DD")
	}

	now := s.now()
	req := &entity.ProcurementRequest{
		RequesterID:      actor.UserID,
		RequestDate:      requestDate,
		VenueName:        in.VenueName,
		ItemName:         in.ItemName,
		Quantity:         *in.Quantity,
		RemainingStock:   in.RemainingStock,
		UsageDescription: in.UsageDescription,
		RecipientContact: in.RecipientContact,
		ItemLink:         in.ItemLink,
		Note:             in.Note,
		Description:      in.Description,
		Status:           entity.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Create(ctx, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create procurement request", errorbank.WithCause(err))
	}
	s.record(ctx, "create")

	created, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventCreated, created)
	return created, nil
}

// List returns one page of requests visible to actor, newest first.
func (s *Service) List(ctx context.Context, actor policy.Actor, filter ListFilter) (*ListResult, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.List", trace.WithAttributes(attribute.Int64("actor.id", actor.UserID)))
	defer span.End()

	if err := policy.Authorize(actor, policy.ActionList, nil); err != nil {
		return nil, err
	}
	repoFilter, err := toRepoFilter(filter.VenueName, filter.Status)
	if err != nil {
		return nil, err
	}
	repoFilter.RequesterID = policy.ListScope(actor)

	page := filter.Page
	if page < 1 {
		page = 1
	}

	items, total, err := s.store.List(ctx, repoFilter, repo.Page{Number: page, Size: s.pageSize})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list procurement requests", errorbank.WithCause(err))
	}

	lastPage := (total + s.pageSize - 1) / s.pageSize
	if lastPage < 1 {
		lastPage = 1
	}
	return &ListResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  s.pageSize,
		LastPage: lastPage,
	}, nil
}

// Get returns a single request, with the requester's display name resolved.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*entity.ProcurementRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Get", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req, err := s.cachedLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Update applies a partial update; omitted fields keep their stored values.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, in UpdateInput) (*entity.ProcurementRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Update", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, req); err != nil {
		return nil, err
	}

	in.normalize()
	if !actor.IsSuperAdmin() {
		// Venue accounts cannot move a request to another venue.
		in.VenueName = nil
	}
	if fields := in.requiredCleared(); len(fields) > 0 {
		return nil, errorbank.Invalid(fields)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	in.apply(req)
	req.UpdatedAt = s.now()

	if err := s.store.Update(ctx, req); err != nil {
		return nil, s.storeError(span, err, "failed to update procurement request")
	}
	s.invalidate(ctx, id)
	s.record(ctx, "update")

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

// ChangeStatus sets the status label. Any status may move to any other.
func (s *Service) ChangeStatus(ctx context.Context, actor policy.Actor, id int64, status string) (*entity.ProcurementRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.ChangeStatus", trace.WithAttributes(
		attribute.Int64("procurement.id", id),
		attribute.String("procurement.status", status),
	))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionChangeStatus, req); err != nil {
		return nil, err
	}
	next := entity.Status(status)
	if !next.Valid() {
		return nil, invalidField("status", "status must be one of: "+statusList())
	}

	if err := s.store.UpdateStatus(ctx, id, next, s.now()); err != nil {
		return nil, s.storeError(span, err, "failed to update procurement status")
	}
	s.invalidate(ctx, id)
	s.record(ctx, "change_status")

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventStatusChanged, updated)
	return updated, nil
}

// Delete physically removes a request.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Delete", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, req); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(span, err, "failed to delete procurement request")
	}
	s.invalidate(ctx, id)
	s.record(ctx, "delete")
	s.publish(ctx, EventDeleted, req)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*entity.ProcurementRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("procurement request not found", errorbank.WithDetail("id", id))
		}
		return nil, errorbank.Internal("failed to load procurement request", errorbank.WithCause(err))
	}
	return req, nil
}

func (s *Service) cachedLoad(ctx context.Context, id int64) (*entity.ProcurementRequest, error) {
	if req, err := s.getFromCache(ctx, id); err == nil {
		return req, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("procurement cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.storeInCache(ctx, req); err != nil {
		s.logger.Warn("procurement cache write failed", zap.Int64("id", id), zap.Error(err))
	}
	return req, nil
}

func (s *Service) storeError(span trace.Span, err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("procurement request not found")
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "repository error")
	return errorbank.Internal(msg, errorbank.WithCause(err))
}

func (s *Service) record(ctx context.Context, op string) {
	s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// CacheKey is the cache entry holding a single request.
func CacheKey(id int64) string {
	return fmt.Sprintf("procurement:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.ProcurementRequest, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, CacheKey(id))
	if err != nil {
		return nil, err
	}
	var req entity.ProcurementRequest
	if err := json.Unmarshal(bytes, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) storeInCache(ctx context.Context, req *entity.ProcurementRequest) error {
	if s.cache == nil || req == nil {
		return nil
	}
	bytes, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, CacheKey(req.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKey(id)); err != nil {
		s.logger.Warn("procurement cache invalidation failed", zap.Int64("id", id), zap.Error(err))
	}
}

// ToRepoFilter validates the optional venue and status filters shared by list and export.
func ToRepoFilter(venue, status string) (repo.Filter, error) {
	return toRepoFilter(venue, status)
}

func toRepoFilter(venue, status string) (repo.Filter, error) {
	var f repo.Filter
	if venue != "" {
		if !entity.IsVenue(venue) {
			return f, invalidField("venue", "venue must be one of the known venues")
		}
		f.VenueName = venue
	}
	if status != "" {
		st := entity.Status(status)
		if !st.Valid() {
			return f, invalidField("status", "status must be one of: "+statusList())
		}
		f.Status = st
	}
	return f, nil
}
