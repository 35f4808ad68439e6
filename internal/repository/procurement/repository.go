package procurement

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/procura/internal/database"
	"github.com/Additional-Code/procura/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/procura/repository/procurement")

// ErrNotFound is returned when a procurement request is missing.
var ErrNotFound = errors.New("procurement request not found")

// Filter narrows list and export queries. Zero values mean "any".
type Filter struct {
	RequesterID *int64
	VenueName   string
	Status      entity.Status
}

// Page selects a window of a list query; Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// Repository encapsulates read/write access for procurement requests.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new request using the write connection.
func (r *Repository) Create(ctx context.Context, req *entity.ProcurementRequest) error {
	if req == nil {
		return errors.New("nil procurement request")
	}
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.Create", trace.WithAttributes(attribute.String("procurement.venue", req.VenueName)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(req).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a request and its requester by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.ProcurementRequest, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.GetByID", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req := new(entity.ProcurementRequest)
	err := r.reader.NewSelect().
		Model(req).
		Relation("Requester", excludeSecrets).
		Where("pr.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return req, nil
}

// List returns one page of matching requests, newest first, plus the total match count.
func (r *Repository) List(ctx context.Context, filter Filter, page Page) ([]entity.ProcurementRequest, int, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.List", trace.WithAttributes(
		attribute.Int("page.number", page.Number),
		attribute.Int("page.size", page.Size),
	))
	defer span.End()

	if page.Number < 1 {
		page.Number = 1
	}

	var rows []entity.ProcurementRequest
	q := r.reader.NewSelect().
		Model(&rows).
		Relation("Requester", excludeSecrets)
	q = applyFilter(q, filter).
		OrderExpr("pr.created_at DESC, pr.id DESC").
		Limit(page.Size).
		Offset((page.Number - 1) * page.Size)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return rows, total, nil
}

// All returns every matching request, newest first.
func (r *Repository) All(ctx context.Context, filter Filter) ([]entity.ProcurementRequest, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.All")
	defer span.End()

	var rows []entity.ProcurementRequest
	q := r.reader.NewSelect().
		Model(&rows).
		Relation("Requester", excludeSecrets)
	err := applyFilter(q, filter).
		OrderExpr("pr.created_at DESC, pr.id DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rows, nil
}

// Update overwrites every mutable column of req.
func (r *Repository) Update(ctx context.Context, req *entity.ProcurementRequest) error {
	if req == nil {
		return errors.New("nil procurement request")
	}
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.Update", trace.WithAttributes(attribute.Int64("procurement.id", req.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(req).
		Column(
			"request_date", "venue_name", "item_name", "quantity", "remaining_stock",
			"usage_description", "recipient_contact", "item_link", "note", "description",
			"status", "updated_at",
		).
		WherePK().
		Exec(ctx)
	return checkAffected(span, res, err, "update failed")
}

// UpdateStatus writes only the status and updated_at columns.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status entity.Status, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("procurement.id", id),
		attribute.String("procurement.status", string(status)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(new(entity.ProcurementRequest)).
		Set("status = ?", status).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return checkAffected(span, res, err, "update status failed")
}

// Delete physically removes a request.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.Delete", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model(new(entity.ProcurementRequest)).
		Where("id = ?", id).
		Exec(ctx)
	return checkAffected(span, res, err, "delete failed")
}

func applyFilter(q *bun.SelectQuery, filter Filter) *bun.SelectQuery {
	if filter.RequesterID != nil {
		q = q.Where("pr.requester_id = ?", *filter.RequesterID)
	}
	if filter.VenueName != "" {
		q = q.Where("pr.venue_name = ?", filter.VenueName)
	}
	if filter.Status != "" {
		q = q.Where("pr.status = ?", filter.Status)
	}
	return q
}

func excludeSecrets(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ExcludeColumn("password_hash")
}

func checkAffected(span trace.Span, res sql.Result, err error, msg string) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return err
	}
	if n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}
