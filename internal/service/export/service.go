// Package export flattens procurement requests into a tabular report.
package export

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/policy"
	repo "github.com/Additional-Code/procura/internal/repository/procurement"
	"github.com/Additional-Code/procura/internal/service/procurement"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

var tracer = otel.Tracer("github.com/Additional-Code/procura/service/export")

const (
	dateLayout      = "02/01/2006"
	timestampLayout = "02/01/2006 15:04"
)

// Headers is the fixed column order of every export.
var Headers = []string{
	"ID",
	"Tanggal Permintaan",
	"Nama Venue",
	"Nama Barang",
	"Jumlah Barang",
	"Sisa Barang",
	"Penggunaan",
	"PIC Penerima",
	"Link Barang",
	"Note",
	"Keterangan",
	"Status",
	"Dibuat Oleh",
	"Tanggal Dibuat",
	"Terakhir Diperbarui",
}

// Source yields every request matching a filter, newest first.
type Source interface {
	All(ctx context.Context, filter repo.Filter) ([]entity.ProcurementRequest, error)
}

// Table is an export: a header row followed by one row per request.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Service produces procurement exports.
type Service struct {
	source   Source
	location *time.Location
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Source Source
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new export Service.
func NewService(p Params) *Service {
	loc := p.Config.Procurement.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: p.Source, location: loc, logger: logger}
}

// Export returns every request matching the optional venue and status filters.
// Only super admins may export; the result is not scoped to the caller.
func (s *Service) Export(ctx context.Context, actor policy.Actor, venue, status string) (*Table, error) {
	ctx, span := tracer.Start(ctx, "ExportService.Export", trace.WithAttributes(
		attribute.String("export.venue", venue),
		attribute.String("export.status", status),
	))
	defer span.End()

	if err := policy.Authorize(actor, policy.ActionExport, nil); err != nil {
		return nil, err
	}
	filter, err := procurement.ToRepoFilter(venue, status)
	if err != nil {
		return nil, err
	}

	records, err := s.source.All(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to export procurement requests", errorbank.WithCause(err))
	}

	table := &Table{Headers: Headers, Rows: make([][]string, 0, len(records))}
	for i := range records {
		table.Rows = append(table.Rows, s.row(&records[i]))
	}
	s.logger.Info("procurement export generated",
		zap.Int64("actor_id", actor.UserID),
		zap.Int("rows", len(table.Rows)),
	)
	return table, nil
}

func (s *Service) row(r *entity.ProcurementRequest) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.RequestDate.Format(dateLayout),
		r.VenueName,
		r.ItemName,
		strconv.Itoa(r.Quantity),
		r.RemainingStock,
		r.UsageDescription,
		r.RecipientContact,
		r.ItemLink,
		r.Note,
		r.Description,
		string(r.Status),
		r.RequesterName(),
		s.timestamp(r.CreatedAt),
		s.timestamp(r.UpdatedAt),
	}
}

func (s *Service) timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.location).Format(timestampLayout)
}
