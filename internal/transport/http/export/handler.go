package export

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/procura/internal/policy"
	"github.com/Additional-Code/procura/internal/presentation/http/response"
	service "github.com/Additional-Code/procura/internal/service/export"
	"github.com/Additional-Code/procura/internal/transport/http/middleware"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/procura/transport/http/export")

// Exporter produces the tabular procurement report.
type Exporter interface {
	Export(ctx context.Context, actor policy.Actor, venue, status string) (*service.Table, error)
}

// Handler exposes the export endpoint.
type Handler struct {
	svc Exporter
}

// NewHandler constructs an export Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth echo.MiddlewareFunc) {
	e.GET("/export/procurement", h.export, auth)
}

func (h *Handler) export(c echo.Context) error {
	b := response.New(c)
	actor, err := middleware.MustActor(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	venue, status := c.QueryParam("venue"), c.QueryParam("status")
	ctx, span := httpTracer.Start(c.Request().Context(), "export.procurement", trace.WithAttributes(
		attribute.String("export.venue", venue),
		attribute.String("export.status", status),
	))
	defer span.End()

	table, err := h.svc.Export(ctx, actor, venue, status)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(table).WithMeta("rows", len(table.Rows)).Build()
}
