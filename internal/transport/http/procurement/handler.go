package procurement

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/procura/internal/dto"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/policy"
	"github.com/Additional-Code/procura/internal/presentation/http/response"
	service "github.com/Additional-Code/procura/internal/service/procurement"
	"github.com/Additional-Code/procura/internal/transport/http/middleware"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/procura/transport/http/procurement")

// Lifecycle is the subset of the procurement service the handler drives.
type Lifecycle interface {
	Create(ctx context.Context, actor policy.Actor, in service.CreateInput) (*entity.ProcurementRequest, error)
	List(ctx context.Context, actor policy.Actor, filter service.ListFilter) (*service.ListResult, error)
	Get(ctx context.Context, actor policy.Actor, id int64) (*entity.ProcurementRequest, error)
	Update(ctx context.Context, actor policy.Actor, id int64, in service.UpdateInput) (*entity.ProcurementRequest, error)
	ChangeStatus(ctx context.Context, actor policy.Actor, id int64, status string) (*entity.ProcurementRequest, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

// Handler exposes procurement endpoints over HTTP.
type Handler struct {
	svc Lifecycle
}

// NewHandler constructs a procurement Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance; every route requires an actor.
func Register(e *echo.Echo, h *Handler, auth echo.MiddlewareFunc) {
	g := e.Group("/procurement", auth)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/options", h.options)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/status", h.changeStatus)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	actor, err := middleware.MustActor(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := service.ListFilter{
		VenueName: c.QueryParam("venue"),
		Status:    c.QueryParam("status"),
		Page:      page,
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "procurement.list")
	defer span.End()

	res, err := h.svc.List(ctx, actor, filter)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProcurementList(res.Items)).
		WithPagination(res.Page, res.PerPage, res.Total, res.LastPage).
		Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	actor, err := middleware.MustActor(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var in service.CreateInput
	if err := c.Bind(&in); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "procurement.create")
	defer span.End()

	req, err := h.svc.Create(ctx, actor, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewProcurementResponse(req)).Build()
}

func (h *Handler) options(c echo.Context) error {
	statuses := make([]string, 0, len(entity.Statuses))
	for _, s := range entity.Statuses {
		statuses = append(statuses, string(s))
	}
	return response.New(c).WithData(dto.ProcurementOptions{
		Venues:   entity.Venues,
		Statuses: statuses,
	}).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)
	actor, id, err := actorAndID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "procurement.get", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req, err := h.svc.Get(ctx, actor, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProcurementResponse(req)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	actor, id, err := actorAndID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var in service.UpdateInput
	if err := c.Bind(&in); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "procurement.update", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req, err := h.svc.Update(ctx, actor, id, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProcurementResponse(req)).Build()
}

func (h *Handler) changeStatus(c echo.Context) error {
	b := response.New(c)
	actor, id, err := actorAndID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.StatusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "procurement.changeStatus", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	req, err := h.svc.ChangeStatus(ctx, actor, id, payload.Status)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProcurementResponse(req)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	actor, id, err := actorAndID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "procurement.delete", trace.WithAttributes(attribute.Int64("procurement.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, actor, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]int64{"id": id}).Build()
}

func actorAndID(c echo.Context) (policy.Actor, int64, error) {
	actor, err := middleware.MustActor(c)
	if err != nil {
		return policy.Actor{}, 0, err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return policy.Actor{}, 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return actor, id, nil
}
