package auth

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/procura/internal/dto"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/policy"
	"github.com/Additional-Code/procura/internal/presentation/http/response"
	service "github.com/Additional-Code/procura/internal/service/auth"
	"github.com/Additional-Code/procura/internal/transport/http/middleware"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

// Authenticator signs users in and resolves the current account.
type Authenticator interface {
	middleware.Authenticator
	Login(ctx context.Context, username, password string) (*service.Token, error)
	Me(ctx context.Context, actor policy.Actor) (*entity.User, error)
}

// Handler exposes sign-in endpoints.
type Handler struct {
	svc Authenticator
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/auth")
	g.POST("/login", h.login)
	g.GET("/me", h.me, middleware.RequireActor(h.svc))
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	token, err := h.svc.Login(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(token).Build()
}

func (h *Handler) me(c echo.Context) error {
	b := response.New(c)
	actor, err := middleware.MustActor(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	user, err := h.svc.Me(c.Request().Context(), actor)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(user).Build()
}
