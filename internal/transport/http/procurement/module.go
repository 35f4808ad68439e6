package procurement

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/procura/internal/service/auth"
	"github.com/Additional-Code/procura/internal/transport/http/middleware"
)

// Module wires HTTP procurement handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, a *auth.Service) {
		Register(e, h, middleware.RequireActor(a))
	}),
)
