// Package middleware holds echo middleware shared by the HTTP handlers.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/procura/internal/policy"
	"github.com/Additional-Code/procura/internal/presentation/http/response"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

const actorKey = "procura.actor"

// Authenticator turns a bearer token into an actor.
type Authenticator interface {
	Authenticate(token string) (policy.Actor, error)
}

// RequireActor rejects requests without a valid bearer token and stores the actor on the context.
func RequireActor(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}
			actor, err := auth.Authenticate(strings.TrimSpace(token))
			if err != nil {
				return response.New(c).WithError(err).Build()
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// Actor returns the authenticated actor stored by RequireActor.
func Actor(c echo.Context) (policy.Actor, bool) {
	actor, ok := c.Get(actorKey).(policy.Actor)
	return actor, ok
}

// MustActor is Actor for handlers mounted behind RequireActor.
func MustActor(c echo.Context) (policy.Actor, error) {
	actor, ok := Actor(c)
	if !ok {
		return policy.Actor{}, errorbank.Unauthorized("unauthenticated")
	}
	return actor, nil
}
