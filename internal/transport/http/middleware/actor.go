// Package middleware carries cross-cutting HTTP concerns. Identity arrives
// from the authenticating reverse proxy as trusted headers; requests without
// them fall back to the read-only observer role.
package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edusupply/compras/internal/workflow"
)

// Header names set by the upstream proxy.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
	HeaderUserName = "X-User-Name"
)

const actorContextKey = "compras.actor"

// Actor resolves the acting identity from proxy headers and stores it on the
// request context. Unknown or missing roles degrade to observer.
func Actor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := workflow.Actor{Rol: workflow.RoleObserver}

			if raw := c.Request().Header.Get(HeaderUserID); raw != "" {
				if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
					actor.ID = id
				}
			}
			if name := c.Request().Header.Get(HeaderUserName); name != "" {
				actor.Nombre = name
			}
			if raw := c.Request().Header.Get(HeaderUserRole); raw != "" {
				if rol, ok := workflow.ParseRole(raw); ok {
					actor.Rol = rol
				}
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// ActorFrom extracts the actor placed by the middleware. Handlers reached
// without the middleware see the observer fallback.
func ActorFrom(c echo.Context) workflow.Actor {
	if actor, ok := c.Get(actorContextKey).(workflow.Actor); ok {
		return actor
	}
	return workflow.Actor{Rol: workflow.RoleObserver}
}
