package http

import (
	echo "github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/edusupply/compras/internal/transport/http/middleware"

	actiontransport "github.com/edusupply/compras/internal/transport/http/action"
	catalogtransport "github.com/edusupply/compras/internal/transport/http/catalog"
	holidaytransport "github.com/edusupply/compras/internal/transport/http/holiday"
	ordertransport "github.com/edusupply/compras/internal/transport/http/order"
	reporttransport "github.com/edusupply/compras/internal/transport/http/report"
	requesttransport "github.com/edusupply/compras/internal/transport/http/request"
)

// Module aggregates all HTTP transport handlers and the identity middleware.
var Module = fx.Options(
	fx.Invoke(func(e *echo.Echo) {
		e.Use(middleware.Actor())
	}),
	requesttransport.Module,
	ordertransport.Module,
	catalogtransport.Module,
	reporttransport.Module,
	actiontransport.Module,
	holidaytransport.Module,
)
