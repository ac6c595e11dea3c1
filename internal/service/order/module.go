package order

import (
	"go.uber.org/fx"

	"github.com/edusupply/compras/internal/calendar"
	orderrepo "github.com/edusupply/compras/internal/repository/order"
	requestrepo "github.com/edusupply/compras/internal/repository/request"
)

// Module provides the order service to Fx, binding the repositories and the
// holiday client to the narrow interfaces the service depends on.
var Module = fx.Options(
	fx.Provide(
		func(r *orderrepo.Repository) Store { return r },
		func(r *requestrepo.Repository) RequestStore { return r },
		func(c *calendar.HolidayClient) HolidaySource { return c },
		NewService,
	),
)
