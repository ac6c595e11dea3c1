package request

import (
	"go.uber.org/fx"

	auditrepo "github.com/edusupply/compras/internal/repository/auditlog"
	catalogrepo "github.com/edusupply/compras/internal/repository/catalog"
	requestrepo "github.com/edusupply/compras/internal/repository/request"
)

// Module provides the request service to Fx, binding the repositories to the
// narrow store interfaces the service depends on.
var Module = fx.Options(
	fx.Provide(
		func(r *requestrepo.Repository) Store { return r },
		func(r *auditrepo.Repository) AuditStore { return r },
		func(r *catalogrepo.Repository) UserStore { return r },
		NewService,
	),
)
