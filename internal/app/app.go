package app

import (
	"go.uber.org/fx"

	"github.com/edusupply/compras/internal/cache"
	"github.com/edusupply/compras/internal/calendar"
	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/database"
	"github.com/edusupply/compras/internal/logger"
	"github.com/edusupply/compras/internal/messaging"
	"github.com/edusupply/compras/internal/notifier"
	"github.com/edusupply/compras/internal/observability"
	repositoryaction "github.com/edusupply/compras/internal/repository/action"
	repositoryauditlog "github.com/edusupply/compras/internal/repository/auditlog"
	repositorycatalog "github.com/edusupply/compras/internal/repository/catalog"
	repositoryorder "github.com/edusupply/compras/internal/repository/order"
	repositoryrequest "github.com/edusupply/compras/internal/repository/request"
	httpserver "github.com/edusupply/compras/internal/server/http"
	serviceaction "github.com/edusupply/compras/internal/service/action"
	servicecatalog "github.com/edusupply/compras/internal/service/catalog"
	serviceorder "github.com/edusupply/compras/internal/service/order"
	servicereport "github.com/edusupply/compras/internal/service/report"
	servicerequest "github.com/edusupply/compras/internal/service/request"
	transporthttp "github.com/edusupply/compras/internal/transport/http"
	"github.com/edusupply/compras/internal/worker"
	workerassignment "github.com/edusupply/compras/internal/worker/assignment"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	calendar.Module,
	repositoryrequest.Module,
	repositoryorder.Module,
	repositorycatalog.Module,
	repositoryauditlog.Module,
	repositoryaction.Module,
	servicerequest.Module,
	serviceorder.Module,
	servicecatalog.Module,
	servicereport.Module,
	serviceaction.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background message processing and notifications.
var Worker = fx.Options(
	Core,
	notifier.Module,
	worker.Module,
	workerassignment.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
