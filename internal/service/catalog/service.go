package catalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/entity"
	catalogrepo "github.com/edusupply/compras/internal/repository/catalog"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/edusupply/compras/service/catalog")

// Service exposes the reference catalogs: units, subsidies and users.
type Service struct {
	catalog *catalogrepo.Repository
	logger  *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Catalog *catalogrepo.Repository
	Logger  *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{catalog: p.Catalog, logger: p.Logger}
}

// Units lists all requesting units.
func (s *Service) Units(ctx context.Context) ([]*entity.Unit, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Units")
	defer span.End()

	units, err := s.catalog.Units(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list units", errorbank.WithCause(err))
	}
	return units, nil
}

// CreateUnit registers a requesting unit. Only administrators may extend the
// catalogs.
func (s *Service) CreateUnit(ctx context.Context, actor workflow.Actor, unit *entity.Unit) error {
	if unit == nil || unit.Nombre == "" {
		return errorbank.BadRequest("unit name is required")
	}
	if actor.Rol != workflow.RoleAdmin {
		return errorbank.Forbidden("role may not manage catalogs", errorbank.WithDetail("rol", string(actor.Rol)))
	}

	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateUnit")
	defer span.End()

	unit.CreatedAt = time.Now().UTC()
	if err := s.catalog.CreateUnit(ctx, unit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create unit", errorbank.WithCause(err))
	}
	return nil
}

// Subsidies lists all funding sources.
func (s *Service) Subsidies(ctx context.Context) ([]*entity.Subsidy, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Subsidies")
	defer span.End()

	subsidies, err := s.catalog.Subsidies(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list subsidies", errorbank.WithCause(err))
	}
	return subsidies, nil
}

// CreateSubsidy registers a funding source.
func (s *Service) CreateSubsidy(ctx context.Context, actor workflow.Actor, subsidy *entity.Subsidy) error {
	if subsidy == nil || subsidy.Nombre == "" {
		return errorbank.BadRequest("subsidy name is required")
	}
	if actor.Rol != workflow.RoleAdmin {
		return errorbank.Forbidden("role may not manage catalogs", errorbank.WithDetail("rol", string(actor.Rol)))
	}

	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateSubsidy")
	defer span.End()

	subsidy.CreatedAt = time.Now().UTC()
	if err := s.catalog.CreateSubsidy(ctx, subsidy); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create subsidy", errorbank.WithCause(err))
	}
	return nil
}

// Users lists all staff members.
func (s *Service) Users(ctx context.Context) ([]*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Users")
	defer span.End()

	users, err := s.catalog.Users(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list users", errorbank.WithCause(err))
	}
	return users, nil
}
