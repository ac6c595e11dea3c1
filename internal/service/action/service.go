package action

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/entity"
	actionrepo "github.com/edusupply/compras/internal/repository/action"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/edusupply/compras/service/action")

// Service manages SEP action records.
type Service struct {
	actions *actionrepo.Repository
	logger  *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Actions *actionrepo.Repository
	Logger  *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{actions: p.Actions, logger: p.Logger}
}

// Create registers a new SEP action record.
func (s *Service) Create(ctx context.Context, actor workflow.Actor, rec *entity.ActionRecord) error {
	if rec == nil {
		return errorbank.BadRequest("action payload is required")
	}
	if !workflow.CanManageActions(actor.Rol) {
		return errorbank.Forbidden("role may not manage SEP actions", errorbank.WithDetail("rol", string(actor.Rol)))
	}
	if rec.Descripcion == "" {
		return errorbank.Unprocessable("action description is required")
	}
	if rec.Anio <= 0 {
		return errorbank.Unprocessable("action year is required")
	}
	if rec.Monto.IsNegative() {
		return errorbank.Unprocessable("action amount must not be negative")
	}

	ctx, span := serviceTracer.Start(ctx, "ActionService.Create")
	defer span.End()

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.actions.Create(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create SEP action", errorbank.WithCause(err))
	}
	return nil
}

// Get fetches an action record by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.ActionRecord, error) {
	ctx, span := serviceTracer.Start(ctx, "ActionService.Get", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	rec, err := s.actions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, actionrepo.ErrNotFound) {
			return nil, errorbank.NotFound("SEP action not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load SEP action", errorbank.WithCause(err))
	}
	return rec, nil
}

// List returns action records, optionally filtered by unit and year.
func (s *Service) List(ctx context.Context, f actionrepo.ListFilter) ([]*entity.ActionRecord, error) {
	ctx, span := serviceTracer.Start(ctx, "ActionService.List")
	defer span.End()

	records, err := s.actions.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list SEP actions", errorbank.WithCause(err))
	}
	return records, nil
}

// Update modifies an existing action record.
func (s *Service) Update(ctx context.Context, actor workflow.Actor, rec *entity.ActionRecord) error {
	if rec == nil {
		return errorbank.BadRequest("action payload is required")
	}
	if !workflow.CanManageActions(actor.Rol) {
		return errorbank.Forbidden("role may not manage SEP actions", errorbank.WithDetail("rol", string(actor.Rol)))
	}
	if rec.Monto.IsNegative() {
		return errorbank.Unprocessable("action amount must not be negative")
	}

	ctx, span := serviceTracer.Start(ctx, "ActionService.Update", trace.WithAttributes(attribute.Int64("accion.id", rec.ID)))
	defer span.End()

	existing, err := s.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	if err := s.actions.Update(ctx, rec); err != nil {
		if errors.Is(err, actionrepo.ErrNotFound) {
			return errorbank.NotFound("SEP action not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to update SEP action", errorbank.WithCause(err))
	}
	return nil
}

// Delete removes an action record.
func (s *Service) Delete(ctx context.Context, actor workflow.Actor, id int64) error {
	if !workflow.CanManageActions(actor.Rol) {
		return errorbank.Forbidden("role may not manage SEP actions", errorbank.WithDetail("rol", string(actor.Rol)))
	}

	ctx, span := serviceTracer.Start(ctx, "ActionService.Delete", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	if err := s.actions.Delete(ctx, id); err != nil {
		if errors.Is(err, actionrepo.ErrNotFound) {
			return errorbank.NotFound("SEP action not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete SEP action", errorbank.WithCause(err))
	}
	return nil
}
