package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/audit"
	"github.com/edusupply/compras/internal/cache"
	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/messaging"
	repo "github.com/edusupply/compras/internal/repository/request"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/edusupply/compras/service/request")

// Store is the persistence surface the service needs for requests.
type Store interface {
	Create(ctx context.Context, req *entity.PurchaseRequest) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	List(ctx context.Context, f repo.ListFilter) ([]*entity.PurchaseRequest, error)
	Update(ctx context.Context, req *entity.PurchaseRequest) error
	Delete(ctx context.Context, id int64) error
}

// AuditStore appends and reads the audit trail.
type AuditStore interface {
	Append(ctx context.Context, log *entity.AuditLog) error
	ListByRequest(ctx context.Context, compraID int64) ([]*entity.AuditLog, error)
}

// UserStore resolves buyer identities for notifications.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*entity.User, error)
}

// Service orchestrates the purchase-request workflow: permission gating,
// change diffs, audit trail and assignment events.
type Service struct {
	requests  Store
	audits    AuditStore
	users     UserStore
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Requests  Store
	Audits    AuditStore
	Users     UserStore
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		requests:  p.Requests,
		audits:    p.Audits,
		users:     p.Users,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Get retrieves a purchase request by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "RequestService.Get", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	if req, err := s.getFromCache(ctx, id); err == nil {
		return req, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("compras cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("purchase request not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load purchase request", errorbank.WithCause(err))
	}

	s.storeInCacheLogged(ctx, req)
	return req, nil
}

// List fetches purchase requests matching the filter.
func (s *Service) List(ctx context.Context, f repo.ListFilter) ([]*entity.PurchaseRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "RequestService.List")
	defer span.End()

	reqs, err := s.requests.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list purchase requests", errorbank.WithCause(err))
	}
	return reqs, nil
}

// Create persists a new purchase request on behalf of the actor.
func (s *Service) Create(ctx context.Context, actor workflow.Actor, req *entity.PurchaseRequest) error {
	if req == nil {
		return errorbank.BadRequest("request payload is required")
	}
	if !workflow.CanCreate(actor.Rol) {
		return errorbank.Forbidden("role may not create purchase requests", errorbank.WithDetail("rol", string(actor.Rol)))
	}

	ctx, span := serviceTracer.Start(ctx, "RequestService.Create", trace.WithAttributes(attribute.Int("compra.numero", req.NumeroOrdinario)))
	defer span.End()

	if req.Estado == workflow.StateNone {
		req.Estado = workflow.StateAssigned
	}
	if _, ok := workflow.ParseState(string(req.Estado)); !ok {
		return errorbank.BadRequest("unknown workflow state", errorbank.WithDetail("estado", string(req.Estado)))
	}
	if req.Estado == workflow.StateCancelled {
		return errorbank.Unprocessable("a request cannot be created already cancelled")
	}
	req.MotivoAnula = nil

	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	if err := s.requests.Create(ctx, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create purchase request", errorbank.WithCause(err))
	}

	s.appendAudit(ctx, actor, req.ID, audit.ActionCreation, nil)
	s.storeInCacheLogged(ctx, req)

	if req.CompradorID != 0 {
		s.publishAssignment(ctx, req)
	}
	return nil
}

// Update applies a partial update after gating every submitted field and any
// state transition against the actor's role. A patch that changes nothing is
// a no-op: no write, no audit entry.
func (s *Service) Update(ctx context.Context, actor workflow.Actor, id int64, patch audit.Patch) (*entity.PurchaseRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "RequestService.Update", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	existing, err := s.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}

	if !workflow.CanEdit(actor.Rol, existing.Estado) {
		return nil, errorbank.Forbidden("request is not editable for this role in its current state",
			errorbank.WithDetail("rol", string(actor.Rol)),
			errorbank.WithDetail("estado", string(existing.Estado)))
	}

	for _, field := range patch.Fields() {
		if !workflow.IsFieldEditable(field, actor.Rol, existing.Estado) {
			return nil, errorbank.Forbidden("field is not editable for this role",
				errorbank.WithDetail("campo", string(field)))
		}
	}

	if patch.Estado != nil && *patch.Estado != existing.Estado {
		if err := s.checkTransition(actor.Rol, existing.Estado, *patch.Estado, patch); err != nil {
			return nil, err
		}
	}

	cs := audit.Diff(existing, patch)
	if cs.Empty() && patch.Adjunto == nil {
		return existing, nil
	}

	patch.Apply(existing)
	if err := s.enforceCancellationInvariant(existing); err != nil {
		return nil, err
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.requests.Update(ctx, existing); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("purchase request not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update purchase request", errorbank.WithCause(err))
	}

	s.appendAudit(ctx, actor, existing.ID, audit.ActionModification, cs)
	s.storeInCacheLogged(ctx, existing)

	if buyerChanged(cs) && existing.CompradorID != 0 {
		s.publishAssignment(ctx, existing)
	}
	return existing, nil
}

// Cancel moves a request to the cancelled terminal state. Cancellation is a
// capability of its own, outside the transition matrix, so it does not go
// through the regular edit gate.
func (s *Service) Cancel(ctx context.Context, actor workflow.Actor, id int64, motivo string) (*entity.PurchaseRequest, error) {
	ctx, span := serviceTracer.Start(ctx, "RequestService.Cancel", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	if !workflow.CanCancel(actor.Rol) {
		return nil, errorbank.Forbidden("role may not cancel purchase requests", errorbank.WithDetail("rol", string(actor.Rol)))
	}
	if motivo == "" {
		return nil, errorbank.Unprocessable("a cancellation reason is required")
	}

	existing, err := s.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Estado == workflow.StateCancelled {
		return nil, errorbank.Conflict("purchase request is already cancelled")
	}

	estado := workflow.StateCancelled
	patch := audit.Patch{Estado: &estado, MotivoAnula: &motivo}
	cs := audit.Diff(existing, patch)

	patch.Apply(existing)
	existing.UpdatedAt = time.Now().UTC()

	if err := s.requests.Update(ctx, existing); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to cancel purchase request", errorbank.WithCause(err))
	}

	s.appendAudit(ctx, actor, existing.ID, audit.ActionModification, cs)
	s.storeInCacheLogged(ctx, existing)
	return existing, nil
}

// Delete removes a purchase request entirely.
func (s *Service) Delete(ctx context.Context, actor workflow.Actor, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "RequestService.Delete", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	if !workflow.CanDelete(actor.Rol) {
		return errorbank.Forbidden("role may not delete purchase requests", errorbank.WithDetail("rol", string(actor.Rol)))
	}

	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("purchase request not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete purchase request", errorbank.WithCause(err))
	}

	s.appendAudit(ctx, actor, id, audit.ActionDeletion, nil)
	if s.cache != nil {
		_ = s.cache.Delete(ctx, s.cacheKey(id))
	}
	return nil
}

// History returns the audit trail of a request, newest first.
func (s *Service) History(ctx context.Context, id int64) ([]*entity.AuditLog, error) {
	ctx, span := serviceTracer.Start(ctx, "RequestService.History", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	logs, err := s.audits.ListByRequest(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load audit trail", errorbank.WithCause(err))
	}
	return logs, nil
}

// Permissions describes what the actor may do with one request; the UI uses
// it to show or hide affordances.
type Permissions struct {
	PuedeEditar       bool             `json:"puede_editar"`
	PuedeAnular       bool             `json:"puede_anular"`
	PuedeEliminar     bool             `json:"puede_eliminar"`
	Campos            []workflow.Field `json:"campos_editables"`
	EstadosSiguientes []workflow.State `json:"estados_siguientes"`
}

// PermissionsFor computes the actor's capabilities over a request.
func (s *Service) PermissionsFor(ctx context.Context, actor workflow.Actor, id int64) (Permissions, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return Permissions{}, err
	}
	return Permissions{
		PuedeEditar:       workflow.CanEdit(actor.Rol, req.Estado),
		PuedeAnular:       workflow.CanCancel(actor.Rol) && req.Estado != workflow.StateCancelled,
		PuedeEliminar:     workflow.CanDelete(actor.Rol),
		Campos:            workflow.EditableFields(actor.Rol, req.Estado),
		EstadosSiguientes: workflow.AvailableNextStates(actor.Rol, req.Estado),
	}, nil
}

// AssignmentEvent is emitted when a buyer is assigned to a request. It
// carries exactly the structured fields the notification collaborator needs.
type AssignmentEvent struct {
	Tipo            string `json:"tipo"`
	CompraID        int64  `json:"compra_id"`
	NumeroOrdinario int    `json:"numero_ordinario"`
	Descripcion     string `json:"descripcion"`
	Unidad          string `json:"unidad"`
	Comprador       string `json:"comprador"`
	Email           string `json:"email"`
}

// EventRequestAssigned tags buyer-assignment events on the bus.
const EventRequestAssigned = "compra.asignada"

func (s *Service) checkTransition(rol workflow.Role, current, target workflow.State, patch audit.Patch) error {
	if _, ok := workflow.ParseState(string(target)); !ok {
		return errorbank.BadRequest("unknown workflow state", errorbank.WithDetail("estado", string(target)))
	}
	if target == workflow.StateCancelled {
		if !workflow.CanCancel(rol) {
			return errorbank.Forbidden("role may not cancel purchase requests", errorbank.WithDetail("rol", string(rol)))
		}
		if patch.MotivoAnula == nil || *patch.MotivoAnula == "" {
			return errorbank.Unprocessable("a cancellation reason is required")
		}
		return nil
	}
	for _, next := range workflow.AvailableNextStates(rol, current) {
		if next == target {
			return nil
		}
	}
	return errorbank.Forbidden("state transition not allowed for this role",
		errorbank.WithDetail("de", string(current)),
		errorbank.WithDetail("a", string(target)))
}

// enforceCancellationInvariant keeps motivo_anula set iff the request is
// cancelled.
func (s *Service) enforceCancellationInvariant(req *entity.PurchaseRequest) error {
	if req.Estado == workflow.StateCancelled {
		if req.MotivoAnula == nil || *req.MotivoAnula == "" {
			return errorbank.Unprocessable("a cancellation reason is required")
		}
		return nil
	}
	req.MotivoAnula = nil
	return nil
}

func (s *Service) appendAudit(ctx context.Context, actor workflow.Actor, compraID int64, accion string, cs audit.ChangeSet) {
	cambios, err := cs.JSON()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal change set", zap.Error(err))
		}
		cambios = nil
	}
	entry := &entity.AuditLog{
		CompraID:  compraID,
		Usuario:   actor.Nombre,
		Rol:       string(actor.Rol),
		Accion:    accion,
		Resumen:   audit.Summarize(cs, accion),
		Cambios:   cambios,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.audits.Append(ctx, entry); err != nil && s.logger != nil {
		s.logger.Error("append audit entry failed", zap.Int64("compra", compraID), zap.Error(err))
	}
}

func (s *Service) publishAssignment(ctx context.Context, req *entity.PurchaseRequest) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}

	event := AssignmentEvent{
		Tipo:            EventRequestAssigned,
		CompraID:        req.ID,
		NumeroOrdinario: req.NumeroOrdinario,
		Descripcion:     req.Descripcion,
	}
	if req.Unidad != nil {
		event.Unidad = req.Unidad.Nombre
	}
	if buyer, err := s.users.GetUser(ctx, req.CompradorID); err == nil {
		event.Comprador = buyer.Nombre
		event.Email = buyer.Email
	} else if s.logger != nil {
		s.logger.Warn("buyer lookup for assignment event failed", zap.Int64("comprador", req.CompradorID), zap.Error(err))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal assignment event", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("compra-%d", req.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish assignment event", zap.Error(err))
		}
	}
}

func buyerChanged(cs audit.ChangeSet) bool {
	for _, c := range cs {
		if c.Field == workflow.FieldComprador {
			return true
		}
	}
	return false
}

func (s *Service) loadForWrite(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	// Always read through to the repository; the cache may lag a write.
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("purchase request not found")
		}
		return nil, errorbank.Internal("failed to load purchase request", errorbank.WithCause(err))
	}
	return req, nil
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("compras:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var req entity.PurchaseRequest
	if err := json.Unmarshal(bytes, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) storeInCacheLogged(ctx context.Context, req *entity.PurchaseRequest) {
	if s.cache == nil || req == nil {
		return
	}
	bytes, err := json.Marshal(req)
	if err == nil {
		err = s.cache.Set(ctx, s.cacheKey(req.ID), bytes, s.cacheTTL)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("compras cache write failed", zap.Int64("id", req.ID), zap.Error(err))
	}
}
