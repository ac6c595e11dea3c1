package order

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

	"github.com/edusupply/compras/internal/calendar"
	"github.com/edusupply/compras/internal/entity"
	orderrepo "github.com/edusupply/compras/internal/repository/order"
	requestrepo "github.com/edusupply/compras/internal/repository/request"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/edusupply/compras/service/order")

// purchasableStates are the request states in which orders may be attached.
var purchasableStates = []workflow.State{
	workflow.StatePurchased,
	workflow.StateInWarehouse,
	workflow.StateDelivered,
}

// Store is the persistence surface the service needs for orders.
type Store interface {
	Create(ctx context.Context, oc *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	ListByRequest(ctx context.Context, compraID int64) ([]*entity.PurchaseOrder, error)
	Update(ctx context.Context, oc *entity.PurchaseOrder) error
	Delete(ctx context.Context, id int64) error
}

// RequestStore resolves the owning purchase request.
type RequestStore interface {
	GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
}

// HolidaySource supplies merged holiday sets for delivery windows.
type HolidaySource interface {
	SetForYears(ctx context.Context, years ...int) calendar.HolidaySet
}

// Service manages purchase orders and their delivery dates.
type Service struct {
	orders   Store
	requests RequestStore
	calc     *calendar.Calculator
	holidays HolidaySource
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders   Store
	Requests RequestStore
	Calc     *calendar.Calculator
	Holidays HolidaySource
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:   p.Orders,
		requests: p.Requests,
		calc:     p.Calc,
		holidays: p.Holidays,
		logger:   p.Logger,
	}
}

// Create attaches a new order to a purchase request. The owning request must
// already be in a purchasable state.
func (s *Service) Create(ctx context.Context, actor workflow.Actor, compraID int64, oc *entity.PurchaseOrder) error {
	if oc == nil {
		return errorbank.BadRequest("order payload is required")
	}
	if !workflow.CanManageOrders(actor.Rol) {
		return errorbank.Forbidden("role may not manage purchase orders", errorbank.WithDetail("rol", string(actor.Rol)))
	}
	if oc.Valor.IsNegative() {
		return errorbank.Unprocessable("order value must not be negative")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int64("compra.id", compraID)))
	defer span.End()

	req, err := s.requests.GetByID(ctx, compraID)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return errorbank.NotFound("purchase request not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to load purchase request", errorbank.WithCause(err))
	}
	if !isPurchasable(req.Estado) {
		return errorbank.Unprocessable("orders can only be attached once the request is purchased",
			errorbank.WithDetail("estado", string(req.Estado)))
	}

	oc.CompraID = compraID
	now := time.Now().UTC()
	if oc.Fecha.IsZero() {
		oc.Fecha = now
	}
	oc.CreatedAt = now
	oc.UpdatedAt = now

	if err := s.orders.Create(ctx, oc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create purchase order", errorbank.WithCause(err))
	}
	return nil
}

// Get fetches an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	oc, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("purchase order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load purchase order", errorbank.WithCause(err))
	}
	return oc, nil
}

// ListByRequest returns all orders attached to a purchase request.
func (s *Service) ListByRequest(ctx context.Context, compraID int64) ([]*entity.PurchaseOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListByRequest", trace.WithAttributes(attribute.Int64("compra.id", compraID)))
	defer span.End()

	orders, err := s.orders.ListByRequest(ctx, compraID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list purchase orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Update modifies an existing order. The owning request reference is
// immutable; only code, date, value, delivery term and document may change.
func (s *Service) Update(ctx context.Context, actor workflow.Actor, oc *entity.PurchaseOrder) error {
	if oc == nil {
		return errorbank.BadRequest("order payload is required")
	}
	if !workflow.CanManageOrders(actor.Rol) {
		return errorbank.Forbidden("role may not manage purchase orders", errorbank.WithDetail("rol", string(actor.Rol)))
	}
	if oc.Valor.IsNegative() {
		return errorbank.Unprocessable("order value must not be negative")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("orden.id", oc.ID)))
	defer span.End()

	existing, err := s.Get(ctx, oc.ID)
	if err != nil {
		return err
	}
	oc.CompraID = existing.CompraID
	oc.CreatedAt = existing.CreatedAt
	oc.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, oc); err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return errorbank.NotFound("purchase order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to update purchase order", errorbank.WithCause(err))
	}
	return nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, actor workflow.Actor, id int64) error {
	if !workflow.CanManageOrders(actor.Rol) {
		return errorbank.Forbidden("role may not manage purchase orders", errorbank.WithDetail("rol", string(actor.Rol)))
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return errorbank.NotFound("purchase order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete purchase order", errorbank.WithCause(err))
	}
	return nil
}

// DeliveryDate computes the expected delivery date for an order from its
// date and delivery term, skipping weekends and fetched holidays. Orders
// without a delivery term have no delivery date.
func (s *Service) DeliveryDate(ctx context.Context, id int64) (time.Time, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.DeliveryDate", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	oc, err := s.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	if oc.PlazoEntrega == nil {
		return time.Time{}, errorbank.Unprocessable("order has no delivery term")
	}

	// The window may cross into the next year; fetch both holiday sets.
	year := oc.Fecha.Year()
	holidays := s.holidays.SetForYears(ctx, year, year+1)
	return s.calc.AddBusinessDays(oc.Fecha, *oc.PlazoEntrega, holidays), nil
}

func isPurchasable(state workflow.State) bool {
	for _, s := range purchasableStates {
		if s == state {
			return true
		}
	}
	return false
}
