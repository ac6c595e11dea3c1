package order

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/dto"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/presentation/http/response"
	service "github.com/edusupply/compras/internal/service/order"
	"github.com/edusupply/compras/internal/transport/http/middleware"
	"github.com/edusupply/compras/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/edusupply/compras/transport/http/order")

// Handler exposes purchase-order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the Echo instance. Creation and listing hang
// off the owning request; the rest address orders directly.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/compras/:id/ordenes", h.create)
	e.GET("/compras/:id/ordenes", h.listByRequest)

	g := e.Group("/ordenes")
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/entrega", h.delivery)
}

type orderPayload struct {
	Codigo       string          `json:"codigo"`
	Fecha        string          `json:"fecha"`
	Valor        decimal.Decimal `json:"valor"`
	PlazoEntrega *int            `json:"plazo_entrega"`
	Documento    string          `json:"documento"`
}

func (p orderPayload) toEntity() (*entity.PurchaseOrder, error) {
	oc := &entity.PurchaseOrder{
		Codigo:       p.Codigo,
		Valor:        p.Valor,
		PlazoEntrega: p.PlazoEntrega,
		Documento:    p.Documento,
	}
	if p.Fecha != "" {
		t, err := time.Parse("2006-01-02", p.Fecha)
		if err != nil {
			return nil, errorbank.BadRequest("invalid fecha", errorbank.WithCause(err))
		}
		oc.Fecha = t
	}
	return oc, nil
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	compraID, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	oc, err := payload.toEntity()
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "ordenes.create", trace.WithAttributes(attribute.Int64("compra.id", compraID)))
	defer span.End()

	if err := h.svc.Create(ctx, actor, compraID, oc); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(oc)).Build()
}

func (h *Handler) listByRequest(c echo.Context) error {
	b := response.New(c)

	compraID, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "ordenes.listByRequest", trace.WithAttributes(attribute.Int64("compra.id", compraID)))
	defer span.End()

	orders, err := h.svc.ListByRequest(ctx, compraID)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, oc := range orders {
		out = append(out, dto.NewOrderResponse(oc))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "ordenes.getByID", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	oc, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(oc)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	oc, err := payload.toEntity()
	if err != nil {
		return b.WithError(err).Build()
	}
	oc.ID = id

	ctx, span := httpTracer.Start(c.Request().Context(), "ordenes.update", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	if err := h.svc.Update(ctx, actor, oc); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(oc)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "ordenes.delete", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, actor, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) delivery(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "ordenes.delivery", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	date, err := h.svc.DeliveryDate(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.DeliveryResponse{
		OrdenID:      id,
		FechaEntrega: date.Format("2006-01-02"),
	}).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
