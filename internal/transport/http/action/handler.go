package action

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/dto"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/presentation/http/response"
	actionrepo "github.com/edusupply/compras/internal/repository/action"
	service "github.com/edusupply/compras/internal/service/action"
	"github.com/edusupply/compras/internal/transport/http/middleware"
	"github.com/edusupply/compras/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/edusupply/compras/transport/http/action")

// Handler exposes SEP action endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an action Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/acciones")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type actionPayload struct {
	UnidadID    int64           `json:"unidad_id"`
	Anio        int             `json:"anio"`
	Descripcion string          `json:"descripcion"`
	Responsable string          `json:"responsable"`
	Monto       decimal.Decimal `json:"monto"`
}

func (p actionPayload) toEntity() *entity.ActionRecord {
	return &entity.ActionRecord{
		UnidadID:    p.UnidadID,
		Anio:        p.Anio,
		Descripcion: p.Descripcion,
		Responsable: p.Responsable,
		Monto:       p.Monto,
	}
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	filter := actionrepo.ListFilter{}
	if raw := c.QueryParam("unidad"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid unidad filter", errorbank.WithCause(err))).Build()
		}
		filter.UnidadID = id
	}
	if raw := c.QueryParam("anio"); raw != "" {
		anio, err := strconv.Atoi(raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid anio filter", errorbank.WithCause(err))).Build()
		}
		filter.Anio = anio
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "acciones.list")
	defer span.End()

	records, err := h.svc.List(ctx, filter)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.ActionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.NewActionResponse(rec))
	}
	return b.WithData(out).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	var payload actionPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "acciones.create")
	defer span.End()

	rec := payload.toEntity()
	if err := h.svc.Create(ctx, actor, rec); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewActionResponse(rec)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "acciones.getByID", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	rec, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewActionResponse(rec)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload actionPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "acciones.update", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	rec := payload.toEntity()
	rec.ID = id
	if err := h.svc.Update(ctx, actor, rec); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewActionResponse(rec)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "acciones.delete", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, actor, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
