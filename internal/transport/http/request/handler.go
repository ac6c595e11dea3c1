package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/audit"
	"github.com/edusupply/compras/internal/dto"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/presentation/http/response"
	requestrepo "github.com/edusupply/compras/internal/repository/request"
	service "github.com/edusupply/compras/internal/service/request"
	"github.com/edusupply/compras/internal/transport/http/middleware"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/edusupply/compras/transport/http/request")

// Handler exposes purchase-request endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a request Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/compras")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/anular", h.cancel)
	g.GET("/:id/historial", h.history)
	g.GET("/:id/permisos", h.permissions)
}

// requestPayload carries a full or partial purchase request. Pointer fields
// distinguish "submitted empty" from "not submitted".
type requestPayload struct {
	NumeroOrdinario *int             `json:"numero_ordinario"`
	Descripcion     *string          `json:"descripcion"`
	UnidadID        *int64           `json:"unidad_id"`
	CompradorID     *int64           `json:"comprador_id"`
	FechaSolicitud  *string          `json:"fecha_solicitud"`
	FechaInicio     *string          `json:"fecha_inicio"`
	SubvencionID    *int64           `json:"subvencion_id"`
	Estado          *string          `json:"estado"`
	Presupuesto     *decimal.Decimal `json:"presupuesto"`
	Observacion     *string          `json:"observacion"`
	MotivoAnula     *string          `json:"motivo_anula"`
	Adjunto         *string          `json:"adjunto"`
}

func (p requestPayload) toPatch() (audit.Patch, error) {
	patch := audit.Patch{
		NumeroOrdinario: p.NumeroOrdinario,
		Descripcion:     p.Descripcion,
		UnidadID:        p.UnidadID,
		CompradorID:     p.CompradorID,
		SubvencionID:    p.SubvencionID,
		Presupuesto:     p.Presupuesto,
		Observacion:     p.Observacion,
		MotivoAnula:     p.MotivoAnula,
		Adjunto:         p.Adjunto,
	}
	if p.FechaSolicitud != nil {
		t, err := parseDate(*p.FechaSolicitud)
		if err != nil {
			return audit.Patch{}, errorbank.BadRequest("invalid fecha_solicitud", errorbank.WithCause(err))
		}
		patch.FechaSolicitud = &t
	}
	if p.FechaInicio != nil {
		t, err := parseDate(*p.FechaInicio)
		if err != nil {
			return audit.Patch{}, errorbank.BadRequest("invalid fecha_inicio", errorbank.WithCause(err))
		}
		patch.FechaInicio = &t
	}
	if p.Estado != nil {
		estado := workflow.State(*p.Estado)
		patch.Estado = &estado
	}
	return patch, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	filter := requestrepo.ListFilter{}
	if estado := c.QueryParam("estado"); estado != "" {
		parsed, ok := workflow.ParseState(estado)
		if !ok {
			return b.WithError(errorbank.BadRequest("unknown workflow state", errorbank.WithDetail("estado", estado))).Build()
		}
		filter.Estado = parsed
	}
	if raw := c.QueryParam("unidad"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid unidad filter", errorbank.WithCause(err))).Build()
		}
		filter.UnidadID = id
	}
	if raw := c.QueryParam("comprador"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid comprador filter", errorbank.WithCause(err))).Build()
		}
		filter.CompradorID = id
	}
	if raw := c.QueryParam("anio"); raw != "" {
		anio, err := strconv.Atoi(raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid anio filter", errorbank.WithCause(err))).Build()
		}
		filter.Anio = anio
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.list")
	defer span.End()

	reqs, err := h.svc.List(ctx, filter)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.RequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, dto.NewRequestResponse(req))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.getByID", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	req, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewRequestResponse(req)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	var payload requestPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	patch, err := payload.toPatch()
	if err != nil {
		return b.WithError(err).Build()
	}

	req := &entity.PurchaseRequest{}
	patch.Apply(req)

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.create")
	defer span.End()

	if err := h.svc.Create(ctx, actor, req); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewRequestResponse(req)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload requestPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	patch, err := payload.toPatch()
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.update", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	req, err := h.svc.Update(ctx, actor, id, patch)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewRequestResponse(req)).Build()
}

func (h *Handler) cancel(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload struct {
		Motivo string `json:"motivo"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.cancel", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	req, err := h.svc.Cancel(ctx, actor, id, payload.Motivo)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewRequestResponse(req)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.delete", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, actor, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) history(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.history", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	logs, err := h.svc.History(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.AuditEntryResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, dto.NewAuditEntryResponse(log))
	}
	return b.WithData(out).Build()
}

func (h *Handler) permissions(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "compras.permissions", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	perms, err := h.svc.PermissionsFor(ctx, actor, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(perms).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
