package report

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/presentation/http/response"
	"github.com/edusupply/compras/internal/report"
	service "github.com/edusupply/compras/internal/service/report"
	"github.com/edusupply/compras/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/edusupply/compras/transport/http/report")

// Handler exposes the investment report over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a report Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/informes/inversion", h.investment)
}

func (h *Handler) investment(c echo.Context) error {
	b := response.New(c)

	anio, err := strconv.Atoi(c.QueryParam("anio"))
	if err != nil || anio <= 0 {
		return b.WithError(errorbank.BadRequest("anio query parameter is required")).Build()
	}

	f := report.Filter{
		Year:            anio,
		SubsidyContains: c.QueryParam("subvencion"),
	}
	if raw := c.QueryParam("unidad"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid unidad filter", errorbank.WithCause(err))).Build()
		}
		f.UnitID = id
	}
	if raw := c.QueryParam("mes"); raw != "" {
		mes, err := strconv.Atoi(raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid mes filter", errorbank.WithCause(err))).Build()
		}
		f.Month = &mes
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "informes.investment", trace.WithAttributes(attribute.Int("anio", anio)))
	defer span.End()

	rep, err := h.svc.Investment(ctx, f)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(rep).Build()
}
