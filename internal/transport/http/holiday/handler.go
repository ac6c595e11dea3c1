package holiday

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/calendar"
	"github.com/edusupply/compras/internal/presentation/http/response"
	"github.com/edusupply/compras/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/edusupply/compras/transport/http/holiday")

// Handler exposes the cached public-holiday sets over HTTP, mostly so the
// frontend calendar can grey out non-working days.
type Handler struct {
	client *calendar.HolidayClient
}

// NewHandler constructs a holiday Handler.
func NewHandler(client *calendar.HolidayClient) *Handler {
	return &Handler{client: client}
}

// Register mounts the routes on the Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/feriados/:anio", h.byYear)
}

func (h *Handler) byYear(c echo.Context) error {
	b := response.New(c)

	anio, err := strconv.Atoi(c.Param("anio"))
	if err != nil || anio <= 0 {
		return b.WithError(errorbank.BadRequest("invalid year")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "feriados.byYear", trace.WithAttributes(attribute.Int("anio", anio)))
	defer span.End()

	return b.WithData(h.client.Year(ctx, anio)).Build()
}
