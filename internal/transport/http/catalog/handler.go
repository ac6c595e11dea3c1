package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/edusupply/compras/internal/dto"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/presentation/http/response"
	service "github.com/edusupply/compras/internal/service/catalog"
	"github.com/edusupply/compras/internal/transport/http/middleware"
	"github.com/edusupply/compras/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/edusupply/compras/transport/http/catalog")

// Handler exposes the reference catalogs over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/unidades", h.listUnits)
	e.POST("/unidades", h.createUnit)
	e.GET("/subvenciones", h.listSubsidies)
	e.POST("/subvenciones", h.createSubsidy)
	e.GET("/usuarios", h.listUsers)
}

func (h *Handler) listUnits(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalogos.units")
	defer span.End()

	units, err := h.svc.Units(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.UnitResponse{ID: u.ID, Nombre: u.Nombre})
	}
	return b.WithData(out).Build()
}

func (h *Handler) createUnit(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	var payload struct {
		Nombre string `json:"nombre"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalogos.createUnit")
	defer span.End()

	unit := &entity.Unit{Nombre: payload.Nombre}
	if err := h.svc.CreateUnit(ctx, actor, unit); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.UnitResponse{ID: unit.ID, Nombre: unit.Nombre}).Build()
}

func (h *Handler) listSubsidies(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalogos.subsidies")
	defer span.End()

	subsidies, err := h.svc.Subsidies(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.SubsidyResponse, 0, len(subsidies))
	for _, s := range subsidies {
		out = append(out, dto.SubsidyResponse{ID: s.ID, Nombre: s.Nombre})
	}
	return b.WithData(out).Build()
}

func (h *Handler) createSubsidy(c echo.Context) error {
	b := response.New(c)
	actor := middleware.ActorFrom(c)

	var payload struct {
		Nombre string `json:"nombre"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalogos.createSubsidy")
	defer span.End()

	subsidy := &entity.Subsidy{Nombre: payload.Nombre}
	if err := h.svc.CreateSubsidy(ctx, actor, subsidy); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.SubsidyResponse{ID: subsidy.ID, Nombre: subsidy.Nombre}).Build()
}

func (h *Handler) listUsers(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalogos.users")
	defer span.End()

	users, err := h.svc.Users(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserResponse{ID: u.ID, Nombre: u.Nombre, Email: u.Email, Rol: string(u.Rol)})
	}
	return b.WithData(out).Build()
}
