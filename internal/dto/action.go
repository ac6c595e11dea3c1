package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edusupply/compras/internal/entity"
)

// ActionResponse is the wire representation of a SEP action record.
type ActionResponse struct {
	ID          int64           `json:"id"`
	Unidad      *UnitResponse   `json:"unidad,omitempty"`
	UnidadID    int64           `json:"unidad_id"`
	Anio        int             `json:"anio"`
	Descripcion string          `json:"descripcion"`
	Responsable string          `json:"responsable"`
	Monto       decimal.Decimal `json:"monto"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewActionResponse maps a SEP action entity to its DTO.
func NewActionResponse(rec *entity.ActionRecord) ActionResponse {
	out := ActionResponse{
		ID:          rec.ID,
		UnidadID:    rec.UnidadID,
		Anio:        rec.Anio,
		Descripcion: rec.Descripcion,
		Responsable: rec.Responsable,
		Monto:       rec.Monto,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Unidad != nil {
		out.Unidad = &UnitResponse{ID: rec.Unidad.ID, Nombre: rec.Unidad.Nombre}
	}
	return out
}
