package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edusupply/compras/internal/entity"
)

// UnitResponse is the wire representation of a requesting unit.
type UnitResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// SubsidyResponse is the wire representation of a funding source.
type SubsidyResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// UserResponse is the wire representation of a staff member.
type UserResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
}

// RequestResponse is the wire representation of a purchase request.
type RequestResponse struct {
	ID              int64            `json:"id"`
	NumeroOrdinario int              `json:"numero_ordinario"`
	Descripcion     string           `json:"descripcion"`
	Unidad          *UnitResponse    `json:"unidad,omitempty"`
	Comprador       *UserResponse    `json:"comprador,omitempty"`
	FechaSolicitud  *string          `json:"fecha_solicitud"`
	FechaInicio     *string          `json:"fecha_inicio"`
	Subvencion      *SubsidyResponse `json:"subvencion,omitempty"`
	Estado          string           `json:"estado"`
	Presupuesto     decimal.Decimal  `json:"presupuesto"`
	Observacion     string           `json:"observacion"`
	MotivoAnula     *string          `json:"motivo_anula"`
	Adjunto         string           `json:"adjunto"`
	Ordenes         []OrderResponse  `json:"ordenes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// AuditEntryResponse is one audit-trail line for a purchase request.
type AuditEntryResponse struct {
	ID      int64           `json:"id"`
	Usuario string          `json:"usuario"`
	Rol     string          `json:"rol"`
	Accion  string          `json:"accion"`
	Resumen string          `json:"resumen"`
	Cambios json.RawMessage `json:"cambios,omitempty"`
	Fecha   time.Time       `json:"fecha"`
}

// NewRequestResponse maps a purchase request entity to its DTO.
func NewRequestResponse(req *entity.PurchaseRequest) RequestResponse {
	out := RequestResponse{
		ID:              req.ID,
		NumeroOrdinario: req.NumeroOrdinario,
		Descripcion:     req.Descripcion,
		FechaSolicitud:  dateString(req.FechaSolicitud),
		FechaInicio:     dateString(req.FechaInicio),
		Estado:          string(req.Estado),
		Presupuesto:     req.Presupuesto,
		Observacion:     req.Observacion,
		MotivoAnula:     req.MotivoAnula,
		Adjunto:         req.Adjunto,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
	if req.Unidad != nil {
		out.Unidad = &UnitResponse{ID: req.Unidad.ID, Nombre: req.Unidad.Nombre}
	}
	if req.Comprador != nil {
		out.Comprador = &UserResponse{
			ID:     req.Comprador.ID,
			Nombre: req.Comprador.Nombre,
			Email:  req.Comprador.Email,
			Rol:    string(req.Comprador.Rol),
		}
	}
	if req.Subvencion != nil {
		out.Subvencion = &SubsidyResponse{ID: req.Subvencion.ID, Nombre: req.Subvencion.Nombre}
	}
	for _, oc := range req.Ordenes {
		if oc != nil {
			out.Ordenes = append(out.Ordenes, NewOrderResponse(oc))
		}
	}
	return out
}

// NewAuditEntryResponse maps an audit log entity to its DTO.
func NewAuditEntryResponse(log *entity.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:      log.ID,
		Usuario: log.Usuario,
		Rol:     log.Rol,
		Accion:  log.Accion,
		Resumen: log.Resumen,
		Cambios: log.Cambios,
		Fecha:   log.CreatedAt,
	}
}

func dateString(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
