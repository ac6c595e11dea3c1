package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edusupply/compras/internal/entity"
)

// OrderResponse is the wire representation of a purchase order.
type OrderResponse struct {
	ID           int64           `json:"id"`
	CompraID     int64           `json:"compra_id"`
	Codigo       string          `json:"codigo"`
	Fecha        *string         `json:"fecha"`
	Valor        decimal.Decimal `json:"valor"`
	PlazoEntrega *int            `json:"plazo_entrega"`
	Documento    string          `json:"documento"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DeliveryResponse carries a computed delivery date.
type DeliveryResponse struct {
	OrdenID      int64  `json:"orden_id"`
	FechaEntrega string `json:"fecha_entrega"`
}

// NewOrderResponse maps a purchase order entity to its DTO.
func NewOrderResponse(oc *entity.PurchaseOrder) OrderResponse {
	return OrderResponse{
		ID:           oc.ID,
		CompraID:     oc.CompraID,
		Codigo:       oc.Codigo,
		Fecha:        dateString(oc.Fecha),
		Valor:        oc.Valor,
		PlazoEntrega: oc.PlazoEntrega,
		Documento:    oc.Documento,
		CreatedAt:    oc.CreatedAt,
		UpdatedAt:    oc.UpdatedAt,
	}
}
