package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/edusupply/compras/internal/workflow"
)

// PurchaseRequest is a "compra": the central workflow entity. State moves and
// field edits are gated by the workflow package before anything is written.
type PurchaseRequest struct {
	bun.BaseModel `bun:"table:compras,alias:c"`

	ID              int64           `bun:",pk,autoincrement"`
	NumeroOrdinario int             `bun:"numero_ordinario"`
	Descripcion     string          `bun:"descripcion,nullzero"`
	UnidadID        int64           `bun:"unidad_id,nullzero"`
	Unidad          *Unit           `bun:"rel:belongs-to,join:unidad_id=id"`
	CompradorID     int64           `bun:"comprador_id,nullzero"`
	Comprador       *User           `bun:"rel:belongs-to,join:comprador_id=id"`
	FechaSolicitud  time.Time       `bun:"fecha_solicitud,nullzero"`
	FechaInicio     time.Time       `bun:"fecha_inicio,nullzero"`
	SubvencionID    int64           `bun:"subvencion_id,nullzero"`
	Subvencion      *Subsidy        `bun:"rel:belongs-to,join:subvencion_id=id"`
	Estado          workflow.State  `bun:"estado"`
	Presupuesto     decimal.Decimal `bun:"presupuesto,nullzero"`
	Observacion     string          `bun:"observacion,nullzero"`
	// MotivoAnula is set iff Estado is anulada.
	MotivoAnula *string `bun:"motivo_anula"`
	// Adjunto references a document hosted by the external file store.
	Adjunto string `bun:"adjunto,nullzero"`

	Ordenes []*PurchaseOrder `bun:"rel:has-many,join:id=compra_id"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// AuditLog records one action taken against a purchase request.
type AuditLog struct {
	bun.BaseModel `bun:"table:registros_auditoria,alias:ra"`

	ID       int64  `bun:",pk,autoincrement"`
	CompraID int64  `bun:"compra_id"`
	Usuario  string `bun:"usuario,nullzero"`
	Rol      string `bun:"rol,nullzero"`
	// Accion is one of creacion, modificacion or eliminacion.
	Accion  string `bun:"accion"`
	Resumen string `bun:"resumen,nullzero"`
	// Cambios is the serialized field-by-field diff.
	Cambios json.RawMessage `bun:"cambios,type:jsonb,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
