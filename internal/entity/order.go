package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// PurchaseOrder is an "orden de compra": a priced fulfillment instance linked
// to a purchase request. The owning request never changes after creation.
type PurchaseOrder struct {
	bun.BaseModel `bun:"table:ordenes_compra,alias:oc"`

	ID       int64           `bun:",pk,autoincrement"`
	CompraID int64           `bun:"compra_id"`
	Codigo   string          `bun:"codigo"`
	Fecha    time.Time       `bun:"fecha,nullzero"`
	Valor    decimal.Decimal `bun:"valor"`
	// PlazoEntrega is the delivery term in business days.
	PlazoEntrega *int `bun:"plazo_entrega"`
	// Documento references an attachment in the external file store.
	Documento string `bun:"documento,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
