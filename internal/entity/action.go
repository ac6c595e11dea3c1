package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ActionRecord is an "acción SEP": a planned improvement action funded by the
// SEP subsidy program, tracked per unit and year.
type ActionRecord struct {
	bun.BaseModel `bun:"table:acciones_sep,alias:a"`

	ID          int64           `bun:",pk,autoincrement"`
	UnidadID    int64           `bun:"unidad_id"`
	Unidad      *Unit           `bun:"rel:belongs-to,join:unidad_id=id"`
	Anio        int             `bun:"anio"`
	Descripcion string          `bun:"descripcion"`
	Responsable string          `bun:"responsable,nullzero"`
	Monto       decimal.Decimal `bun:"monto,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
