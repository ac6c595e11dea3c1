package entity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/edusupply/compras/internal/workflow"
)

// Unit is a "unidad requirente": the requesting organizational unit,
// typically a school.
type Unit struct {
	bun.BaseModel `bun:"table:unidades,alias:u"`

	ID        int64     `bun:",pk,autoincrement"`
	Nombre    string    `bun:"nombre"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Subsidy is a "subvención": the funding source tagging a request. The SEP
// program is identified by name.
type Subsidy struct {
	bun.BaseModel `bun:"table:subvenciones,alias:s"`

	ID        int64     `bun:",pk,autoincrement"`
	Nombre    string    `bun:"nombre"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// User is a staff member. Authentication happens upstream; this record only
// carries identity and the workflow role.
type User struct {
	bun.BaseModel `bun:"table:usuarios,alias:us"`

	ID        int64         `bun:",pk,autoincrement"`
	Nombre    string        `bun:"nombre"`
	Email     string        `bun:"email"`
	Rol       workflow.Role `bun:"rol"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
