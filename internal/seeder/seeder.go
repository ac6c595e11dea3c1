package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/database"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/workflow"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Catalogs seeds the reference catalogs if they are missing: requesting
// units, funding sources and one user per workflow role.
func (s *Seeder) Catalogs(ctx context.Context) error {
	now := time.Now().UTC()

	units := []entity.Unit{
		{Nombre: "Escuela Básica Los Aromos", CreatedAt: now},
		{Nombre: "Liceo Bicentenario Cordillera", CreatedAt: now},
		{Nombre: "Escuela Rural El Manzano", CreatedAt: now},
	}
	for _, sample := range units {
		unit := sample
		if _, err := s.db.NewInsert().Model(&unit).
			On("CONFLICT (nombre) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	subsidies := []entity.Subsidy{
		{Nombre: "SEP", CreatedAt: now},
		{Nombre: "Subvención General", CreatedAt: now},
		{Nombre: "PIE", CreatedAt: now},
	}
	for _, sample := range subsidies {
		subsidy := sample
		if _, err := s.db.NewInsert().Model(&subsidy).
			On("CONFLICT (nombre) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	users := []entity.User{
		{Nombre: "Ana Sandoval", Email: "ana.sandoval@example.cl", Rol: workflow.RoleAdmin, CreatedAt: now},
		{Nombre: "Pedro Fuentes", Email: "pedro.fuentes@example.cl", Rol: workflow.RoleManager, CreatedAt: now},
		{Nombre: "Carla Muñoz", Email: "carla.munoz@example.cl", Rol: workflow.RoleBuyer, CreatedAt: now},
		{Nombre: "Jorge Riquelme", Email: "jorge.riquelme@example.cl", Rol: workflow.RoleWarehouse, CreatedAt: now},
		{Nombre: "María Paz Soto", Email: "maria.soto@example.cl", Rol: workflow.RoleSEP, CreatedAt: now},
	}
	for _, sample := range users {
		user := sample
		if _, err := s.db.NewInsert().Model(&user).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded catalogs",
			zap.Int("unidades", len(units)),
			zap.Int("subvenciones", len(subsidies)),
			zap.Int("usuarios", len(users)),
		)
	}
	return nil
}
