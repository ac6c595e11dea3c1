// Package catalog persists the reference data the purchasing flow hangs off:
// requesting units, subsidies and users.
package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/database"
	"github.com/edusupply/compras/internal/entity"
)

var repoTracer = otel.Tracer("github.com/edusupply/compras/repository/catalog")

// ErrNotFound is returned when a catalog record is missing.
var ErrNotFound = errors.New("catalog record not found")

// Repository encapsulates access to units, subsidies and users.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Units lists every requesting unit by name.
func (r *Repository) Units(ctx context.Context) ([]*entity.Unit, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Units")
	defer span.End()

	var units []*entity.Unit
	if err := r.reader.NewSelect().Model(&units).Order("nombre ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return units, nil
}

// CreateUnit persists a new requesting unit.
func (r *Repository) CreateUnit(ctx context.Context, unit *entity.Unit) error {
	if unit == nil {
		return errors.New("nil unit")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateUnit", trace.WithAttributes(attribute.String("unidad.nombre", unit.Nombre)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(unit).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Subsidies lists every subsidy by name.
func (r *Repository) Subsidies(ctx context.Context) ([]*entity.Subsidy, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Subsidies")
	defer span.End()

	var subsidies []*entity.Subsidy
	if err := r.reader.NewSelect().Model(&subsidies).Order("nombre ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return subsidies, nil
}

// CreateSubsidy persists a new subsidy.
func (r *Repository) CreateSubsidy(ctx context.Context, subsidy *entity.Subsidy) error {
	if subsidy == nil {
		return errors.New("nil subsidy")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateSubsidy", trace.WithAttributes(attribute.String("subvencion.nombre", subsidy.Nombre)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(subsidy).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Users lists every user by name.
func (r *Repository) Users(ctx context.Context) ([]*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Users")
	defer span.End()

	var users []*entity.User
	if err := r.reader.NewSelect().Model(&users).Order("nombre ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return users, nil
}

// GetUser fetches a user by primary key.
func (r *Repository) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetUser", trace.WithAttributes(attribute.Int64("usuario.id", id)))
	defer span.End()

	user := new(entity.User)
	err := r.reader.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return user, nil
}
