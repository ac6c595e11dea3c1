package action

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

var repoTracer = otel.Tracer("github.com/edusupply/compras/repository/action")

// ErrNotFound is returned when a SEP action record is missing.
var ErrNotFound = errors.New("action record not found")

// ListFilter narrows action listings.
type ListFilter struct {
	UnidadID int64
	Anio     int
}

// Repository encapsulates read/write access for SEP action records.
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

// Create persists a new action record.
func (r *Repository) Create(ctx context.Context, rec *entity.ActionRecord) error {
	if rec == nil {
		return errors.New("nil action record")
	}
	ctx, span := repoTracer.Start(ctx, "ActionRepository.Create", trace.WithAttributes(attribute.Int64("unidad.id", rec.UnidadID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an action record by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.ActionRecord, error) {
	ctx, span := repoTracer.Start(ctx, "ActionRepository.GetByID", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	rec := new(entity.ActionRecord)
	err := r.reader.NewSelect().Model(rec).
		Relation("Unidad").
		Where("a.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rec, nil
}

// List fetches action records matching the filter.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*entity.ActionRecord, error) {
	ctx, span := repoTracer.Start(ctx, "ActionRepository.List")
	defer span.End()

	var recs []*entity.ActionRecord
	q := r.reader.NewSelect().Model(&recs).
		Relation("Unidad").
		Order("a.created_at DESC")

	if f.UnidadID != 0 {
		q = q.Where("a.unidad_id = ?", f.UnidadID)
	}
	if f.Anio != 0 {
		q = q.Where("a.anio = ?", f.Anio)
	}

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return recs, nil
}

// Update persists changes to an action record.
func (r *Repository) Update(ctx context.Context, rec *entity.ActionRecord) error {
	if rec == nil {
		return errors.New("nil action record")
	}
	ctx, span := repoTracer.Start(ctx, "ActionRepository.Update", trace.WithAttributes(attribute.Int64("accion.id", rec.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(rec).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// Delete removes an action record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "ActionRepository.Delete", trace.WithAttributes(attribute.Int64("accion.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.ActionRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}
