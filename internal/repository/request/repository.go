package request

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
	"github.com/edusupply/compras/internal/workflow"
)

var repoTracer = otel.Tracer("github.com/edusupply/compras/repository/request")

// ErrNotFound is returned when a purchase request is missing.
var ErrNotFound = errors.New("purchase request not found")

// ListFilter narrows request listings.
type ListFilter struct {
	Estado      workflow.State
	UnidadID    int64
	CompradorID int64
	Anio        int
}

// Repository encapsulates read/write access for purchase requests.
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

// Create persists a new purchase request.
func (r *Repository) Create(ctx context.Context, req *entity.PurchaseRequest) error {
	if req == nil {
		return errors.New("nil purchase request")
	}
	ctx, span := repoTracer.Start(ctx, "RequestRepository.Create", trace.WithAttributes(attribute.Int("compra.numero", req.NumeroOrdinario)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(req).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a purchase request with its relations and orders.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	ctx, span := repoTracer.Start(ctx, "RequestRepository.GetByID", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	req := new(entity.PurchaseRequest)
	err := r.reader.NewSelect().Model(req).
		Relation("Unidad").
		Relation("Comprador").
		Relation("Subvencion").
		Relation("Ordenes").
		Where("c.id = ?", id).
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
	return req, nil
}

// List fetches purchase requests matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*entity.PurchaseRequest, error) {
	ctx, span := repoTracer.Start(ctx, "RequestRepository.List")
	defer span.End()

	var reqs []*entity.PurchaseRequest
	q := r.reader.NewSelect().Model(&reqs).
		Relation("Unidad").
		Relation("Comprador").
		Relation("Subvencion").
		Relation("Ordenes").
		Order("c.created_at DESC")

	if f.Estado != workflow.StateNone {
		q = q.Where("c.estado = ?", f.Estado)
	}
	if f.UnidadID != 0 {
		q = q.Where("c.unidad_id = ?", f.UnidadID)
	}
	if f.CompradorID != 0 {
		q = q.Where("c.comprador_id = ?", f.CompradorID)
	}
	if f.Anio != 0 {
		q = q.Where("EXTRACT(YEAR FROM c.created_at) = ?", f.Anio)
	}

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return reqs, nil
}

// Update persists the full current state of a purchase request.
func (r *Repository) Update(ctx context.Context, req *entity.PurchaseRequest) error {
	if req == nil {
		return errors.New("nil purchase request")
	}
	ctx, span := repoTracer.Start(ctx, "RequestRepository.Update", trace.WithAttributes(attribute.Int64("compra.id", req.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(req).WherePK().Exec(ctx)
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

// Delete removes a purchase request.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "RequestRepository.Delete", trace.WithAttributes(attribute.Int64("compra.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.PurchaseRequest)(nil)).Where("id = ?", id).Exec(ctx)
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
