package order

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

var repoTracer = otel.Tracer("github.com/edusupply/compras/repository/order")

// ErrNotFound is returned when a purchase order is missing.
var ErrNotFound = errors.New("purchase order not found")

// Repository encapsulates read/write access for purchase orders.
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

// Create persists a new purchase order.
func (r *Repository) Create(ctx context.Context, oc *entity.PurchaseOrder) error {
	if oc == nil {
		return errors.New("nil purchase order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("orden.codigo", oc.Codigo)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(oc).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a purchase order by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	oc := new(entity.PurchaseOrder)
	err := r.reader.NewSelect().Model(oc).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return oc, nil
}

// ListByRequest fetches the orders linked to a purchase request.
func (r *Repository) ListByRequest(ctx context.Context, compraID int64) ([]*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByRequest", trace.WithAttributes(attribute.Int64("compra.id", compraID)))
	defer span.End()

	var orders []*entity.PurchaseOrder
	err := r.reader.NewSelect().Model(&orders).
		Where("compra_id = ?", compraID).
		Order("fecha ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// Update persists changes to a purchase order.
func (r *Repository) Update(ctx context.Context, oc *entity.PurchaseOrder) error {
	if oc == nil {
		return errors.New("nil purchase order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("orden.id", oc.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(oc).WherePK().Exec(ctx)
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

// Delete removes a purchase order.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("orden.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.PurchaseOrder)(nil)).Where("id = ?", id).Exec(ctx)
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
