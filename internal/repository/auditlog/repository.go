package auditlog

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/edusupply/compras/internal/database"
	"github.com/edusupply/compras/internal/entity"
)

var repoTracer = otel.Tracer("github.com/edusupply/compras/repository/auditlog")

// Repository stores the audit trail of purchase-request actions.
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

// Append records one audit entry.
func (r *Repository) Append(ctx context.Context, log *entity.AuditLog) error {
	if log == nil {
		return errors.New("nil audit log")
	}
	ctx, span := repoTracer.Start(ctx, "AuditLogRepository.Append", trace.WithAttributes(
		attribute.Int64("compra.id", log.CompraID),
		attribute.String("accion", log.Accion),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(log).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListByRequest fetches the audit trail of a purchase request, newest first.
func (r *Repository) ListByRequest(ctx context.Context, compraID int64) ([]*entity.AuditLog, error) {
	ctx, span := repoTracer.Start(ctx, "AuditLogRepository.ListByRequest", trace.WithAttributes(attribute.Int64("compra.id", compraID)))
	defer span.End()

	var logs []*entity.AuditLog
	err := r.reader.NewSelect().Model(&logs).
		Where("compra_id = ?", compraID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return logs, nil
}
