package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/cache"
	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/report"
	requestrepo "github.com/edusupply/compras/internal/repository/request"
	"github.com/edusupply/compras/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/edusupply/compras/service/report")

// Service builds the investment report, memoising results per filter set.
type Service struct {
	requests *requestrepo.Repository
	cache    cache.Store
	ttl      time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Requests *requestrepo.Repository
	Cache    cache.Store
	Config   config.Config
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		requests: p.Requests,
		cache:    p.Cache,
		ttl:      p.Config.Report.CacheTTL,
		logger:   p.Logger,
	}
}

// Investment returns the aggregated investment report for a year and
// optional filters. Results are served from cache when fresh.
func (s *Service) Investment(ctx context.Context, f report.Filter) (report.Report, error) {
	if f.Year <= 0 {
		return report.Report{}, errorbank.BadRequest("report year is required")
	}
	if f.Month != nil && (*f.Month < 0 || *f.Month > 11) {
		return report.Report{}, errorbank.BadRequest("report month must be between 0 and 11")
	}

	ctx, span := serviceTracer.Start(ctx, "ReportService.Investment", trace.WithAttributes(attribute.Int("anio", f.Year)))
	defer span.End()

	key := cacheKey(f)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var rep report.Report
		if err := json.Unmarshal(cached, &rep); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return rep, nil
		}
		s.logger.Warn("discarding corrupt cached report", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("report cache lookup failed", zap.String("key", key), zap.Error(err))
	}

	records, err := s.requests.List(ctx, requestrepo.ListFilter{Anio: f.Year})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return report.Report{}, errorbank.Internal("failed to load purchase requests", errorbank.WithCause(err))
	}

	rep := report.Build(records, f)

	if payload, err := json.Marshal(rep); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("failed to memoise report", zap.String("key", key), zap.Error(err))
		}
	}
	return rep, nil
}

func cacheKey(f report.Filter) string {
	month := -1
	if f.Month != nil {
		month = *f.Month
	}
	return fmt.Sprintf("informes:inversion:%d:%d:%d:%s", f.Year, f.UnitID, month, f.SubsidyContains)
}
