package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/internal/catalog"
	"github.com/apothex/pricing-backend/internal/customers"
	"github.com/apothex/pricing-backend/internal/growth"
	"github.com/apothex/pricing-backend/internal/pricelist"
	"github.com/apothex/pricing-backend/internal/sales"
	"github.com/apothex/pricing-backend/internal/validity"
	"github.com/apothex/pricing-backend/internal/waterfall"
	"github.com/apothex/pricing-backend/pkg/config"
	"github.com/apothex/pricing-backend/pkg/db/models"
	"github.com/apothex/pricing-backend/pkg/enums"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/logger"
	"github.com/apothex/pricing-backend/pkg/metrics"
	"github.com/apothex/pricing-backend/pkg/redis"
	"github.com/apothex/pricing-backend/pkg/types"
)

const (
	opResolveDiscount   = "resolve_discount"
	opGeneratePriceList = "generate_pricelist"
	opComputeGrowth     = "compute_growth"
	opBuildWaterfall    = "build_waterfall"
)

// priceCache is the slice of the redis client used for price lists.
type priceCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	PriceListKey(customerID, date string) string
}

var _ priceCache = (*redis.Client)(nil)

// Service orchestrates the pricing engine over the persistence layer.
type Service interface {
	ResolveDiscount(ctx context.Context, customerID uuid.UUID, asOf time.Time) (*models.CustomerDiscount, error)
	GeneratePriceList(ctx context.Context, customerID uuid.UUID, asOf time.Time) (*pricelist.Result, error)
	ComputeGrowth(ctx context.Context, granularity enums.Granularity, baseline, current types.Period) (*growth.Summary, error)
	BuildWaterfall(ctx context.Context, input WaterfallInput) ([]waterfall.Step, error)
}

type service struct {
	catalogRepo  catalog.Repository
	customerRepo customers.Repository
	salesRepo    sales.Repository
	cache        priceCache
	cacheCfg     config.PriceCacheConfig
	metrics      *metrics.EngineMetrics
	logg         *logger.Logger
}

// NewService wires the pricing orchestrator. The cache and metrics are
// optional; pass nil to disable either.
func NewService(
	catalogRepo catalog.Repository,
	customerRepo customers.Repository,
	salesRepo sales.Repository,
	cache priceCache,
	cacheCfg config.PriceCacheConfig,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if salesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		salesRepo:    salesRepo,
		cache:        cache,
		cacheCfg:     cacheCfg,
		metrics:      engineMetrics,
		logg:         logg,
	}, nil
}

// WaterfallInput identifies the revenue slice to bridge.
type WaterfallInput struct {
	CustomerID uuid.UUID
	Period     types.Period
	Deductions []waterfall.Deduction
}

func (s *service) ResolveDiscount(ctx context.Context, customerID uuid.UUID, asOf time.Time) (*models.CustomerDiscount, error) {
	started := time.Now()

	resolver, err := s.resolverFor(ctx, customerID)
	if err != nil {
		s.metrics.IncFailure(opResolveDiscount)
		return nil, err
	}

	rec, err := resolver.ResolveDiscount(customerID, asOf)
	s.metrics.ObserveDuration(opResolveDiscount, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(opResolveDiscount)
		return nil, mapEngineError(err, "no discount in effect on the requested date")
	}
	s.metrics.IncSuccess(opResolveDiscount)
	return rec, nil
}

func (s *service) GeneratePriceList(ctx context.Context, customerID uuid.UUID, asOf time.Time) (*pricelist.Result, error) {
	started := time.Now()
	day := types.Midnight(asOf)

	if cached := s.cachedPriceList(ctx, customerID, day); cached != nil {
		return cached, nil
	}

	resolver, err := s.resolverFor(ctx, customerID)
	if err != nil {
		s.metrics.IncFailure(opGeneratePriceList)
		return nil, err
	}
	products, err := s.catalogRepo.ListActive(ctx)
	if err != nil {
		s.metrics.IncFailure(opGeneratePriceList)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	result, err := resolver.Generate(customerID, products, day)
	s.metrics.ObserveDuration(opGeneratePriceList, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(opGeneratePriceList)
		return nil, mapEngineError(err, "generate price list")
	}
	s.metrics.IncSuccess(opGeneratePriceList)

	s.storePriceList(ctx, customerID, day, &result)
	return &result, nil
}

func (s *service) ComputeGrowth(ctx context.Context, granularity enums.Granularity, baseline, current types.Period) (*growth.Summary, error) {
	started := time.Now()

	from, to := spanOf(baseline, current)
	transactions, err := s.salesRepo.ListBetween(ctx, from, to)
	if err != nil {
		s.metrics.IncFailure(opComputeGrowth)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transactions")
	}

	summary, err := growth.ComputeGrowth(transactions, granularity, baseline, current)
	s.metrics.ObserveDuration(opComputeGrowth, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(opComputeGrowth)
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute growth")
	}
	s.metrics.IncSuccess(opComputeGrowth)
	return summary, nil
}

// BuildWaterfall bridges the customer's gross revenue in the period down to
// net realized. Gross lines come from the sales ledger priced at the current
// AIP; a transaction whose SKU is no longer in the catalog is a data
// integrity failure, not something to skip quietly.
func (s *service) BuildWaterfall(ctx context.Context, input WaterfallInput) ([]waterfall.Step, error) {
	started := time.Now()

	if _, err := s.customerRepo.FindCustomer(ctx, input.CustomerID); err != nil {
		s.metrics.IncFailure(opBuildWaterfall)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	transactions, err := s.salesRepo.ListByCustomerBetween(ctx, input.CustomerID, input.Period.Start, input.Period.End)
	if err != nil {
		s.metrics.IncFailure(opBuildWaterfall)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transactions")
	}
	if len(transactions) == 0 {
		s.metrics.IncFailure(opBuildWaterfall)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no transactions in period")
	}

	lines, err := s.grossLines(ctx, transactions)
	if err != nil {
		s.metrics.IncFailure(opBuildWaterfall)
		return nil, err
	}

	resolver, err := s.resolverFor(ctx, input.CustomerID)
	if err != nil {
		s.metrics.IncFailure(opBuildWaterfall)
		return nil, err
	}
	builder, err := waterfall.NewBuilder(resolver)
	if err != nil {
		s.metrics.IncFailure(opBuildWaterfall)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build waterfall")
	}

	steps, err := builder.Build(lines, input.CustomerID, input.Period.End, input.Deductions)
	s.metrics.ObserveDuration(opBuildWaterfall, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(opBuildWaterfall)
		var negErr *waterfall.NegativeNetError
		if errors.As(err, &negErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, err, "net revenue went negative").
				WithDetails(map[string]any{"step": negErr.Step, "customer_id": negErr.CustomerID})
		}
		return nil, mapEngineError(err, "build waterfall")
	}
	s.metrics.IncSuccess(opBuildWaterfall)
	return steps, nil
}

// resolverFor builds a per-call resolver over the customer's discounts. The
// index is cheap for one customer and guarantees every computation sees a
// consistent snapshot of the agreements.
func (s *service) resolverFor(ctx context.Context, customerID uuid.UUID) (*pricelist.Resolver, error) {
	discounts, err := s.customerRepo.ListDiscountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discounts")
	}
	resolver, err := pricelist.NewResolver(validity.NewIndex(discounts))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build resolver")
	}
	return resolver, nil
}

// grossLines aggregates ledger quantities per SKU and prices them at the
// active AIP. Unknown SKUs abort with the full list so the source data can
// be fixed in one pass.
func (s *service) grossLines(ctx context.Context, transactions []models.SalesTransaction) ([]waterfall.GrossLine, error) {
	qtyBySKU := make(map[string]int)
	for _, tx := range transactions {
		qtyBySKU[tx.SKU] += tx.Qty
	}

	skus := make([]string, 0, len(qtyBySKU))
	for sku := range qtyBySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	var unknown []string
	lines := make([]waterfall.GrossLine, 0, len(skus))
	for _, sku := range skus {
		product, err := s.catalogRepo.FindActiveBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unknown = append(unknown, sku)
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		lines = append(lines, waterfall.GrossLine{
			ProductID: product.ID,
			SKU:       sku,
			AIP:       product.AIP,
			Qty:       qtyBySKU[sku],
		})
	}
	if len(unknown) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDataIntegrity, "transactions reference SKUs missing from the catalog").
			WithDetails(map[string]any{"skus": unknown})
	}
	return lines, nil
}

func (s *service) cachedPriceList(ctx context.Context, customerID uuid.UUID, day time.Time) *pricelist.Result {
	if s.cache == nil || !s.cacheCfg.Enabled {
		return nil
	}
	key := s.cache.PriceListKey(customerID.String(), day.Format(types.DateLayout))
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrMiss) {
			s.logg.Warn(ctx, "price list cache read failed")
		}
		s.metrics.IncCacheMiss()
		return nil
	}
	var result pricelist.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logg.Warn(ctx, "price list cache entry corrupt")
		s.metrics.IncCacheMiss()
		return nil
	}
	s.metrics.IncCacheHit()
	return &result
}

func (s *service) storePriceList(ctx context.Context, customerID uuid.UUID, day time.Time, result *pricelist.Result) {
	if s.cache == nil || !s.cacheCfg.Enabled {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	key := s.cache.PriceListKey(customerID.String(), day.Format(types.DateLayout))
	if err := s.cache.Set(ctx, key, string(payload), s.cacheCfg.TTL); err != nil {
		s.logg.Warn(ctx, "price list cache write failed")
	}
}

func spanOf(a, b types.Period) (time.Time, time.Time) {
	from, to := a.Start, a.End
	if b.Start.Before(from) {
		from = b.Start
	}
	if b.End.After(to) {
		to = b.End
	}
	return from, to
}

// mapEngineError lifts engine sentinels into coded errors for the API layer.
func mapEngineError(err error, message string) error {
	var ambErr *validity.AmbiguousError
	if errors.As(err, &ambErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, err, "overlapping discount agreements").
			WithDetails(map[string]any{
				"customer_id": ambErr.CustomerID,
				"as_of":       ambErr.AsOf.Format(types.DateLayout),
				"record_ids":  ambErr.RecordIDs,
			})
	}
	if errors.Is(err, validity.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
