package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apothex/pricing-backend/api/controllers"
	"github.com/apothex/pricing-backend/api/middleware"
	"github.com/apothex/pricing-backend/internal/catalog"
	"github.com/apothex/pricing-backend/internal/customers"
	"github.com/apothex/pricing-backend/internal/pricing"
	"github.com/apothex/pricing-backend/internal/sales"
	"github.com/apothex/pricing-backend/pkg/config"
	"github.com/apothex/pricing-backend/pkg/db"
	"github.com/apothex/pricing-backend/pkg/logger"
	"github.com/apothex/pricing-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	customersService customers.Service,
	salesService sales.Service,
	pricingService pricing.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.DeactivateProduct(catalogService, logg))
			r.Put("/{sku}/aip", controllers.ChangeProductAIP(catalogService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(customersService, logg))
			r.Post("/", controllers.CreateCustomer(customersService, logg))
			r.Get("/{customerId}", controllers.GetCustomer(customersService, logg))

			r.Route("/{customerId}/discounts", func(r chi.Router) {
				r.Get("/", controllers.ListDiscounts(customersService, logg))
				r.Post("/", controllers.AddDiscount(customersService, logg))
			})
			r.Get("/{customerId}/discount", controllers.EffectiveDiscount(pricingService, logg))
			r.Get("/{customerId}/pricelist", controllers.PriceList(pricingService, logg))
			r.Post("/{customerId}/waterfall", controllers.Waterfall(pricingService, logg))
		})
		r.Delete("/discounts/{discountId}", controllers.RemoveDiscount(customersService, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.RecordTransaction(salesService, logg))
			r.Post("/import", controllers.ImportTransactions(salesService, logg))
		})

		r.Post("/growth", controllers.Growth(pricingService, logg))
	})

	return r
}
