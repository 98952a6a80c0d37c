package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitatline/habitat-backend/api/controllers"
	"github.com/habitatline/habitat-backend/api/middleware"
	productsvc "github.com/habitatline/habitat-backend/internal/products"
	"github.com/habitatline/habitat-backend/internal/refdata"
	variantsvc "github.com/habitatline/habitat-backend/internal/variants"
	"github.com/habitatline/habitat-backend/pkg/config"
	"github.com/habitatline/habitat-backend/pkg/db"
	"github.com/habitatline/habitat-backend/pkg/logger"
	pkgredis "github.com/habitatline/habitat-backend/pkg/redis"
)

// NewRouter wires the HTTP surface: health probes, catalog reference data,
// and the product/kit authoring lifecycle.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	productService productsvc.Service,
	variantService variantsvc.Service,
	refdataService refdata.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.CatalogCategories(refdataService, logg))
			r.Get("/collections", controllers.CatalogCollections(refdataService, logg))
			r.Get("/colors", controllers.CatalogColors(refdataService, logg))
			r.Post("/{kind}/invalidate", controllers.CatalogInvalidate(refdataService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/draft", controllers.CreateProductDraft(productService, logg))

			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(productService, logg))
				r.Patch("/", controllers.UpdateProduct(productService, logg))
				r.Post("/publish", controllers.PublishProduct(productService, logg))
				r.Post("/duplicate", controllers.DuplicateProduct(productService, logg))
				r.Get("/variants", controllers.ProductVariants(variantService, logg))
				r.Get("/variants/match", controllers.MatchVariant(variantService, logg))
			})
		})

		// Kits share the product lifecycle; the routes pin the kind and add
		// the composition recompute.
		r.Route("/kits", func(r chi.Router) {
			r.Post("/draft", controllers.CreateKitDraft(productService, logg))

			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(productService, logg))
				r.Patch("/", controllers.UpdateProduct(productService, logg))
				r.Post("/recompute", controllers.RecomputeKit(productService, logg))
				r.Post("/publish", controllers.PublishProduct(productService, logg))
				r.Post("/duplicate", controllers.DuplicateProduct(productService, logg))
			})
		})
	})

	return r
}
