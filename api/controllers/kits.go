package controllers

import (
	"net/http"

	"github.com/habitatline/habitat-backend/api/responses"
	productsvc "github.com/habitatline/habitat-backend/internal/products"
	"github.com/habitatline/habitat-backend/pkg/enums"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

// CreateKitDraft persists the first save of a composite kit draft. The body
// matches the product draft payload; the kind is implied by the route.
func CreateKitDraft(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return createDraft(svc, logg, enums.ProductKindKit)
}

// RecomputeKit re-derives the kit's aggregates and suggested SKU from its
// current composition without persisting anything.
func RecomputeKit(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Recompute(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
