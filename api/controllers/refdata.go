package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitatline/habitat-backend/api/responses"
	"github.com/habitatline/habitat-backend/internal/refdata"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

// CatalogCategories serves the category lookup table through the read cache.
func CatalogCategories(svc refdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CatalogCollections serves the collection lookup table through the read cache.
func CatalogCollections(svc refdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Collections(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CatalogColors serves the color lookup table through the read cache.
func CatalogColors(svc refdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Colors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CatalogInvalidate drops one cached lookup table so the next read refills it.
func CatalogInvalidate(svc refdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		if err := svc.Invalidate(r.Context(), kind); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"invalidated": kind})
	}
}
