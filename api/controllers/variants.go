package controllers

import (
	"net/http"
	"strings"

	"github.com/habitatline/habitat-backend/api/responses"
	"github.com/habitatline/habitat-backend/api/validators"
	variantsvc "github.com/habitatline/habitat-backend/internal/variants"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

// ProductVariants resolves the variant family a product belongs to: its size
// run, color groups, and the members backing both axes.
func ProductVariants(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		family, err := svc.ResolveFamily(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, family)
	}
}

// MatchVariant finds the family member reached by moving along one axis:
// ?size_mm= keeps the color, ?color= keeps the size.
func MatchVariant(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req variantsvc.MatchRequest

		if raw := strings.TrimSpace(r.URL.Query().Get("size_mm")); raw != "" {
			size, err := validators.ParseQueryInt(r, "size_mm", 0, 1, 100000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			req.SizeMm = &size
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("color")); raw != "" {
			req.ColorKey = &raw
		}

		member, err := svc.Match(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, member)
	}
}
