package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
)

// draftSessionHeader carries the client-minted authoring session id. The
// lifecycle service uses it to collapse double submits into one draft.
const draftSessionHeader = "X-Draft-Session"

func draftSessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(draftSessionHeader))
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
