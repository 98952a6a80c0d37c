package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/habitatline/habitat-backend/api/responses"
	"github.com/habitatline/habitat-backend/api/validators"
	productsvc "github.com/habitatline/habitat-backend/internal/products"
	"github.com/habitatline/habitat-backend/pkg/enums"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
	"github.com/habitatline/habitat-backend/pkg/logger"
	"github.com/habitatline/habitat-backend/pkg/pagination"
)

// ListProducts pages the catalog newest-first, filtered by query params.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := productsvc.ListFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParseProductKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
				return
			}
			filters.Kind = &kind
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseProductStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id"))
				return
			}
			filters.CategoryID = &categoryID
		}

		result, err := svc.List(r.Context(), productsvc.ListInput{
			Filters: filters,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetProduct returns one product with its composition and gallery.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// CreateProductDraft persists the first save of an atomic product draft.
func CreateProductDraft(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return createDraft(svc, logg, "")
}

func createDraft(svc productsvc.Service, logg *logger.Logger, forcedKind enums.ProductKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(draftSessionID(r), forcedKind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateDraft(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial edit and re-derives the SKU.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput(draftSessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// PublishProduct finalizes a draft with its selling price.
func PublishProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload publishRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Publish(r.Context(), id, productsvc.PublishInput{
			SessionID:  draftSessionID(r),
			FinalPrice: payload.FinalPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DuplicateProduct clones an entity into a fresh draft with new identity.
func DuplicateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Duplicate(r.Context(), id, draftSessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type slotRequest struct {
	SubItemID     uuid.UUID `json:"sub_item_id" validate:"required"`
	Quantity      float64   `json:"quantity"`
	PositionClass string    `json:"position_class,omitempty"`
	PositionUID   string    `json:"position_uid,omitempty"`
}

func (s slotRequest) toInput() (productsvc.SlotInput, error) {
	class := enums.PositionClassComponent
	if raw := strings.TrimSpace(s.PositionClass); raw != "" {
		parsed, err := enums.ParsePositionClass(raw)
		if err != nil {
			return productsvc.SlotInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid position_class")
		}
		class = parsed
	}
	return productsvc.SlotInput{
		SubItemID:     s.SubItemID,
		Quantity:      s.Quantity,
		PositionClass: class,
		PositionUID:   strings.TrimSpace(s.PositionUID),
	}, nil
}

func slotInputs(reqs []slotRequest) ([]productsvc.SlotInput, error) {
	if reqs == nil {
		return nil, nil
	}
	slots := make([]productsvc.SlotInput, 0, len(reqs))
	for _, req := range reqs {
		slot, err := req.toInput()
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

type createDraftRequest struct {
	Kind             string        `json:"kind,omitempty"`
	CategoryID       uuid.UUID     `json:"category_id" validate:"required"`
	Title            string        `json:"title" validate:"required"`
	BaseCode         string        `json:"base_code" validate:"required"`
	Description      *string       `json:"description,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	CollectionID     *uuid.UUID    `json:"collection_id,omitempty"`
	PrimaryColorID   *uuid.UUID    `json:"primary_color_id,omitempty"`
	SecondaryColorID *uuid.UUID    `json:"secondary_color_id,omitempty"`
	LengthMm         *int          `json:"length_mm,omitempty"`
	DepthMm          *int          `json:"depth_mm,omitempty"`
	HeightMm         *int          `json:"height_mm,omitempty"`
	Slots            []slotRequest `json:"slots,omitempty"`
}

func (r createDraftRequest) toCreateInput(sessionID string, forcedKind enums.ProductKind) (productsvc.CreateDraftInput, error) {
	kind := forcedKind
	if kind == "" {
		parsed, err := enums.ParseProductKind(strings.TrimSpace(r.Kind))
		if err != nil {
			return productsvc.CreateDraftInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
		}
		kind = parsed
	}

	slots, err := slotInputs(r.Slots)
	if err != nil {
		return productsvc.CreateDraftInput{}, err
	}

	return productsvc.CreateDraftInput{
		SessionID:        sessionID,
		Kind:             kind,
		CategoryID:       r.CategoryID,
		Title:            strings.TrimSpace(r.Title),
		BaseCode:         r.BaseCode,
		Description:      r.Description,
		Tags:             r.Tags,
		CollectionID:     r.CollectionID,
		PrimaryColorID:   r.PrimaryColorID,
		SecondaryColorID: r.SecondaryColorID,
		LengthMm:         r.LengthMm,
		DepthMm:          r.DepthMm,
		HeightMm:         r.HeightMm,
		Slots:            slots,
	}, nil
}

type updateProductRequest struct {
	Title            *string     `json:"title,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Tags             *[]string   `json:"tags,omitempty"`
	CategoryID       *uuid.UUID  `json:"category_id,omitempty"`
	CollectionID     *uuid.UUID  `json:"collection_id,omitempty"`
	BaseCode         *string     `json:"base_code,omitempty"`
	PrimaryColorID   *uuid.UUID  `json:"primary_color_id,omitempty"`
	SecondaryColorID *uuid.UUID  `json:"secondary_color_id,omitempty"`
	LengthMm         *int        `json:"length_mm,omitempty"`
	DepthMm          *int        `json:"depth_mm,omitempty"`
	HeightMm         *int        `json:"height_mm,omitempty"`

	TotalLengthMm      *int             `json:"total_length_mm,omitempty"`
	TotalDepthMm       *int             `json:"total_depth_mm,omitempty"`
	TotalHeightMm      *int             `json:"total_height_mm,omitempty"`
	CountertopLengthMm *int             `json:"countertop_length_mm,omitempty"`
	CountertopDepthMm  *int             `json:"countertop_depth_mm,omitempty"`
	BasePrice          *decimal.Decimal `json:"base_price,omitempty"`
	FinalPrice         *decimal.Decimal `json:"final_price,omitempty"`

	PreviewMediaID *uuid.UUID     `json:"preview_media_id,omitempty"`
	MediaIDs       *[]uuid.UUID   `json:"media_ids,omitempty"`
	Slots          *[]slotRequest `json:"slots,omitempty"`
}

func (r updateProductRequest) toUpdateInput(sessionID string) (productsvc.UpdateInput, error) {
	input := productsvc.UpdateInput{
		SessionID:          sessionID,
		Title:              r.Title,
		Description:        r.Description,
		Tags:               r.Tags,
		CategoryID:         r.CategoryID,
		CollectionID:       r.CollectionID,
		BaseCode:           r.BaseCode,
		PrimaryColorID:     r.PrimaryColorID,
		SecondaryColorID:   r.SecondaryColorID,
		LengthMm:           r.LengthMm,
		DepthMm:            r.DepthMm,
		HeightMm:           r.HeightMm,
		TotalLengthMm:      r.TotalLengthMm,
		TotalDepthMm:       r.TotalDepthMm,
		TotalHeightMm:      r.TotalHeightMm,
		CountertopLengthMm: r.CountertopLengthMm,
		CountertopDepthMm:  r.CountertopDepthMm,
		BasePrice:          r.BasePrice,
		FinalPrice:         r.FinalPrice,
		PreviewMediaID:     r.PreviewMediaID,
		MediaIDs:           r.MediaIDs,
	}

	if r.Slots != nil {
		slots, err := slotInputs(*r.Slots)
		if err != nil {
			return productsvc.UpdateInput{}, err
		}
		input.Slots = &slots
	}

	return input, nil
}

type publishRequest struct {
	FinalPrice *decimal.Decimal `json:"final_price,omitempty"`
}
