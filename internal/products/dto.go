package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/habitatline/habitat-backend/internal/composition"
	"github.com/habitatline/habitat-backend/pkg/db/models"
	"github.com/habitatline/habitat-backend/pkg/enums"
)

// SlotInput is one authored line of a kit's composition. PositionUID is empty
// for newly added slots; the session mints one.
type SlotInput struct {
	SubItemID     uuid.UUID           `json:"sub_item_id"`
	Quantity      float64             `json:"quantity"`
	PositionClass enums.PositionClass `json:"position_class"`
	PositionUID   string              `json:"position_uid"`
}

// CreateDraftInput holds the validated payload for the first save of a draft.
type CreateDraftInput struct {
	SessionID        string
	Kind             enums.ProductKind
	CategoryID       uuid.UUID
	Title            string
	BaseCode         string
	Description      *string
	Tags             []string
	CollectionID     *uuid.UUID
	PrimaryColorID   *uuid.UUID
	SecondaryColorID *uuid.UUID
	LengthMm         *int
	DepthMm          *int
	HeightMm         *int
	Slots            []SlotInput
}

// UpdateInput holds optional mutation values; nil fields stay untouched.
type UpdateInput struct {
	SessionID        string
	Title            *string
	Description      *string
	Tags             *[]string
	CategoryID       *uuid.UUID
	CollectionID     *uuid.UUID
	BaseCode         *string
	PrimaryColorID   *uuid.UUID
	SecondaryColorID *uuid.UUID
	LengthMm         *int
	DepthMm          *int
	HeightMm         *int

	// Author overrides for derived values; set they win over recomputation.
	TotalLengthMm      *int
	TotalDepthMm       *int
	TotalHeightMm      *int
	CountertopLengthMm *int
	CountertopDepthMm  *int
	BasePrice          *decimal.Decimal
	FinalPrice         *decimal.Decimal

	PreviewMediaID *uuid.UUID
	MediaIDs       *[]uuid.UUID
	Slots          *[]SlotInput
}

// PublishInput finalizes a draft.
type PublishInput struct {
	SessionID  string
	FinalPrice *decimal.Decimal
}

// SlotDTO is one persisted composition line.
type SlotDTO struct {
	SubItemID     uuid.UUID           `json:"sub_item_id"`
	SubItemTitle  string              `json:"sub_item_title,omitempty"`
	SubItemSKU    string              `json:"sub_item_sku,omitempty"`
	Quantity      int                 `json:"quantity"`
	PositionClass enums.PositionClass `json:"position_class"`
	PositionUID   string              `json:"position_uid"`
	PositionOrder int                 `json:"position_order"`
}

// MediaDTO is one gallery entry.
type MediaDTO struct {
	MediaID  uuid.UUID `json:"media_id"`
	URL      string    `json:"url,omitempty"`
	ThumbURL string    `json:"thumb_url,omitempty"`
	Position int       `json:"position"`
}

// ProductDTO is the API projection of a catalog product.
type ProductDTO struct {
	ID               uuid.UUID           `json:"id"`
	Kind             enums.ProductKind   `json:"kind"`
	Status           enums.ProductStatus `json:"status"`
	CategoryID       uuid.UUID           `json:"category_id"`
	CategoryName     string              `json:"category_name,omitempty"`
	Title            string              `json:"title"`
	Description      *string             `json:"description,omitempty"`
	Tags             []string            `json:"tags"`
	CollectionID     *uuid.UUID          `json:"collection_id,omitempty"`
	BaseCode         string              `json:"base_code"`
	SKU              string              `json:"sku"`
	PrimaryColorID   *uuid.UUID          `json:"primary_color_id,omitempty"`
	SecondaryColorID *uuid.UUID          `json:"secondary_color_id,omitempty"`

	LengthMm           *int `json:"length_mm,omitempty"`
	DepthMm            *int `json:"depth_mm,omitempty"`
	HeightMm           *int `json:"height_mm,omitempty"`
	TotalLengthMm      *int `json:"total_length_mm,omitempty"`
	TotalDepthMm       *int `json:"total_depth_mm,omitempty"`
	TotalHeightMm      *int `json:"total_height_mm,omitempty"`
	CountertopLengthMm *int `json:"countertop_length_mm,omitempty"`
	CountertopDepthMm  *int `json:"countertop_depth_mm,omitempty"`

	BasePrice  decimal.Decimal `json:"base_price"`
	FinalPrice decimal.Decimal `json:"final_price"`

	IsActive       bool       `json:"is_active"`
	PreviewMediaID *uuid.UUID `json:"preview_media_id,omitempty"`

	Slots []SlotDTO  `json:"slots,omitempty"`
	Media []MediaDTO `json:"media,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecomputeDTO is the aggregate suggestion returned by an explicit recompute.
// Nothing is persisted until the author saves; countertop fields are nil for
// categories without a worktop.
type RecomputeDTO struct {
	TotalLengthMm      int                         `json:"total_length_mm"`
	TotalDepthMm       int                         `json:"total_depth_mm"`
	TotalHeightMm      int                         `json:"total_height_mm"`
	CountertopLengthMm *int                        `json:"countertop_length_mm,omitempty"`
	CountertopDepthMm  *int                        `json:"countertop_depth_mm,omitempty"`
	BasePrice          decimal.Decimal             `json:"base_price"`
	SuggestedSKU       string                      `json:"suggested_sku"`
	Warning            *composition.LengthMismatch `json:"length_mismatch,omitempty"`
}

// ListResult wraps a page of products plus the cursor for the next one.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toDTO(row *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:                 row.ID,
		Kind:               row.Kind,
		Status:             row.Status,
		CategoryID:         row.CategoryID,
		Title:              row.Title,
		Description:        row.Description,
		Tags:               append([]string{}, row.Tags...),
		CollectionID:       row.CollectionID,
		BaseCode:           row.BaseCode,
		SKU:                row.SKU,
		PrimaryColorID:     row.PrimaryColorID,
		SecondaryColorID:   row.SecondaryColorID,
		LengthMm:           row.LengthMm,
		DepthMm:            row.DepthMm,
		HeightMm:           row.HeightMm,
		TotalLengthMm:      row.TotalLengthMm,
		TotalDepthMm:       row.TotalDepthMm,
		TotalHeightMm:      row.TotalHeightMm,
		CountertopLengthMm: row.CountertopLengthMm,
		CountertopDepthMm:  row.CountertopDepthMm,
		BasePrice:          row.BasePrice,
		FinalPrice:         row.FinalPrice,
		IsActive:           row.IsActive,
		PreviewMediaID:     row.PreviewMediaID,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.Category != nil {
		dto.CategoryName = row.Category.Name
	}
	for _, slot := range row.Slots {
		slotDTO := SlotDTO{
			SubItemID:     slot.SubItemID,
			Quantity:      slot.Quantity,
			PositionClass: slot.PositionClass,
			PositionUID:   slot.PositionUID,
			PositionOrder: slot.PositionOrder,
		}
		if slot.SubItem != nil {
			slotDTO.SubItemTitle = slot.SubItem.Title
			slotDTO.SubItemSKU = slot.SubItem.SKU
		}
		dto.Slots = append(dto.Slots, slotDTO)
	}
	for _, attachment := range row.Media {
		mediaDTO := MediaDTO{
			MediaID:  attachment.MediaID,
			Position: attachment.Position,
		}
		if attachment.Media != nil {
			mediaDTO.URL = attachment.Media.URL
			if attachment.Media.ThumbURL != nil {
				mediaDTO.ThumbURL = *attachment.Media.ThumbURL
			}
		}
		dto.Media = append(dto.Media, mediaDTO)
	}
	return dto
}
