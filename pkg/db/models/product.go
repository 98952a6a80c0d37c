package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/habitatline/habitat-backend/pkg/enums"
)

// Product is a catalog entity: an atomic module/catalog item or an assembled
// kit solution. Drafts persist early (inactive, zero price) so media can be
// attached against a stable id before the author finishes.
type Product struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind       enums.ProductKind   `gorm:"column:kind;type:product_kind;not null"`
	Status     enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'draft'"`
	CategoryID uuid.UUID           `gorm:"column:category_id;type:uuid;not null"`

	Title        string         `gorm:"column:title;not null"`
	Description  *string        `gorm:"column:description"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	CollectionID *uuid.UUID     `gorm:"column:collection_id;type:uuid"`

	// Identity attributes the SKU derives from.
	BaseCode         string     `gorm:"column:base_code;not null"`
	SKU              string     `gorm:"column:sku;not null"`
	SKUNonce         string     `gorm:"column:sku_nonce;not null;default:''"`
	PrimaryColorID   *uuid.UUID `gorm:"column:primary_color_id;type:uuid"`
	SecondaryColorID *uuid.UUID `gorm:"column:secondary_color_id;type:uuid"`

	// Physical attributes. Atomic products carry their own dimensions;
	// kits carry totals derived from their slots.
	LengthMm           *int `gorm:"column:length_mm"`
	DepthMm            *int `gorm:"column:depth_mm"`
	HeightMm           *int `gorm:"column:height_mm"`
	TotalLengthMm      *int `gorm:"column:total_length_mm"`
	TotalDepthMm       *int `gorm:"column:total_depth_mm"`
	TotalHeightMm      *int `gorm:"column:total_height_mm"`
	CountertopLengthMm *int `gorm:"column:countertop_length_mm"`
	CountertopDepthMm  *int `gorm:"column:countertop_depth_mm"`

	BasePrice  decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null;default:0"`
	FinalPrice decimal.Decimal `gorm:"column:final_price;type:numeric(12,2);not null;default:0"`

	IsActive       bool       `gorm:"column:is_active;not null;default:false"`
	PreviewMediaID *uuid.UUID `gorm:"column:preview_media_id;type:uuid"`

	Category       *Category         `gorm:"foreignKey:CategoryID"`
	Collection     *Collection       `gorm:"foreignKey:CollectionID"`
	PrimaryColor   *Color            `gorm:"foreignKey:PrimaryColorID"`
	SecondaryColor *Color            `gorm:"foreignKey:SecondaryColorID"`
	Slots          []CompositionSlot `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Media          []MediaAttachment `gorm:"foreignKey:EntityID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
