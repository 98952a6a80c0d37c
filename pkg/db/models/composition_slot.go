package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/habitatline/habitat-backend/pkg/enums"
)

// CompositionSlot is one line of a kit's bill of materials. PositionUID
// identifies the placement, not the referenced unit, so the same sub-item may
// occupy several slots.
type CompositionSlot struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_slot_product_position"`
	SubItemID     uuid.UUID           `gorm:"column:sub_item_id;type:uuid;not null"`
	Quantity      int                 `gorm:"column:quantity;not null;default:1"`
	PositionClass enums.PositionClass `gorm:"column:position_class;type:position_class;not null"`
	PositionUID   string              `gorm:"column:position_uid;not null;uniqueIndex:idx_slot_product_position"`
	PositionOrder int                 `gorm:"column:position_order;not null"`

	SubItem *Product `gorm:"foreignKey:SubItemID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table naming.
func (CompositionSlot) TableName() string {
	return "composition_slots"
}
