package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/habitatline/habitat-backend/pkg/enums"
)

// Media is an uploaded asset managed by the external media pipeline. This
// service only reads it to satisfy attachment and preview preconditions.
type Media struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.MediaKind `gorm:"column:kind;type:media_kind;not null"`
	URL       string          `gorm:"column:url;not null"`
	ThumbURL  *string         `gorm:"column:thumb_url"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// MediaAttachment binds a media asset to a catalog entity at a position.
type MediaAttachment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntityID  uuid.UUID `gorm:"column:entity_id;type:uuid;not null;index"`
	MediaID   uuid.UUID `gorm:"column:media_id;type:uuid;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Media     *Media    `gorm:"foreignKey:MediaID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the legacy table naming.
func (MediaAttachment) TableName() string {
	return "media_attachments"
}
