package models

import (
	"time"

	"github.com/google/uuid"
)

// Color is a reference-catalog facade color. Code is the short token folded
// into SKUs (e.g. "BEL").
type Color struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Label     string    `gorm:"column:label;not null"`
	Code      string    `gorm:"column:code;not null"`
	Hex       *string   `gorm:"column:hex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
