package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category scopes products and owns the mandatory SKU prefix for its base
// codes. HasWorktop is the explicit flag that decides whether kit aggregates
// include countertop dimensions; NULL means the row predates the flag.
type Category struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	SKUPrefix  string    `gorm:"column:sku_prefix;not null;default:''"`
	HasWorktop *bool     `gorm:"column:has_worktop"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// WorktopEnabled resolves the countertop flag, falling back to the legacy
// name-sniffing heuristic for rows migrated before the flag existed.
func (c Category) WorktopEnabled() bool {
	if c.HasWorktop != nil {
		return *c.HasWorktop
	}
	return c.LegacyWorktopGuess()
}

// LegacyWorktopGuess is the documented legacy-data fallback: old category rows
// carried no worktop flag and were recognized by name substrings.
func (c Category) LegacyWorktopGuess() bool {
	name := strings.ToLower(c.Name)
	return strings.Contains(name, "kitchen") || strings.Contains(name, "кухн")
}
