package product

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/internal/drafts"
	"github.com/habitatline/habitat-backend/internal/media"
	"github.com/habitatline/habitat-backend/pkg/db"
	"github.com/habitatline/habitat-backend/pkg/db/models"
	"github.com/habitatline/habitat-backend/pkg/enums"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mustCreateCategory(t *testing.T, tx *gorm.DB, name, prefix string, worktop bool) *models.Category {
	t.Helper()
	category := &models.Category{
		ID:         uuid.New(),
		Name:       fmt.Sprintf("%s %s", name, uuid.NewString()[:8]),
		SKUPrefix:  prefix,
		HasWorktop: &worktop,
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func mustCreateColor(t *testing.T, tx *gorm.DB, label, code string) *models.Color {
	t.Helper()
	color := &models.Color{
		ID:    uuid.New(),
		Label: label,
		Code:  code,
	}
	if err := tx.Create(color).Error; err != nil {
		t.Fatalf("create color: %v", err)
	}
	return color
}

func mustCreateMedia(t *testing.T, tx *gorm.DB) *models.Media {
	t.Helper()
	row := &models.Media{
		ID:   uuid.New(),
		Kind: enums.MediaKindImage,
		URL:  fmt.Sprintf("media/%s/full.jpg", uuid.NewString()),
	}
	if err := tx.Create(row).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	return row
}

func newServiceForTest(t *testing.T, client *db.Client) Service {
	t.Helper()
	repo := NewRepository(client.DB())
	mediaSvc, err := media.NewService(media.NewRepository(client.DB()), "")
	if err != nil {
		t.Fatalf("media service: %v", err)
	}
	svc, err := NewService(repo, client, mediaSvc, drafts.NewStore(), nil, testLogger())
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	return svc
}
