package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/pkg/db/models"
)

// Repository exposes media metadata and attachment persistence operations.
// Media rows are written by the external upload pipeline; this service only
// reads them and manages their attachment to catalog entities.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID retrieves a media record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var m models.Media
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListAttachments returns an entity's attachments in display order.
func (r *Repository) ListAttachments(ctx context.Context, entityID uuid.UUID) ([]models.MediaAttachment, error) {
	var rows []models.MediaAttachment
	err := r.db.WithContext(ctx).
		Preload("Media").
		Where("entity_id = ?", entityID).
		Order("position ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateAttachment inserts an attachment row inside the provided transaction.
func (r *Repository) CreateAttachment(ctx context.Context, tx *gorm.DB, attachment *models.MediaAttachment) error {
	return tx.WithContext(ctx).Create(attachment).Error
}

// DeleteAttachment removes the attachment binding the entity to the media.
func (r *Repository) DeleteAttachment(ctx context.Context, tx *gorm.DB, entityID, mediaID uuid.UUID) error {
	return tx.WithContext(ctx).
		Where("entity_id = ? AND media_id = ?", entityID, mediaID).
		Delete(&models.MediaAttachment{}).
		Error
}

// UpdateAttachmentPosition moves an existing attachment to a new slot.
func (r *Repository) UpdateAttachmentPosition(ctx context.Context, tx *gorm.DB, entityID, mediaID uuid.UUID, position int) error {
	return tx.WithContext(ctx).
		Model(&models.MediaAttachment{}).
		Where("entity_id = ? AND media_id = ?", entityID, mediaID).
		Update("position", position).
		Error
}
