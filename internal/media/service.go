package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/pkg/db/models"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
)

// Service is the attachment surface other domains collaborate with: drafts
// attach gallery media against their stable id, and variant resolution maps
// preview media to public thumbnail URLs.
type Service interface {
	Reconcile(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, oldMediaIDs, newMediaIDs []uuid.UUID) error
	Gallery(ctx context.Context, entityID uuid.UUID) ([]models.MediaAttachment, error)
	ThumbURLFor(ctx context.Context, mediaID *uuid.UUID) string
}

type mediaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	ListAttachments(ctx context.Context, entityID uuid.UUID) ([]models.MediaAttachment, error)
	CreateAttachment(ctx context.Context, tx *gorm.DB, attachment *models.MediaAttachment) error
	DeleteAttachment(ctx context.Context, tx *gorm.DB, entityID, mediaID uuid.UUID) error
	UpdateAttachmentPosition(ctx context.Context, tx *gorm.DB, entityID, mediaID uuid.UUID, position int) error
}

type service struct {
	repo          mediaRepository
	publicBaseURL string
}

// NewService constructs the media collaborator. publicBaseURL resolves
// pipeline-relative asset paths; absolute URLs pass through unchanged.
func NewService(repo mediaRepository, publicBaseURL string) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media repository required")
	}
	return &service{
		repo:          repo,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}, nil
}

// Reconcile syncs an entity's gallery with the requested media id list.
// Position follows the order of newMediaIDs, so reordering without adding or
// removing is also handled here.
func (s *service) Reconcile(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, oldMediaIDs, newMediaIDs []uuid.UUID) error {
	if entityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entity_id required")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction required")
	}

	oldSet := dedupe(oldMediaIDs)
	newOrdered := dedupeOrdered(newMediaIDs)

	newSet := make(map[uuid.UUID]struct{}, len(newOrdered))
	for _, id := range newOrdered {
		newSet[id] = struct{}{}
	}

	for position, mediaID := range newOrdered {
		if _, existed := oldSet[mediaID]; existed {
			if err := s.repo.UpdateAttachmentPosition(ctx, tx, entityID, mediaID, position); err != nil {
				return err
			}
			continue
		}
		if _, err := s.repo.FindByID(ctx, mediaID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "media not found")
		}
		attachment := &models.MediaAttachment{
			EntityID: entityID,
			MediaID:  mediaID,
			Position: position,
		}
		if err := s.repo.CreateAttachment(ctx, tx, attachment); err != nil {
			return err
		}
	}

	for mediaID := range oldSet {
		if _, kept := newSet[mediaID]; kept {
			continue
		}
		if err := s.repo.DeleteAttachment(ctx, tx, entityID, mediaID); err != nil {
			return err
		}
	}

	return nil
}

// Gallery returns the entity's attachments in display order.
func (s *service) Gallery(ctx context.Context, entityID uuid.UUID) ([]models.MediaAttachment, error) {
	if entityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity_id required")
	}
	return s.repo.ListAttachments(ctx, entityID)
}

// ThumbURLFor resolves a preview media reference to a public thumbnail URL.
// Missing or unknown media resolves to an empty string rather than an error:
// a broken preview must not break the page that embeds it.
func (s *service) ThumbURLFor(ctx context.Context, mediaID *uuid.UUID) string {
	if mediaID == nil || *mediaID == uuid.Nil {
		return ""
	}
	row, err := s.repo.FindByID(ctx, *mediaID)
	if err != nil {
		return ""
	}

	raw := row.URL
	if row.ThumbURL != nil && *row.ThumbURL != "" {
		raw = *row.ThumbURL
	}
	return s.resolveURL(raw)
}

func (s *service) resolveURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if s.publicBaseURL == "" {
		return trimmed
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(trimmed, "/")
}

func dedupe(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func dedupeOrdered(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
