package media

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/pkg/db/models"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
)

type fakeRepo struct {
	media    map[uuid.UUID]*models.Media
	created  []models.MediaAttachment
	deleted  []uuid.UUID
	moved    map[uuid.UUID]int
	existing []models.MediaAttachment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		media: map[uuid.UUID]*models.Media{},
		moved: map[uuid.UUID]int{},
	}
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	if row, ok := f.media[id]; ok {
		return row, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
}

func (f *fakeRepo) ListAttachments(_ context.Context, _ uuid.UUID) ([]models.MediaAttachment, error) {
	return f.existing, nil
}

func (f *fakeRepo) CreateAttachment(_ context.Context, _ *gorm.DB, attachment *models.MediaAttachment) error {
	f.created = append(f.created, *attachment)
	return nil
}

func (f *fakeRepo) DeleteAttachment(_ context.Context, _ *gorm.DB, _ uuid.UUID, mediaID uuid.UUID) error {
	f.deleted = append(f.deleted, mediaID)
	return nil
}

func (f *fakeRepo) UpdateAttachmentPosition(_ context.Context, _ *gorm.DB, _ uuid.UUID, mediaID uuid.UUID, position int) error {
	f.moved[mediaID] = position
	return nil
}

func (f *fakeRepo) addMedia(thumb string) uuid.UUID {
	id := uuid.New()
	row := &models.Media{ID: id, URL: "media/" + id.String() + "/full.jpg"}
	if thumb != "" {
		row.ThumbURL = &thumb
	}
	f.media[id] = row
	return id
}

func TestReconcileCreatesMovesAndDeletes(t *testing.T) {
	repo := newFakeRepo()
	kept := repo.addMedia("")
	added := repo.addMedia("")
	removed := repo.addMedia("")
	entityID := uuid.New()

	svc, err := NewService(repo, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// New order puts the added media first and drops one old attachment.
	err = svc.Reconcile(context.Background(), &gorm.DB{}, entityID,
		[]uuid.UUID{kept, removed},
		[]uuid.UUID{added, kept})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(repo.created) != 1 || repo.created[0].MediaID != added || repo.created[0].Position != 0 {
		t.Fatalf("unexpected creates: %+v", repo.created)
	}
	if pos, ok := repo.moved[kept]; !ok || pos != 1 {
		t.Fatalf("kept media should move to position 1, got %+v", repo.moved)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != removed {
		t.Fatalf("unexpected deletes: %v", repo.deleted)
	}
}

func TestReconcileRejectsUnknownMedia(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Reconcile(context.Background(), &gorm.DB{}, uuid.New(), nil, []uuid.UUID{uuid.New()})
	if err == nil {
		t.Fatal("expected error for media the pipeline never produced")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestThumbURLForResolution(t *testing.T) {
	repo := newFakeRepo()
	withThumb := repo.addMedia("media/x/thumb.jpg")
	absolute := repo.addMedia("https://cdn.example.com/y/thumb.jpg")

	svc, err := NewService(repo, "https://cdn.habitat.test/")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if got := svc.ThumbURLFor(context.Background(), nil); got != "" {
		t.Fatalf("nil media must resolve empty, got %q", got)
	}
	missing := uuid.New()
	if got := svc.ThumbURLFor(context.Background(), &missing); got != "" {
		t.Fatalf("unknown media must resolve empty, got %q", got)
	}
	if got := svc.ThumbURLFor(context.Background(), &withThumb); got != "https://cdn.habitat.test/media/x/thumb.jpg" {
		t.Fatalf("relative thumb not resolved: %q", got)
	}
	if got := svc.ThumbURLFor(context.Background(), &absolute); got != "https://cdn.example.com/y/thumb.jpg" {
		t.Fatalf("absolute thumb must pass through: %q", got)
	}
}
