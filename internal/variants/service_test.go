package variants

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/habitatline/habitat-backend/pkg/db/models"
	"github.com/habitatline/habitat-backend/pkg/enums"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProducts) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	rows := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.byID[id]; ok {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

type stubFinder struct {
	ids []uuid.UUID
	err error
}

func (s *stubFinder) FindSimilarIDs(context.Context, string, uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubPreviews struct{}

func (stubPreviews) ThumbURLFor(_ context.Context, mediaID *uuid.UUID) string {
	if mediaID == nil {
		return ""
	}
	return "https://cdn.test/" + mediaID.String() + "/thumb.jpg"
}

func testProduct(sku string, lengthMm int, active bool, status enums.ProductStatus) *models.Product {
	length := lengthMm
	primary := uuid.New()
	return &models.Product{
		ID:             uuid.New(),
		Kind:           enums.ProductKindKit,
		Status:         status,
		SKU:            sku,
		TotalLengthMm:  &length,
		PrimaryColorID: &primary,
		IsActive:       active,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, products *stubProducts, finder *stubFinder) Service {
	t.Helper()
	svc, err := NewService(products, finder, stubPreviews{}, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestResolveFamilyFiltersUnpublishedSiblings(t *testing.T) {
	current := testProduct("K-1000", 1000, true, enums.ProductStatusPublished)
	published := testProduct("K-0800", 800, true, enums.ProductStatusPublished)
	draft := testProduct("K-1200", 1200, true, enums.ProductStatusDraft)
	inactive := testProduct("K-1400", 1400, false, enums.ProductStatusPublished)

	products := &stubProducts{byID: map[uuid.UUID]*models.Product{
		current.ID:   current,
		published.ID: published,
		draft.ID:     draft,
		inactive.ID:  inactive,
	}}
	finder := &stubFinder{ids: []uuid.UUID{published.ID, draft.ID, inactive.ID}}

	svc := newTestService(t, products, finder)

	family, err := svc.ResolveFamily(context.Background(), current.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(family.Members) != 2 {
		t.Fatalf("expected current + 1 published sibling, got %d members", len(family.Members))
	}
	if family.CurrentID != current.ID {
		t.Fatalf("unexpected current id %s", family.CurrentID)
	}
}

func TestResolveFamilyDegradesWhenFinderFails(t *testing.T) {
	current := testProduct("K-1000", 1000, true, enums.ProductStatusPublished)
	products := &stubProducts{byID: map[uuid.UUID]*models.Product{current.ID: current}}
	finder := &stubFinder{err: errors.New("upstream timeout")}

	svc := newTestService(t, products, finder)

	family, err := svc.ResolveFamily(context.Background(), current.ID)
	if err != nil {
		t.Fatalf("a failing similarity service must degrade, not error: %v", err)
	}
	if len(family.Members) != 1 || family.Members[0].ID != current.ID {
		t.Fatalf("expected single-member family, got %+v", family.Members)
	}
}

func TestMatchRequiresExactlyOneAxis(t *testing.T) {
	current := testProduct("K-1000", 1000, true, enums.ProductStatusPublished)
	products := &stubProducts{byID: map[uuid.UUID]*models.Product{current.ID: current}}
	svc := newTestService(t, products, &stubFinder{})

	size := 800
	color := "white"

	if _, err := svc.Match(context.Background(), current.ID, MatchRequest{}); err == nil {
		t.Fatal("expected error when no axis is set")
	}
	if _, err := svc.Match(context.Background(), current.ID, MatchRequest{SizeMm: &size, ColorKey: &color}); err == nil {
		t.Fatal("expected error when both axes are set")
	}
}

func TestMatchBySizeAcrossService(t *testing.T) {
	current := testProduct("K-1000", 1000, true, enums.ProductStatusPublished)
	sibling := testProduct("K-0800", 800, true, enums.ProductStatusPublished)
	sibling.PrimaryColorID = current.PrimaryColorID

	products := &stubProducts{byID: map[uuid.UUID]*models.Product{
		current.ID: current,
		sibling.ID: sibling,
	}}
	finder := &stubFinder{ids: []uuid.UUID{sibling.ID}}
	svc := newTestService(t, products, finder)

	size := 800
	got, err := svc.Match(context.Background(), current.ID, MatchRequest{SizeMm: &size})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.ID != sibling.ID {
		t.Fatalf("expected %s, got %s", sibling.SKU, got.SKU)
	}

	missing := 9999
	if _, err := svc.Match(context.Background(), current.ID, MatchRequest{SizeMm: &missing}); err == nil {
		t.Fatal("expected not-found for absent size")
	}
}
