package variants

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/habitatline/habitat-backend/pkg/db/models"
	"github.com/habitatline/habitat-backend/pkg/enums"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

// Service resolves a product's variant family for cross-navigation.
type Service interface {
	ResolveFamily(ctx context.Context, productID uuid.UUID) (*FamilyDTO, error)
	Match(ctx context.Context, productID uuid.UUID, req MatchRequest) (*MemberDTO, error)
}

// MatchRequest asks for the family member on one navigation axis. Exactly one
// of the fields is set.
type MatchRequest struct {
	SizeMm   *int
	ColorKey *string
}

// productReader is the slice of the product repository the resolver needs.
type productReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// similarFinder is the similarity-service surface used to collect candidates.
type similarFinder interface {
	FindSimilarIDs(ctx context.Context, kind string, id uuid.UUID) ([]uuid.UUID, error)
}

// previewResolver maps a product's preview media to a public thumbnail URL.
type previewResolver interface {
	ThumbURLFor(ctx context.Context, mediaID *uuid.UUID) string
}

type service struct {
	products productReader
	finder   similarFinder
	previews previewResolver
	logg     *logger.Logger
}

// NewService constructs a variant resolution service.
func NewService(products productReader, finder similarFinder, previews previewResolver, logg *logger.Logger) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if finder == nil {
		return nil, fmt.Errorf("similarity finder required")
	}
	if previews == nil {
		return nil, fmt.Errorf("preview resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{products: products, finder: finder, previews: previews, logg: logg}, nil
}

// ResolveFamily loads the current product, queries the similarity service for
// candidates, and folds them into size/color navigation groups. Only active
// published siblings participate; the current product always does.
func (s *service) ResolveFamily(ctx context.Context, productID uuid.UUID) (*FamilyDTO, error) {
	family, current, err := s.buildFamily(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toFamilyDTO(family, current), nil
}

// Match resolves one navigation step. Requesting the current product's own
// axis value returns the current product unchanged.
func (s *service) Match(ctx context.Context, productID uuid.UUID, req MatchRequest) (*MemberDTO, error) {
	if (req.SizeMm == nil) == (req.ColorKey == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of size_mm or color_key is required")
	}

	family, _, err := s.buildFamily(ctx, productID)
	if err != nil {
		return nil, err
	}

	var target Member
	var ok bool
	if req.SizeMm != nil {
		target, ok = family.MatchBySize(*req.SizeMm)
	} else {
		target, ok = family.MatchByColor(*req.ColorKey)
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no family member matches the requested axis")
	}

	dto := toMemberDTO(target)
	return &dto, nil
}

func (s *service) buildFamily(ctx context.Context, productID uuid.UUID) (*Family, Member, error) {
	current, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, Member{}, err
	}

	currentMember := s.toMember(ctx, *current)

	candidateIDs, err := s.finder.FindSimilarIDs(ctx, current.Kind.String(), current.ID)
	if err != nil {
		// A degraded similarity service must not take the product page
		// down with it: resolve a single-member family.
		logCtx := s.logg.WithFields(ctx, map[string]any{"error": err.Error()})
		s.logg.Warn(logCtx, "similarity lookup failed, resolving single-member family")
		return ResolveFamily(currentMember, nil), currentMember, nil
	}

	rows, err := s.products.ListByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, Member{}, err
	}

	candidates := make([]Member, 0, len(rows))
	for _, row := range rows {
		if !row.IsActive || row.Status != enums.ProductStatusPublished {
			continue
		}
		candidates = append(candidates, s.toMember(ctx, row))
	}

	return ResolveFamily(currentMember, candidates), currentMember, nil
}

// toMember projects a catalog row onto the navigation axes. Kits key their
// size on the derived total length; atomic products on their own length.
func (s *service) toMember(ctx context.Context, row models.Product) Member {
	sizeMm := 0
	if row.TotalLengthMm != nil && *row.TotalLengthMm > 0 {
		sizeMm = *row.TotalLengthMm
	} else if row.LengthMm != nil && *row.LengthMm > 0 {
		sizeMm = *row.LengthMm
	}

	colorLabel := ""
	if row.PrimaryColor != nil {
		colorLabel = row.PrimaryColor.Label
	}

	return Member{
		ID:         row.ID,
		SKU:        row.SKU,
		SizeKeyMm:  sizeMm,
		ColorKey:   ColorKeyFor(row.PrimaryColorID, row.SecondaryColorID, colorLabel),
		ColorLabel: colorLabel,
		ThumbURL:   s.previews.ThumbURLFor(ctx, row.PreviewMediaID),
	}
}
