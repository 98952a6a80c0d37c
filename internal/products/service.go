package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/internal/composition"
	"github.com/habitatline/habitat-backend/internal/drafts"
	"github.com/habitatline/habitat-backend/internal/sku"
	"github.com/habitatline/habitat-backend/pkg/db"
	"github.com/habitatline/habitat-backend/pkg/db/models"
	"github.com/habitatline/habitat-backend/pkg/enums"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

const (
	sessionNonceTTL = 2 * time.Hour

	baseCodeConstraint = "idx_products_category_base_code"
	skuConstraint      = "idx_products_sku"
)

// Service exposes the catalog authoring lifecycle: draft creation, edits,
// recomputation, publication, and duplication for both atomic products and
// composite kits.
type Service interface {
	CreateDraft(ctx context.Context, input CreateDraftInput) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Recompute(ctx context.Context, id uuid.UUID) (*RecomputeDTO, error)
	Publish(ctx context.Context, id uuid.UUID, input PublishInput) (*ProductDTO, error)
	Duplicate(ctx context.Context, id uuid.UUID, sessionID string) (*ProductDTO, error)
}

// mediaReconciler is the attachment surface the lifecycle needs.
type mediaReconciler interface {
	Reconcile(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, oldMediaIDs, newMediaIDs []uuid.UUID) error
	Gallery(ctx context.Context, entityID uuid.UUID) ([]models.MediaAttachment, error)
}

// nonceStore shares session nonces across replicas so a load-balanced author
// keeps one SKU suffix per session.
type nonceStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	NonceKey(sessionID string) string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	media    mediaReconciler
	sessions *drafts.Store
	nonces   nonceStore
	logg     *logger.Logger
}

// NewService constructs the catalog lifecycle service. nonces may be nil in
// single-replica deployments; sessions then pin nonces in process only.
func NewService(repo *Repository, dbClient *db.Client, media mediaReconciler, sessions *drafts.Store, nonces nonceStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		media:    media,
		sessions: sessions,
		nonces:   nonces,
		logg:     logg,
	}, nil
}

// CreateDraft validates the identity attributes, then persists the draft row
// exactly once per session: concurrent submits share the pending creation.
// Drafts persist inactive with zero final price; real prices arrive at
// publish time.
func (s *service) CreateDraft(ctx context.Context, input CreateDraftInput) (*ProductDTO, error) {
	if err := validateIdentity(input); err != nil {
		return nil, err
	}

	category, err := s.repo.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, mapLoadError(err, "category")
	}
	if !sku.HasPrefix(input.BaseCode, category.SKUPrefix) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("base code must start with the category prefix %q", category.SKUPrefix)).
			WithDetails(map[string]any{"fields": []string{"base_code"}})
	}

	baseCode := sku.EnsurePrefix(input.BaseCode, category.SKUPrefix)
	taken, err := s.repo.BaseCodeTaken(ctx, input.CategoryID, baseCode, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check base code")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base code already used in this category").
			WithDetails(map[string]any{"fields": []string{"base_code"}})
	}

	colorCodes, err := s.loadColorCodes(ctx, input.PrimaryColorID, input.SecondaryColorID)
	if err != nil {
		return nil, err
	}

	session := s.sessions.Get(input.SessionID)
	id, err := session.EnsureCreated(ctx, func(ctx context.Context) (uuid.UUID, error) {
		return s.persistDraft(ctx, input, category, baseCode, colorCodes, session)
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithProductID(ctx, id.String())
	s.logg.Info(logCtx, "draft created")

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	return toDTO(detail), nil
}

func (s *service) persistDraft(ctx context.Context, input CreateDraftInput, category *models.Category, baseCode string, colorCodes []string, session *drafts.Session) (uuid.UUID, error) {
	slots := buildSlots(input.Slots, session.UIDs())
	refs, err := s.loadSubItemRefs(ctx, slots)
	if err != nil {
		return uuid.Nil, err
	}
	agg := composition.ComputeAggregates(slots, refs)

	row := &models.Product{
		ID:               uuid.New(),
		Kind:             input.Kind,
		Status:           enums.ProductStatusDraft,
		CategoryID:       input.CategoryID,
		Title:            input.Title,
		Description:      input.Description,
		Tags:             input.Tags,
		CollectionID:     input.CollectionID,
		BaseCode:         baseCode,
		PrimaryColorID:   input.PrimaryColorID,
		SecondaryColorID: input.SecondaryColorID,
		LengthMm:         input.LengthMm,
		DepthMm:          input.DepthMm,
		HeightMm:         input.HeightMm,
		BasePrice:        decimal.Zero,
		FinalPrice:       decimal.Zero,
		IsActive:         false,
	}

	if input.Kind.IsComposite() {
		applyAggregates(row, agg, category.WorktopEnabled())
	}

	nonce := s.resolveNonce(ctx, input.SessionID, session, "")
	row.SKUNonce = nonce
	row.SKU = sku.Generate(sku.Parts{
		BaseCode:   baseCode,
		LengthMm:   skuLength(row),
		ColorCodes: colorCodes,
		Nonce:      nonce,
	})

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, row); err != nil {
			return err
		}
		if len(slots) > 0 {
			return txRepo.ReplaceSlots(ctx, row.ID, slotRows(row.ID, slots))
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, mapPersistError(err)
	}
	return row.ID, nil
}

// Get loads the product detail.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	return toDTO(detail), nil
}

// List pages the admin catalog.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	result := &ListResult{NextCursor: next, Products: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		result.Products = append(result.Products, *toDTO(&rows[i]))
	}
	return result, nil
}

// Update applies a partial edit. Identity changes regenerate the SKU with the
// persisted nonce, so the suffix never churns on edit. Slot changes are
// composite-only and recompute aggregates unless the same request overrides
// them explicitly.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	session := s.sessions.Get(input.SessionID)

	applyScalarUpdates(row, input)

	category, err := s.repo.GetCategory(ctx, row.CategoryID)
	if err != nil {
		return nil, mapLoadError(err, "category")
	}

	if input.BaseCode != nil || input.CategoryID != nil {
		if !sku.HasPrefix(row.BaseCode, category.SKUPrefix) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("base code must start with the category prefix %q", category.SKUPrefix)).
				WithDetails(map[string]any{"fields": []string{"base_code"}})
		}
		row.BaseCode = sku.EnsurePrefix(row.BaseCode, category.SKUPrefix)
		taken, err := s.repo.BaseCodeTaken(ctx, row.CategoryID, row.BaseCode, row.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check base code")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base code already used in this category").
				WithDetails(map[string]any{"fields": []string{"base_code"}})
		}
	}

	var slots []composition.Slot
	if input.Slots != nil {
		if !row.Kind.IsComposite() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only composite products carry composition slots").
				WithDetails(map[string]any{"fields": []string{"slots"}})
		}
		slots = buildSlots(*input.Slots, session.UIDs())
		refs, err := s.loadSubItemRefs(ctx, slots)
		if err != nil {
			return nil, err
		}
		agg := composition.ComputeAggregates(slots, refs)
		applyAggregates(row, agg, category.WorktopEnabled())
	}
	// Author overrides win over the recomputed suggestion.
	applyAggregateOverrides(row, input)

	colorCodes, err := s.loadColorCodes(ctx, row.PrimaryColorID, row.SecondaryColorID)
	if err != nil {
		return nil, err
	}
	nonce := s.resolveNonce(ctx, input.SessionID, session, row.SKU)
	row.SKUNonce = nonce
	row.SKU = sku.Generate(sku.Parts{
		BaseCode:   row.BaseCode,
		LengthMm:   skuLength(row),
		ColorCodes: colorCodes,
		Nonce:      nonce,
	})

	var oldMediaIDs []uuid.UUID
	if input.MediaIDs != nil {
		attachments, err := s.media.Gallery(ctx, row.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
		}
		for _, attachment := range attachments {
			oldMediaIDs = append(oldMediaIDs, attachment.MediaID)
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, row); err != nil {
			return err
		}
		if input.Slots != nil {
			if err := txRepo.ReplaceSlots(ctx, row.ID, slotRows(row.ID, slots)); err != nil {
				return err
			}
		}
		if input.MediaIDs != nil {
			return s.media.Reconcile(ctx, tx, row.ID, oldMediaIDs, *input.MediaIDs)
		}
		return nil
	})
	if err != nil {
		return nil, mapPersistError(err)
	}

	detail, err := s.repo.GetDetail(ctx, row.ID)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	return toDTO(detail), nil
}

// Recompute derives the aggregate suggestion from the persisted composition
// without saving anything: the author reviews, possibly overrides, then saves.
func (s *service) Recompute(ctx context.Context, id uuid.UUID) (*RecomputeDTO, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	if !row.Kind.IsComposite() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only composite products have computed aggregates")
	}

	category, err := s.repo.GetCategory(ctx, row.CategoryID)
	if err != nil {
		return nil, mapLoadError(err, "category")
	}

	slotModels, err := s.repo.ListSlots(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load composition")
	}
	slots := make([]composition.Slot, 0, len(slotModels))
	for _, slot := range slotModels {
		slots = append(slots, composition.Slot{
			SubItemID:     slot.SubItemID,
			Quantity:      slot.Quantity,
			PositionClass: slot.PositionClass,
			PositionUID:   slot.PositionUID,
		})
	}

	refs, err := s.loadSubItemRefs(ctx, slots)
	if err != nil {
		return nil, err
	}
	agg := composition.ComputeAggregates(slots, refs)

	colorCodes, err := s.loadColorCodes(ctx, row.PrimaryColorID, row.SecondaryColorID)
	if err != nil {
		return nil, err
	}
	suggestedSKU := sku.Generate(sku.Parts{
		BaseCode:   row.BaseCode,
		LengthMm:   float64(agg.TotalLengthMm),
		ColorCodes: colorCodes,
		Nonce:      nonceFor(row),
	})

	result := &RecomputeDTO{
		TotalLengthMm: agg.TotalLengthMm,
		TotalDepthMm:  agg.TotalDepthMm,
		TotalHeightMm: agg.TotalHeightMm,
		BasePrice:     agg.BasePrice,
		SuggestedSKU:  suggestedSKU,
		Warning:       agg.Mismatch,
	}
	if category.WorktopEnabled() {
		ctLength, ctDepth := agg.CountertopLengthMm, agg.CountertopDepthMm
		result.CountertopLengthMm = &ctLength
		result.CountertopDepthMm = &ctDepth
	}
	return result, nil
}

// Publish finalizes a draft: a chosen preview image and a positive final
// price are hard requirements; failure names the reason and leaves the draft
// untouched.
func (s *service) Publish(ctx context.Context, id uuid.UUID, input PublishInput) (*ProductDTO, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}

	// Resolve the session before anything persists. A session the store has
	// never seen (process restart, or a client that only sends the header at
	// publish) starts Empty; resume it over the persisted row so finalizing
	// cannot fail once the write has landed.
	var session *drafts.Session
	if input.SessionID != "" {
		session = s.sessions.Get(input.SessionID)
		if session.State() == drafts.StateEmpty {
			session = drafts.ResumeSession(row.ID, row.SKU)
			s.sessions.Put(input.SessionID, session)
		}
	}

	if input.FinalPrice != nil {
		row.FinalPrice = *input.FinalPrice
	}
	if row.PreviewMediaID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a preview image must be chosen before publishing")
	}
	if !row.FinalPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "final price must be positive before publishing")
	}

	row.Status = enums.ProductStatusPublished
	row.IsActive = true

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Update(ctx, row)
		return err
	})
	if err != nil {
		return nil, mapPersistError(err)
	}

	if session != nil {
		if err := session.Finalize(); err != nil {
			return nil, err
		}
	}

	logCtx := s.logg.WithProductID(ctx, row.ID.String())
	s.logg.Info(logCtx, "product published")

	detail, err := s.repo.GetDetail(ctx, row.ID)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	return toDTO(detail), nil
}

// Duplicate copies a product into a fresh draft. Everything carries over
// except the id, the SKU nonce, and the placement uids; the source row is
// never touched, and the copy persists inactive.
func (s *service) Duplicate(ctx context.Context, id uuid.UUID, sessionID string) (*ProductDTO, error) {
	session := s.sessions.Get(sessionID)
	session.Duplicate()
	epoch := session.Epoch()
	if s.nonces != nil && sessionID != "" {
		// The copy must not inherit the session's shared nonce.
		if err := s.nonces.Del(ctx, s.nonces.NonceKey(sessionID)); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"error": err.Error()})
			s.logg.Warn(logCtx, "failed to clear shared session nonce")
		}
	}

	source, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}

	colorCodes, err := s.loadColorCodes(ctx, source.PrimaryColorID, source.SecondaryColorID)
	if err != nil {
		return nil, err
	}

	copyBase, err := s.freeCopyBaseCode(ctx, source.CategoryID, source.BaseCode)
	if err != nil {
		return nil, err
	}

	copyRow, err := cloneForSession(session, epoch, source)
	if err != nil {
		return nil, err
	}

	copyID, err := session.EnsureCreated(ctx, func(ctx context.Context) (uuid.UUID, error) {
		copyRow.BaseCode = copyBase
		nonce := s.resolveNonce(ctx, sessionID, session, "")
		copyRow.SKUNonce = nonce
		copyRow.SKU = sku.Generate(sku.Parts{
			BaseCode:   copyRow.BaseCode,
			LengthMm:   skuLength(copyRow),
			ColorCodes: colorCodes,
			Nonce:      nonce,
		})

		uids := session.UIDs()
		slots := make([]models.CompositionSlot, 0, len(source.Slots))
		for _, slot := range source.Slots {
			slots = append(slots, models.CompositionSlot{
				ProductID:     copyRow.ID,
				SubItemID:     slot.SubItemID,
				Quantity:      slot.Quantity,
				PositionClass: slot.PositionClass,
				PositionUID:   uids.Next(),
				PositionOrder: slot.PositionOrder,
			})
		}

		attachments := make([]models.MediaAttachment, 0, len(source.Media))
		for _, attachment := range source.Media {
			attachments = append(attachments, models.MediaAttachment{
				EntityID: copyRow.ID,
				MediaID:  attachment.MediaID,
				Position: attachment.Position,
			})
		}

		err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if _, err := txRepo.Create(ctx, copyRow); err != nil {
				return err
			}
			if len(slots) > 0 {
				if err := txRepo.ReplaceSlots(ctx, copyRow.ID, slots); err != nil {
					return err
				}
			}
			if len(attachments) > 0 {
				if err := tx.WithContext(ctx).Create(&attachments).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return uuid.Nil, mapPersistError(err)
		}
		return copyRow.ID, nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"source_id": id.String(), "product_id": copyID.String()})
	s.logg.Info(logCtx, "product duplicated")

	detail, err := s.repo.GetDetail(ctx, copyID)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	return toDTO(detail), nil
}

// freeCopyBaseCode derives the duplicate's base code: the source code plus a
// COPY marker, counting up until the category has no owner for it. The unique
// index stays the authority under races.
func (s *service) freeCopyBaseCode(ctx context.Context, categoryID uuid.UUID, baseCode string) (string, error) {
	candidate := baseCode + "COPY"
	for i := 2; ; i++ {
		taken, err := s.repo.BaseCodeTaken(ctx, categoryID, candidate, uuid.Nil)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check base code")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%sCOPY%d", baseCode, i)
	}
}

// cloneForSession hands the fetched source to the session's current copy
// attempt. The epoch was snapshotted before the fetch; a mismatch means the
// session was retargeted mid-flight, so the stale source is discarded.
func cloneForSession(session *drafts.Session, epoch uint64, source *models.Product) (*models.Product, error) {
	var copyRow *models.Product
	if !session.Apply(epoch, func() { copyRow = cloneProduct(source) }) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session was retargeted while the source loaded; retry the duplicate")
	}
	return copyRow, nil
}

// resolveNonce pins one SKU suffix per authoring session. The persisted SKU's
// tail always wins; otherwise the session cache answers, with redis arbitrating
// between replicas that race to mint first.
func (s *service) resolveNonce(ctx context.Context, sessionID string, session *drafts.Session, persistedSKU string) string {
	nonce := session.Nonce(persistedSKU)
	if sessionID == "" || s.nonces == nil {
		return nonce
	}

	key := s.nonces.NonceKey(sessionID)
	won, err := s.nonces.SetNX(ctx, key, nonce, sessionNonceTTL)
	if err != nil || won {
		return nonce
	}
	shared, err := s.nonces.Get(ctx, key)
	if err != nil || len(shared) != sku.NonceLength {
		return nonce
	}
	session.PinNonce(shared)
	return shared
}

func (s *service) loadColorCodes(ctx context.Context, primaryID, secondaryID *uuid.UUID) ([]string, error) {
	var codes []string
	for _, colorID := range []*uuid.UUID{primaryID, secondaryID} {
		if colorID == nil {
			continue
		}
		color, err := s.repo.GetColor(ctx, *colorID)
		if err != nil {
			return nil, mapLoadError(err, "color")
		}
		codes = append(codes, color.Code)
	}
	return codes, nil
}

func (s *service) loadSubItemRefs(ctx context.Context, slots []composition.Slot) (map[uuid.UUID]composition.SubItemRef, error) {
	ids := make([]uuid.UUID, 0, len(slots))
	seen := map[uuid.UUID]struct{}{}
	for _, slot := range slots {
		if _, dup := seen[slot.SubItemID]; dup {
			continue
		}
		seen[slot.SubItemID] = struct{}{}
		ids = append(ids, slot.SubItemID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-items")
	}

	refs := make(map[uuid.UUID]composition.SubItemRef, len(rows))
	for i := range rows {
		row := rows[i]
		price := row.FinalPrice
		if !price.IsPositive() {
			price = row.BasePrice
		}
		refs[row.ID] = composition.SubItemRef{
			ID:        row.ID,
			LengthMm:  row.LengthMm,
			DepthMm:   row.DepthMm,
			HeightMm:  row.HeightMm,
			UnitPrice: &price,
		}
	}
	return refs, nil
}

// validateIdentity names every missing identity field in one error so the
// author fixes the form in a single round trip.
func validateIdentity(input CreateDraftInput) error {
	var missing []string
	if !input.Kind.IsValid() {
		missing = append(missing, "kind")
	}
	if input.CategoryID == uuid.Nil {
		missing = append(missing, "category_id")
	}
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if sku.NormalizeCode(input.BaseCode) == "" {
		missing = append(missing, "base_code")
	}
	if !input.Kind.IsComposite() && input.PrimaryColorID == nil {
		missing = append(missing, "primary_color_id")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	if !input.Kind.IsComposite() && len(input.Slots) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "only composite products carry composition slots").
			WithDetails(map[string]any{"fields": []string{"slots"}})
	}
	return nil
}

func buildSlots(inputs []SlotInput, uids *composition.UIDSource) []composition.Slot {
	slots := make([]composition.Slot, 0, len(inputs))
	for _, input := range inputs {
		uid := input.PositionUID
		if uid == "" {
			uid = uids.Next()
		}
		class := input.PositionClass
		if !class.IsValid() {
			class = enums.PositionClassComponent
		}
		slots = append(slots, composition.Slot{
			SubItemID:     input.SubItemID,
			Quantity:      composition.ClampQuantity(input.Quantity),
			PositionClass: class,
			PositionUID:   uid,
		})
	}
	return slots
}

// slotRows projects authored slots onto persistence rows: one row per slot,
// ordered the way flatten orders classes, with dense position_order.
func slotRows(productID uuid.UUID, slots []composition.Slot) []models.CompositionSlot {
	ordered := append([]composition.Slot(nil), slots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PositionClass.FlattenRank() < ordered[j].PositionClass.FlattenRank()
	})

	rows := make([]models.CompositionSlot, 0, len(ordered))
	for i, slot := range ordered {
		rows = append(rows, models.CompositionSlot{
			ProductID:     productID,
			SubItemID:     slot.SubItemID,
			Quantity:      slot.Quantity,
			PositionClass: slot.PositionClass,
			PositionUID:   slot.PositionUID,
			PositionOrder: i,
		})
	}
	return rows
}

func applyAggregates(row *models.Product, agg composition.Aggregates, worktop bool) {
	totalLength, totalDepth, totalHeight := agg.TotalLengthMm, agg.TotalDepthMm, agg.TotalHeightMm
	row.TotalLengthMm = &totalLength
	row.TotalDepthMm = &totalDepth
	row.TotalHeightMm = &totalHeight
	row.BasePrice = agg.BasePrice
	if worktop {
		ctLength, ctDepth := agg.CountertopLengthMm, agg.CountertopDepthMm
		row.CountertopLengthMm = &ctLength
		row.CountertopDepthMm = &ctDepth
	} else {
		row.CountertopLengthMm = nil
		row.CountertopDepthMm = nil
	}
}

func applyScalarUpdates(row *models.Product, input UpdateInput) {
	if input.Title != nil {
		row.Title = *input.Title
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.Tags != nil {
		row.Tags = *input.Tags
	}
	if input.CategoryID != nil {
		row.CategoryID = *input.CategoryID
	}
	if input.CollectionID != nil {
		row.CollectionID = input.CollectionID
	}
	if input.BaseCode != nil {
		row.BaseCode = *input.BaseCode
	}
	if input.PrimaryColorID != nil {
		row.PrimaryColorID = input.PrimaryColorID
	}
	if input.SecondaryColorID != nil {
		row.SecondaryColorID = input.SecondaryColorID
	}
	if input.LengthMm != nil {
		row.LengthMm = input.LengthMm
	}
	if input.DepthMm != nil {
		row.DepthMm = input.DepthMm
	}
	if input.HeightMm != nil {
		row.HeightMm = input.HeightMm
	}
	if input.PreviewMediaID != nil {
		row.PreviewMediaID = input.PreviewMediaID
	}
}

func applyAggregateOverrides(row *models.Product, input UpdateInput) {
	if input.TotalLengthMm != nil {
		row.TotalLengthMm = input.TotalLengthMm
	}
	if input.TotalDepthMm != nil {
		row.TotalDepthMm = input.TotalDepthMm
	}
	if input.TotalHeightMm != nil {
		row.TotalHeightMm = input.TotalHeightMm
	}
	if input.CountertopLengthMm != nil {
		row.CountertopLengthMm = input.CountertopLengthMm
	}
	if input.CountertopDepthMm != nil {
		row.CountertopDepthMm = input.CountertopDepthMm
	}
	if input.BasePrice != nil {
		row.BasePrice = *input.BasePrice
	}
	if input.FinalPrice != nil {
		row.FinalPrice = *input.FinalPrice
	}
}

func cloneProduct(source *models.Product) *models.Product {
	copyRow := &models.Product{
		ID:                 uuid.New(),
		Kind:               source.Kind,
		Status:             enums.ProductStatusDraft,
		CategoryID:         source.CategoryID,
		Title:              source.Title,
		Description:        source.Description,
		Tags:               append(pq.StringArray{}, source.Tags...),
		CollectionID:       source.CollectionID,
		BaseCode:           source.BaseCode,
		PrimaryColorID:     source.PrimaryColorID,
		SecondaryColorID:   source.SecondaryColorID,
		LengthMm:           source.LengthMm,
		DepthMm:            source.DepthMm,
		HeightMm:           source.HeightMm,
		TotalLengthMm:      source.TotalLengthMm,
		TotalDepthMm:       source.TotalDepthMm,
		TotalHeightMm:      source.TotalHeightMm,
		CountertopLengthMm: source.CountertopLengthMm,
		CountertopDepthMm:  source.CountertopDepthMm,
		BasePrice:          source.BasePrice,
		FinalPrice:         source.FinalPrice,
		IsActive:           false,
		PreviewMediaID:     source.PreviewMediaID,
	}
	return copyRow
}

// skuLength picks the length segment source: composite products use the
// derived total, atomic products their own length.
func skuLength(row *models.Product) float64 {
	if row.Kind.IsComposite() {
		if row.TotalLengthMm != nil {
			return float64(*row.TotalLengthMm)
		}
		return 0
	}
	if row.LengthMm != nil {
		return float64(*row.LengthMm)
	}
	return 0
}

func nonceFor(row *models.Product) string {
	if row.SKUNonce != "" {
		return row.SKUNonce
	}
	if token, ok := sku.NonceFromSKU(row.SKU); ok {
		return token
	}
	return sku.NewNonce()
}

func mapLoadError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}

func mapPersistError(err error) error {
	if err == nil {
		return nil
	}
	if coded := pkgerrors.As(err); coded != nil {
		return coded
	}
	if db.IsUniqueViolation(err, baseCodeConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "base code already used in this category")
	}
	if db.IsUniqueViolation(err, skuConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate value")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist product")
}
