package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/pkg/db/models"
	"github.com/habitatline/habitat-backend/pkg/enums"
	"github.com/habitatline/habitat-backend/pkg/pagination"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByID loads the product without associations.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetDetail loads the product with every association the detail view needs.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Collection").
		Preload("PrimaryColor").
		Preload("SecondaryColor").
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("position_order ASC")
		}).
		Preload("Slots.SubItem").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Media.Media").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByIDs loads products in bulk with the associations variant resolution
// reads (primary color for the color label).
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("PrimaryColor").
		Where("id IN ?", ids).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts the product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// BaseCodeTaken reports whether another product in the category already uses
// the base code. The unique index remains the authority under races.
func (r *Repository) BaseCodeTaken(ctx context.Context, categoryID uuid.UUID, baseCode string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ? AND base_code = ?", categoryID, baseCode)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReplaceSlots swaps the kit's bill of materials for the provided rows.
func (r *Repository) ReplaceSlots(ctx context.Context, productID uuid.UUID, slots []models.CompositionSlot) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.CompositionSlot{}).Error; err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}
	return tx.Create(&slots).Error
}

// ListSlots returns the kit's slots in persisted order.
func (r *Repository) ListSlots(ctx context.Context, productID uuid.UUID) ([]models.CompositionSlot, error) {
	var rows []models.CompositionSlot
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position_order ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCategory loads a category row.
func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetColor loads a color row.
func (r *Repository) GetColor(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	var color models.Color
	if err := r.db.WithContext(ctx).First(&color, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &color, nil
}

// ListFilters describe the supported filter knobs for the admin browse view.
type ListFilters struct {
	Kind       *enums.ProductKind
	Status     *enums.ProductStatus
	CategoryID *uuid.UUID
	Query      string
}

// ListInput captures pagination plus filters for the catalog listing.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// List pages through the catalog newest-first with a created_at/id cursor.
func (r *Repository) List(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("PrimaryColor")

	if input.Filters.Kind != nil {
		query = query.Where("kind = ?", *input.Filters.Kind)
	}
	if input.Filters.Status != nil {
		query = query.Where("status = ?", *input.Filters.Status)
	}
	if input.Filters.CategoryID != nil {
		query = query.Where("category_id = ?", *input.Filters.CategoryID)
	}
	if q := input.Filters.Query; q != "" {
		pattern := "%" + q + "%"
		query = query.Where("title ILIKE ? OR sku ILIKE ? OR base_code ILIKE ?", pattern, pattern, pattern)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
