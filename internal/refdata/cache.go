package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/habitatline/habitat-backend/pkg/db/models"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
	"github.com/habitatline/habitat-backend/pkg/logger"
	pkgredis "github.com/habitatline/habitat-backend/pkg/redis"
)

// Reference data kinds served by the cache.
const (
	KindCategories  = "categories"
	KindCollections = "collections"
	KindColors      = "colors"
)

// Service serves the small, slow-changing lookup tables the authoring UI
// loads on every session: categories, collections, and colors.
type Service interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Collections(ctx context.Context) ([]models.Collection, error)
	Colors(ctx context.Context) ([]models.Color, error)
	Invalidate(ctx context.Context, kind string) error
}

// cacheStore is the slice of the redis client the cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RefdataKey(kind string) string
}

type service struct {
	db    *gorm.DB
	cache cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService constructs the reference data cache.
func NewService(db *gorm.DB, cache cacheStore, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{db: db, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *service) Categories(ctx context.Context) ([]models.Category, error) {
	return readThrough(ctx, s, KindCategories, func(ctx context.Context) ([]models.Category, error) {
		var rows []models.Category
		err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
		return rows, err
	})
}

func (s *service) Collections(ctx context.Context) ([]models.Collection, error) {
	return readThrough(ctx, s, KindCollections, func(ctx context.Context) ([]models.Collection, error) {
		var rows []models.Collection
		err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
		return rows, err
	})
}

func (s *service) Colors(ctx context.Context) ([]models.Color, error) {
	return readThrough(ctx, s, KindColors, func(ctx context.Context) ([]models.Color, error) {
		var rows []models.Color
		err := s.db.WithContext(ctx).Order("label ASC").Find(&rows).Error
		return rows, err
	})
}

// Invalidate drops one cached kind after an admin edit.
func (s *service) Invalidate(ctx context.Context, kind string) error {
	switch kind {
	case KindCategories, KindCollections, KindColors:
		return s.cache.Del(ctx, s.cache.RefdataKey(kind))
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown refdata kind %q", kind))
	}
}

// readThrough serves the cached payload when present and falls back to the
// database otherwise. Cache failures degrade to direct reads; refdata must
// stay available when redis is not.
func readThrough[T any](ctx context.Context, s *service, kind string, load func(context.Context) ([]T, error)) ([]T, error) {
	key := s.cache.RefdataKey(kind)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var rows []T
		if unmarshalErr := json.Unmarshal([]byte(cached), &rows); unmarshalErr == nil {
			return rows, nil
		}
		// Corrupt payload: fall through to the database and overwrite.
	} else if !errors.Is(err, pkgredis.ErrNotFound) {
		logCtx := s.logg.WithFields(ctx, map[string]any{"kind": kind, "error": err.Error()})
		s.logg.Warn(logCtx, "refdata cache read failed, serving from database")
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reference data")
	}

	payload, err := json.Marshal(rows)
	if err == nil {
		if setErr := s.cache.Set(ctx, key, string(payload), s.ttl); setErr != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"kind": kind, "error": setErr.Error()})
			s.logg.Warn(logCtx, "refdata cache write failed")
		}
	}

	return rows, nil
}
