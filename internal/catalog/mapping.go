// internal/catalog/mapping.go
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "bodyscan-workers/internal/common/errors"
	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/models"
)

const mappingCachePrefix = "bodyscan:gender-mapping:"

// MappingStore is the read side of the gender-mapping catalog.
type MappingStore interface {
	GenderMapping(ctx context.Context, sex models.SexCode) (models.GenderMapping, error)
}

// MappingResolver obtains the gender mapping for a request. Catalog reads go
// through an optional Redis cache; a repository failure switches immediately
// and synchronously to the hardcoded fallback table (degraded mode) with no
// retry. The cache is read-only from the matching engine's perspective and
// invalidated externally.
type MappingResolver struct {
	store  MappingStore
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewMappingResolver(store MappingStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *MappingResolver {
	return &MappingResolver{
		store:  store,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "mapping-resolver"}),
	}
}

// Resolve returns the mapping for sex plus metadata describing its
// provenance. It errors only when both the catalog and the hardcoded
// fallback fail to produce data for the requested sex.
func (r *MappingResolver) Resolve(ctx context.Context, sex models.SexCode) (models.GenderMapping, models.MappingMetadata, error) {
	if cached, ok := r.fromCache(ctx, sex); ok {
		return cached, models.MappingMetadata{MappingSource: models.MappingSourceCatalog}, nil
	}

	mapping, err := r.store.GenderMapping(ctx, sex)
	if err == nil {
		r.toCache(ctx, sex, mapping)
		return mapping, models.MappingMetadata{MappingSource: models.MappingSourceCatalog}, nil
	}

	r.logger.Warn("catalog mapping unavailable, switching to hardcoded fallback", map[string]interface{}{
		"sexCode": sex,
		"error":   err.Error(),
	})

	fallback, ok := fallbackMapping(sex)
	if !ok {
		return models.GenderMapping{}, models.MappingMetadata{}, apperrors.NewMappingUnavailableError(string(sex), err)
	}

	return fallback, models.MappingMetadata{
		MappingSource:  models.MappingSourceFallback,
		FallbackUsed:   true,
		FallbackReason: err.Error(),
	}, nil
}

func (r *MappingResolver) fromCache(ctx context.Context, sex models.SexCode) (models.GenderMapping, bool) {
	if r.redis == nil {
		return models.GenderMapping{}, false
	}
	raw, err := r.redis.Get(ctx, mappingCachePrefix+string(sex)).Result()
	if err != nil {
		return models.GenderMapping{}, false
	}
	var m models.GenderMapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return models.GenderMapping{}, false
	}
	return m, true
}

func (r *MappingResolver) toCache(ctx context.Context, sex models.SexCode, m models.GenderMapping) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, mappingCachePrefix+string(sex), data, r.ttl).Err(); err != nil {
		r.logger.Warn("mapping cache write failed", map[string]interface{}{
			"sexCode": sex,
			"error":   err.Error(),
		})
	}
}
