// internal/catalog/repository.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/lib/pq"

	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/models"
)

// Repository provides read-only access to the archetype catalog and the
// per-sex gender mappings. All writes happen through authoring tooling that
// is out of this service's scope.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

const archetypeColumns = `
	id, name, sex_code, bmi_min, bmi_max,
	obesity_category, muscularity_category, level, morphotype_code,
	morph_values, limb_masses, morph_index, muscle_index`

// Archetypes loads the full catalog in insertion order. The filter pipeline
// owns all narrowing; loading everything keeps the funnel counters
// meaningful from the very first stage.
func (r *Repository) Archetypes(ctx context.Context) ([]models.Archetype, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+archetypeColumns+`
		FROM archetypes
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query archetypes: %w", err)
	}
	defer rows.Close()

	return r.scanArchetypes(rows)
}

// ArchetypesByIDs loads specific archetypes, preserving catalog order.
func (r *Repository) ArchetypesByIDs(ctx context.Context, ids []string) ([]models.Archetype, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+archetypeColumns+`
		FROM archetypes
		WHERE id = ANY($1)
		ORDER BY created_at, id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query archetypes by ids: %w", err)
	}
	defer rows.Close()

	return r.scanArchetypes(rows)
}

func (r *Repository) scanArchetypes(rows *sql.Rows) ([]models.Archetype, error) {
	var out []models.Archetype
	for rows.Next() {
		var a models.Archetype
		var morphRaw, limbRaw []byte
		err := rows.Scan(
			&a.ID, &a.Name, &a.SexCode, &a.BMIRange.Min, &a.BMIRange.Max,
			&a.ObesityCategory, &a.MuscularityCategory, &a.Level, &a.MorphotypeCode,
			&morphRaw, &limbRaw, &a.MorphIndex, &a.MuscleIndex,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archetype: %w", err)
		}

		a.MorphValues = r.decodeNumericMap(a.ID, "morph_values", morphRaw)
		a.LimbMasses = r.decodeNumericMap(a.ID, "limb_masses", limbRaw)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archetypes: %w", err)
	}
	return out, nil
}

// GenderMapping loads the canonical range record for one sex.
func (r *Repository) GenderMapping(ctx context.Context, sex models.SexCode) (models.GenderMapping, error) {
	var m models.GenderMapping
	var morphRaw, limbRaw []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT sex_code,
		       bmi_min, bmi_max, height_min, height_max, weight_min, weight_max,
		       morph_index_min, morph_index_max, muscle_index_min, muscle_index_max,
		       morph_value_ranges, limb_mass_ranges
		FROM gender_mappings
		WHERE sex_code = $1`, string(sex)).Scan(
		&m.SexCode,
		&m.BMIRange.Min, &m.BMIRange.Max,
		&m.HeightRange.Min, &m.HeightRange.Max,
		&m.WeightRange.Min, &m.WeightRange.Max,
		&m.MorphIndexRange.Min, &m.MorphIndexRange.Max,
		&m.MuscleIndexRange.Min, &m.MuscleIndexRange.Max,
		&morphRaw, &limbRaw,
	)
	if err != nil {
		return models.GenderMapping{}, fmt.Errorf("query gender mapping %q: %w", sex, err)
	}

	m.MorphValueRanges = r.decodeRangeMap(string(sex), "morph_value_ranges", morphRaw)
	m.LimbMassRanges = r.decodeRangeMap(string(sex), "limb_mass_ranges", limbRaw)
	m.Source = models.MappingSourceCatalog
	return m, nil
}

// decodeNumericMap converts a jsonb column into a float map. Catalog rows
// sometimes carry double-encoded payloads or string-encoded numbers; both
// are tolerated. A value that cannot be parsed into a finite number drops
// that key only, so one malformed field never poisons the row.
func (r *Repository) decodeNumericMap(id, field string, raw []byte) map[string]float64 {
	loose, ok := r.unmarshalLoose(id, field, raw)
	if !ok {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(loose))
	for key, v := range loose {
		f, err := toFloat(v)
		if err != nil || !finite(f) {
			r.logger.Warn("dropping malformed catalog value", map[string]interface{}{
				"archetypeId": id,
				"field":       field,
				"key":         key,
			})
			continue
		}
		out[key] = f
	}
	return out
}

func (r *Repository) decodeRangeMap(sex, field string, raw []byte) map[string]models.Range {
	if len(raw) == 0 {
		return map[string]models.Range{}
	}
	var loose map[string]models.Range
	if err := json.Unmarshal(raw, &loose); err != nil {
		r.logger.Warn("unparseable range map", map[string]interface{}{
			"sexCode": sex,
			"field":   field,
			"error":   err.Error(),
		})
		return map[string]models.Range{}
	}

	out := make(map[string]models.Range, len(loose))
	for key, rg := range loose {
		if !finite(rg.Min) || !finite(rg.Max) {
			r.logger.Warn("dropping non-finite catalog range", map[string]interface{}{
				"sexCode": sex,
				"field":   field,
				"key":     key,
			})
			continue
		}
		out[key] = rg
	}
	return out
}

func (r *Repository) unmarshalLoose(id, field string, raw []byte) (map[string]interface{}, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var loose map[string]interface{}
	if err := json.Unmarshal(raw, &loose); err == nil {
		return loose, true
	}

	// Some legacy rows store the map as a JSON-encoded string.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &loose); err == nil {
			return loose, true
		}
	}

	r.logger.Warn("unparseable catalog map", map[string]interface{}{
		"archetypeId": id,
		"field":       field,
	})
	return nil, false
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
