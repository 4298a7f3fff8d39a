// internal/matching/envelope.go
package matching

import (
	"time"

	"github.com/google/uuid"

	"bodyscan-workers/internal/models"
)

// EnvelopeConfig holds the margin fractions and the version tag stamped into
// envelope metadata.
type EnvelopeConfig struct {
	// ShapeMargin widens archetype-derived shape ranges by this fraction of
	// the observed span, on each side.
	ShapeMargin float64
	// LimbMargin does the same for limb-mass ranges.
	LimbMargin float64
	Version    string
}

// BuildEnvelope derives one range per gender-mapping key. A key backed by at
// least two distinct archetype values gets the observed min/max widened by
// the class margin and clipped to the canonical catalog range; any other key
// falls back to the catalog range outright. Clipping makes invariant (d) of
// the data model hold by construction.
func BuildEnvelope(selected []models.ScoredArchetype, mapping models.GenderMapping, cfg EnvelopeConfig) models.Envelope {
	shape := make(map[string]models.EnvelopeRange, len(mapping.MorphValueRanges))
	fromArchetypes := 0
	for key, catalog := range mapping.MorphValueRanges {
		r := buildRange(valuesForKey(selected, key, morphValue), catalog, cfg.ShapeMargin)
		if r.Source == models.RangeSourceArchetypes {
			fromArchetypes++
		}
		shape[key] = r
	}

	limbs := make(map[string]models.EnvelopeRange, len(mapping.LimbMassRanges))
	for key, catalog := range mapping.LimbMassRanges {
		r := buildRange(valuesForKey(selected, key, limbMass), catalog, cfg.LimbMargin)
		if r.Source == models.RangeSourceArchetypes {
			fromArchetypes++
		}
		limbs[key] = r
	}

	total := len(shape) + len(limbs)
	ids := make([]string, 0, len(selected))
	for _, s := range selected {
		ids = append(ids, s.ID)
	}

	return models.Envelope{
		ShapeParams: shape,
		LimbMasses:  limbs,
		Metadata: models.EnvelopeMetadata{
			EnvelopeID:            uuid.NewString(),
			ArchetypesUsed:        ids,
			TotalKeysProcessed:    total,
			KeysWithArchetypeData: fromArchetypes,
			KeysUsingDBFallback:   total - fromArchetypes,
			GeneratedAt:           time.Now().UTC().Format(time.RFC3339),
			Version:               cfg.Version,
		},
	}
}

func morphValue(a models.ScoredArchetype, key string) (float64, bool) {
	v, ok := a.MorphValues[key]
	return v, ok
}

func limbMass(a models.ScoredArchetype, key string) (float64, bool) {
	v, ok := a.LimbMasses[key]
	return v, ok
}

// valuesForKey collects the key's value from every archetype that defines
// it. Archetypes missing the key contribute nothing; other keys and other
// archetypes are unaffected.
func valuesForKey(selected []models.ScoredArchetype, key string, get func(models.ScoredArchetype, string) (float64, bool)) []float64 {
	var values []float64
	for _, s := range selected {
		if v, ok := get(s, key); ok {
			values = append(values, v)
		}
	}
	return values
}

func buildRange(values []float64, catalog models.Range, margin float64) models.EnvelopeRange {
	if !hasTwoDistinct(values) {
		return models.EnvelopeRange{
			Min:          catalog.Min,
			Max:          catalog.Max,
			ArchetypeMin: catalog.Min,
			ArchetypeMax: catalog.Max,
			Source:       models.RangeSourceCatalogFallback,
		}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	pad := margin * (hi - lo)
	return models.EnvelopeRange{
		Min:          maxFloat(catalog.Min, lo-pad),
		Max:          minFloat(catalog.Max, hi+pad),
		ArchetypeMin: lo,
		ArchetypeMax: hi,
		Source:       models.RangeSourceArchetypes,
	}
}

func hasTwoDistinct(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
