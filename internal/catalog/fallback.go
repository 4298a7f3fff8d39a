// internal/catalog/fallback.go
package catalog

import "bodyscan-workers/internal/models"

// Hardcoded gender mappings used when the catalog-backed record cannot be
// read (degraded mode). Values mirror the catalog seed at the time this
// table was last synced; they favor completeness over precision.

func fallbackMapping(sex models.SexCode) (models.GenderMapping, bool) {
	switch sex {
	case models.SexMasculine:
		return masculineFallback(), true
	case models.SexFeminine:
		return feminineFallback(), true
	default:
		return models.GenderMapping{}, false
	}
}

func masculineFallback() models.GenderMapping {
	return models.GenderMapping{
		SexCode: models.SexMasculine,
		MorphValueRanges: map[string]models.Range{
			"thin":         {Min: -1.0, Max: 1.0},
			"muscular":     {Min: -1.0, Max: 1.0},
			"belly":        {Min: -0.5, Max: 1.5},
			"chest":        {Min: -1.0, Max: 1.0},
			"waist":        {Min: -1.2, Max: 1.2},
			"hips":         {Min: -1.0, Max: 1.0},
			"shoulders":    {Min: -1.0, Max: 1.2},
			"neck_girth":   {Min: -0.8, Max: 0.8},
			"pear_figure":  {Min: -1.0, Max: 0.5},
			"round_figure": {Min: -0.5, Max: 1.2},
		},
		LimbMassRanges: map[string]models.Range{
			"arm_mass":   {Min: 0.7, Max: 1.4},
			"leg_mass":   {Min: 0.7, Max: 1.5},
			"torso_mass": {Min: 0.8, Max: 1.3},
			"neck_mass":  {Min: 0.85, Max: 1.2},
		},
		BMIRange:         models.Range{Min: 15, Max: 45},
		HeightRange:      models.Range{Min: 1.50, Max: 2.10},
		WeightRange:      models.Range{Min: 45, Max: 150},
		MorphIndexRange:  models.Range{Min: 0, Max: 1},
		MuscleIndexRange: models.Range{Min: 0, Max: 1},
		Source:           models.MappingSourceFallback,
	}
}

func feminineFallback() models.GenderMapping {
	return models.GenderMapping{
		SexCode: models.SexFeminine,
		MorphValueRanges: map[string]models.Range{
			"thin":         {Min: -1.0, Max: 1.0},
			"muscular":     {Min: -1.0, Max: 0.8},
			"belly":        {Min: -0.5, Max: 1.5},
			"chest":        {Min: -1.0, Max: 1.2},
			"waist":        {Min: -1.2, Max: 1.2},
			"hips":         {Min: -1.0, Max: 1.5},
			"shoulders":    {Min: -1.0, Max: 1.0},
			"neck_girth":   {Min: -0.8, Max: 0.6},
			"pear_figure":  {Min: -1.0, Max: 1.2},
			"round_figure": {Min: -0.5, Max: 1.2},
		},
		LimbMassRanges: map[string]models.Range{
			"arm_mass":   {Min: 0.7, Max: 1.3},
			"leg_mass":   {Min: 0.7, Max: 1.5},
			"torso_mass": {Min: 0.8, Max: 1.25},
			"neck_mass":  {Min: 0.85, Max: 1.15},
		},
		BMIRange:         models.Range{Min: 15, Max: 45},
		HeightRange:      models.Range{Min: 1.40, Max: 2.00},
		WeightRange:      models.Range{Min: 40, Max: 130},
		MorphIndexRange:  models.Range{Min: 0, Max: 1},
		MuscleIndexRange: models.Range{Min: 0, Max: 1},
		Source:           models.MappingSourceFallback,
	}
}
