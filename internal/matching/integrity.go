// internal/matching/integrity.go
package matching

import (
	"fmt"
	"math"

	"bodyscan-workers/internal/models"
)

// Parameter-class defaults used to repair non-finite bounds.
var (
	shapeDefault = models.Range{Min: -1, Max: 1}
	limbDefault  = models.Range{Min: 0.8, Max: 1.2}
)

// IntegrityReport is the outcome of validating an envelope. Corrected is nil
// when no repair was needed and the caller should keep the original.
type IntegrityReport struct {
	Valid     bool
	Issues    []string
	Corrected *models.Envelope
}

// ValidateEnvelope scans every range in both maps, replacing non-finite
// bounds with the parameter-class default and swapping inverted bounds.
// Validation never fails the request: it self-heals and reports what it
// fixed. Running it on an already-valid envelope is a no-op.
func ValidateEnvelope(env models.Envelope) IntegrityReport {
	var issues []string

	shape, shapeIssues := repairMap(env.ShapeParams, "shape_params", shapeDefault)
	issues = append(issues, shapeIssues...)

	limbs, limbIssues := repairMap(env.LimbMasses, "limb_masses", limbDefault)
	issues = append(issues, limbIssues...)

	if len(issues) == 0 {
		return IntegrityReport{Valid: true}
	}

	corrected := models.Envelope{
		ShapeParams: shape,
		LimbMasses:  limbs,
		Metadata:    env.Metadata,
	}
	return IntegrityReport{Valid: false, Issues: issues, Corrected: &corrected}
}

func repairMap(in map[string]models.EnvelopeRange, class string, def models.Range) (map[string]models.EnvelopeRange, []string) {
	out := make(map[string]models.EnvelopeRange, len(in))
	var issues []string
	for key, r := range in {
		fixed, keyIssues := repairRange(r, fmt.Sprintf("%s.%s", class, key), def)
		out[key] = fixed
		issues = append(issues, keyIssues...)
	}
	return out, issues
}

func repairRange(r models.EnvelopeRange, label string, def models.Range) (models.EnvelopeRange, []string) {
	var issues []string

	if !isFinite(r.Min) {
		issues = append(issues, fmt.Sprintf("%s: non-finite min replaced with %g", label, def.Min))
		r.Min = def.Min
	}
	if !isFinite(r.Max) {
		issues = append(issues, fmt.Sprintf("%s: non-finite max replaced with %g", label, def.Max))
		r.Max = def.Max
	}
	if r.Min > r.Max {
		issues = append(issues, fmt.Sprintf("%s: inverted range swapped", label))
		r.Min, r.Max = r.Max, r.Min
	}
	return r, issues
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
