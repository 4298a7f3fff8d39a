// internal/models/selection.go
package models

// Strategy labels which selection path produced a result.
type Strategy string

const (
	StrategyExact          Strategy = "exact"
	StrategyBMIRelaxed     Strategy = "bmi_relaxed"
	StrategyLogicalFailure Strategy = "logical_failure_empty"
)

// FilteringStats is the candidate funnel recorded by the filter pipeline.
// Counters are non-increasing in stage order.
type FilteringStats struct {
	Total                 int  `json:"total"`
	AfterSexFilter        int  `json:"after_sex_filter"`
	AfterMuscularGating   int  `json:"after_muscular_gating"`
	AfterBMIFilter        int  `json:"after_bmi_filter"`
	AfterMorphotypeFilter int  `json:"after_morphotype_filter"`
	AfterSemanticFilter   int  `json:"after_semantic_filter"`
	FinalSelected         int  `json:"final_selected"`
	BMIRelaxationApplied  bool `json:"bmi_relaxation_applied"`
	BMIRelaxationSteps    int  `json:"bmi_relaxation_steps"`
}

// SelectionResult is the ranked outcome of filtering plus distance ranking.
// Selected is ordered by ascending distance.
type SelectionResult struct {
	Selected       []ScoredArchetype `json:"selected_archetypes"`
	Strategy       Strategy          `json:"strategy_used"`
	CoherenceScore float64           `json:"semantic_coherence_score"`
	Stats          FilteringStats    `json:"filtering_stats"`
}
