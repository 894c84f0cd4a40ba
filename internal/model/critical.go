package model

// CriticalAnalysis is the stage-2 section attached by a critical analysis request.
type CriticalAnalysis struct {
	Perspective               string                     `json:"perspective,omitempty"`
	PerspectiveName           string                     `json:"perspective_name,omitempty"`
	HiddenPremises            []HiddenPremise            `json:"hidden_premises"`
	RealisticContradictions   []RealisticContradiction   `json:"realistic_contradictions"`
	SourceBasedContradictions []SourceBasedContradiction `json:"source_based_contradictions"`
	HookingPoints             []HookingPoint             `json:"hooking_points"`
	ContentDirection          *ContentDirection          `json:"content_direction,omitempty"`
	PerspectiveInsights       []string                   `json:"perspective_insights,omitempty"`
	AutoTradingConnection     []AutoTradingConnection    `json:"auto_trading_connection,omitempty"`
	AutomationInsight         *AutomationInsight         `json:"automation_insight,omitempty"`
}

// HiddenPremise is an unstated assumption the video's argument relies on.
type HiddenPremise struct {
	Premise    string `json:"premise"`
	Evidence   string `json:"evidence,omitempty"`
	WhyProblem string `json:"why_problem,omitempty"`
	Source     string `json:"source,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	Verified   bool   `json:"verified,omitempty"`
	Shape      Shape  `json:"-"`
}

// RealisticContradiction is a strategy that is hard to follow in practice.
type RealisticContradiction struct {
	Point            string `json:"point,omitempty"`
	Strategy         string `json:"strategy,omitempty"`
	Evidence         string `json:"evidence,omitempty"`
	DifficultyReason string `json:"difficulty_reason,omitempty"`
	EvidenceData     string `json:"evidence_data,omitempty"`
	Source           string `json:"source,omitempty"`
	SourceURL        string `json:"source_url,omitempty"`
	Verified         bool   `json:"verified,omitempty"`
	Shape            Shape  `json:"-"`
}

// SourceBasedContradiction pairs a claim from the video with a sourced counterexample.
// Older responses carried only claim and counter_evidence; those fields are
// decoded but not rendered.
type SourceBasedContradiction struct {
	Claim                    string `json:"claim,omitempty"`
	CounterEvidence          string `json:"counter_evidence,omitempty"`
	OriginalClaim            string `json:"original_claim,omitempty"`
	OriginalSource           string `json:"original_source,omitempty"`
	OriginalSourceURL        string `json:"original_source_url,omitempty"`
	Counterexample           string `json:"counterexample,omitempty"`
	CounterexampleSource     string `json:"counterexample_source,omitempty"`
	CounterexampleSourceURL  string `json:"counterexample_source_url,omitempty"`
	HiddenCondition          string `json:"hidden_condition,omitempty"`
	HiddenConditionSource    string `json:"hidden_condition_source,omitempty"`
	HiddenConditionSourceURL string `json:"hidden_condition_source_url,omitempty"`
	Conclusion               string `json:"conclusion,omitempty"`
	SourceURL                string `json:"source_url,omitempty"`
	Verified                 bool   `json:"verified,omitempty"`
}

// HookingPoint is an angle that makes the audience want to keep watching.
type HookingPoint struct {
	Hook          string `json:"hook,omitempty"`
	Usage         string `json:"usage,omitempty"`
	Point         string `json:"point,omitempty"`
	EmpathyReason string `json:"empathy_reason,omitempty"`
	Target        string `json:"target,omitempty"`
	Level         int    `json:"level,omitempty"`
	Shape         Shape  `json:"-"`
}

// Label returns the headline of the hooking point, falling back to the
// older hook field.
func (h HookingPoint) Label() string {
	if h.Point != "" {
		return h.Point
	}
	return h.Hook
}

// ContentDirectionStep is one stage of the suggested video flow.
type ContentDirectionStep struct {
	Stage         string `json:"stage"`
	Intention     string `json:"intention"`
	ExampleScript string `json:"example_script"`
}

// LegacyContentDirection is the flat four-field shape used by older backends.
type LegacyContentDirection struct {
	Hook          string `json:"hook,omitempty"`
	Contradiction string `json:"contradiction,omitempty"`
	Empathy       string `json:"empathy,omitempty"`
	SolutionHint  string `json:"solution_hint,omitempty"`
}

// IsEmpty reports whether every legacy field is blank.
func (l LegacyContentDirection) IsEmpty() bool {
	return l.Hook == "" && l.Contradiction == "" && l.Empathy == "" && l.SolutionHint == ""
}

// ContentDirection is either an ordered list of steps (ShapeCurrent)
// or a LegacyContentDirection (ShapeLegacy). Exactly one of Steps and
// Legacy is meaningful, as selected by Shape.
type ContentDirection struct {
	Shape  Shape
	Steps  []ContentDirectionStep
	Legacy LegacyContentDirection
}

// AutoTradingConnection maps a strategy from the video to an implementation.
type AutoTradingConnection struct {
	StrategyContent      string `json:"strategy_content"`
	ImplementationMethod string `json:"implementation_method"`
	TechStack            string `json:"tech_stack"`
	Feasibility          string `json:"feasibility"`
	Limitation           string `json:"limitation,omitempty"`
}

// ProblemSolutionItem is a row of the automation problem/solution table.
type ProblemSolutionItem struct {
	Problem            string `json:"problem"`
	HumanDifficulty    string `json:"human_difficulty"`
	AutomationSolution string `json:"automation_solution"`
	Implementation     string `json:"implementation"`
}

// LifeExpansionExample applies the video's principle to another area of life.
type LifeExpansionExample struct {
	Area        string `json:"area"`
	Principle   string `json:"principle"`
	Application string `json:"application"`
}

// LifeExpansion lists areas outside investing where the insight applies.
type LifeExpansion struct {
	Applicable bool                   `json:"applicable"`
	Areas      []string               `json:"areas"`
	Examples   []LifeExpansionExample `json:"examples"`
}

// ImprovementCase is a documented case of someone overcoming a limitation.
type ImprovementCase struct {
	OriginalLimitation string `json:"original_limitation,omitempty"`
	Improver           string `json:"improver,omitempty"`
	Method             string `json:"method,omitempty"`
	VerifiedResult     string `json:"verified_result,omitempty"`
	SourceLink         string `json:"source_link,omitempty"`
}

// DifferentiationPoint is a way to set the new video apart from the original.
type DifferentiationPoint struct {
	Summary       string `json:"summary,omitempty"`
	QuoteTemplate string `json:"quote_template,omitempty"`
}

// AutomationInsight looks at the video through the lens of automation.
type AutomationInsight struct {
	VideoType               string                 `json:"video_type"`
	VideoTypeReason         string                 `json:"video_type_reason,omitempty"`
	ProblemSolutionTable    []ProblemSolutionItem  `json:"problem_solution_table"`
	CoreInsight             string                 `json:"core_insight"`
	LifeExpansion           *LifeExpansion         `json:"life_expansion,omitempty"`
	ImprovementCases        []ImprovementCase      `json:"improvement_cases,omitempty"`
	DifferentiationPoints   []DifferentiationPoint `json:"differentiation_points,omitempty"`
	ImprovementSearchFailed bool                   `json:"improvement_search_failed,omitempty"`
	SuggestedSearchKeywords []string               `json:"suggested_search_keywords,omitempty"`
}
