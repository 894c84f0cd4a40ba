package model

// Stage identifies one of the three cumulative analysis passes.
//
// Design decision: We use iota-based constants so stages can be compared
// with < and >. A result that has reached StageAdditional has necessarily
// passed through the earlier stages.
type Stage int

const (
	// StageNone means no analysis data is available yet.
	StageNone Stage = iota

	// StageInitial is the first pass: summary, quotes, sources and suitability.
	StageInitial

	// StageCritical is the second pass, requested explicitly with a perspective.
	StageCritical

	// StageAdditional is the third pass producing the video production guide.
	StageAdditional
)

// String returns a human-readable representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageInitial:
		return "initial"
	case StageCritical:
		return "critical"
	case StageAdditional:
		return "additional"
	default:
		return "unknown"
	}
}

// Judgment is the backend's categorical suitability verdict.
type Judgment string

const (
	// JudgmentSuitable means the video is a good subject for critical content.
	JudgmentSuitable Judgment = "적합"
	// JudgmentPending means the video may be used with reservations.
	JudgmentPending Judgment = "보류"
	// JudgmentUnsuitable blocks the critical analysis stage.
	JudgmentUnsuitable Judgment = "부적합"
)

// IsUnsuitable reports whether the verdict blocks further analysis.
func (j Judgment) IsUnsuitable() bool {
	return j == JudgmentUnsuitable
}

// UsageRecommendation is how the backend suggests the video be used.
type UsageRecommendation string

// Known usage recommendations.
const (
	UsageMainContent UsageRecommendation = "메인 콘텐츠"
	UsageShortForm   UsageRecommendation = "숏폼"
	UsageReference   UsageRecommendation = "참고만"
	UsagePass        UsageRecommendation = "패스"
)

// Shape records which JSON shape a backward-compatible field arrived in.
type Shape int

const (
	// ShapeCurrent is the structured object shape returned by current backends.
	ShapeCurrent Shape = iota
	// ShapeLegacy is a plain string, or for content direction a flat object.
	ShapeLegacy
)

// String returns the shape name.
func (s Shape) String() string {
	if s == ShapeLegacy {
		return "legacy"
	}
	return "current"
}
