package model

// AnalysisResult is the aggregate produced by the backend for one video.
// The first stage populates the identity, metadata and stage-1 fields;
// CriticalAnalysis and AdditionalAnalysis are attached by the later stages.
//
// The client never edits an AnalysisResult in place. After each stage
// completes the whole value is replaced, see Extend.
type AnalysisResult struct {
	ID           string `json:"id"`
	VideoID      string `json:"video_id"`
	VideoTitle   string `json:"video_title"`
	VideoURL     string `json:"video_url"`
	ChannelName  string `json:"channel_name"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// Performance data. Zero means the backend did not report the value.
	ViewCount       int64   `json:"view_count,omitempty"`
	LikeCount       int64   `json:"like_count,omitempty"`
	CommentCount    int64   `json:"comment_count,omitempty"`
	SubscriberCount int64   `json:"subscriber_count,omitempty"`
	ViewSubRatio    float64 `json:"view_sub_ratio,omitempty"`
	PublishedAt     string  `json:"published_at,omitempty"`

	VideoStructure   []VideoStructureItem `json:"video_structure,omitempty"`
	StructureSummary string               `json:"structure_summary,omitempty"`

	Summary             string               `json:"summary"`
	KeyMessage          string               `json:"key_message"`
	KeyPoints           []string             `json:"key_points"`
	Quotes              []Quote              `json:"quotes"`
	People              []Person             `json:"people"`
	InvestmentStrategy  string               `json:"investment_strategy,omitempty"`
	SourceTracking      []SourceTracking     `json:"source_tracking"`
	SuitabilityAnalysis *SuitabilityAnalysis `json:"suitability_analysis,omitempty"`

	// Perspective is the id of the lens used for the critical analysis.
	Perspective        string              `json:"perspective,omitempty"`
	CriticalAnalysis   *CriticalAnalysis   `json:"critical_analysis,omitempty"`
	AdditionalAnalysis *AdditionalAnalysis `json:"additional_analysis,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
}

// Quote is a notable sentence from the video.
type Quote struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
	Shape   Shape  `json:"-"`
}

// Person is someone appearing in or referenced by the video.
type Person struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Shape Shape  `json:"-"`
}

// SourceTracking links a claim in the video to the source it came from.
type SourceTracking struct {
	Quote          string   `json:"quote,omitempty"`
	SourceTitle    string   `json:"source_title"`
	SourceURL      string   `json:"source_url,omitempty"`
	SourceType     string   `json:"source_type,omitempty"`
	SearchKeywords []string `json:"search_keywords,omitempty"`
	Verified       bool     `json:"verified,omitempty"`
}

// VideoStructureItem is one element of the video's narrative structure.
type VideoStructureItem struct {
	Order       int    `json:"order"`
	Element     string `json:"element"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
}

// SuitabilityItem is a sub-judgment expressed as a presence flag and a note.
type SuitabilityItem struct {
	Exists  bool   `json:"exists"`
	Content string `json:"content"`
}

// SuitabilityLevel is a sub-judgment expressed as a level and a reason.
type SuitabilityLevel struct {
	Level  string `json:"level"`
	Reason string `json:"reason"`
}

// SuitabilityAnalysis decides whether the video is worth criticizing.
type SuitabilityAnalysis struct {
	FeasibilityIssue    SuitabilityItem     `json:"feasibility_issue"`
	HiddenPremise       SuitabilityItem     `json:"hidden_premise"`
	CriticismPoint      SuitabilityItem     `json:"criticism_point"`
	TargetEmpathy       SuitabilityLevel    `json:"target_empathy"`
	SourceAvailability  SuitabilityLevel    `json:"source_availability"`
	SuitabilityScore    int                 `json:"suitability_score"`
	Judgment            Judgment            `json:"judgment"`
	UsageRecommendation UsageRecommendation `json:"usage_recommendation"`
	UnsuitableReason    string              `json:"unsuitable_reason,omitempty"`
}

// CompletedStage returns the furthest stage present on the result.
func (r *AnalysisResult) CompletedStage() Stage {
	switch {
	case r == nil:
		return StageNone
	case r.AdditionalAnalysis != nil:
		return StageAdditional
	case r.CriticalAnalysis != nil:
		return StageCritical
	case r.ID != "":
		return StageInitial
	default:
		return StageNone
	}
}

// Judgment returns the suitability verdict, or the empty Judgment when
// the backend produced no suitability analysis.
func (r *AnalysisResult) Judgment() Judgment {
	if r == nil || r.SuitabilityAnalysis == nil {
		return ""
	}
	return r.SuitabilityAnalysis.Judgment
}

// Extend returns next with every earlier-stage section that next lacks
// copied over from prev. A later stage never removes data produced by an
// earlier one, even if the backend response omits it.
//
// prev is not modified. If next is nil, prev is returned.
func Extend(prev, next *AnalysisResult) *AnalysisResult {
	if next == nil {
		return prev
	}
	if prev == nil {
		return next
	}

	merged := *next
	fillString(&merged.ID, prev.ID)
	fillString(&merged.VideoID, prev.VideoID)
	fillString(&merged.VideoTitle, prev.VideoTitle)
	fillString(&merged.VideoURL, prev.VideoURL)
	fillString(&merged.ChannelName, prev.ChannelName)
	fillString(&merged.ThumbnailURL, prev.ThumbnailURL)
	fillString(&merged.PublishedAt, prev.PublishedAt)
	fillString(&merged.StructureSummary, prev.StructureSummary)
	fillString(&merged.Summary, prev.Summary)
	fillString(&merged.KeyMessage, prev.KeyMessage)
	fillString(&merged.InvestmentStrategy, prev.InvestmentStrategy)
	fillString(&merged.Perspective, prev.Perspective)
	fillString(&merged.CreatedAt, prev.CreatedAt)

	fillInt(&merged.ViewCount, prev.ViewCount)
	fillInt(&merged.LikeCount, prev.LikeCount)
	fillInt(&merged.CommentCount, prev.CommentCount)
	fillInt(&merged.SubscriberCount, prev.SubscriberCount)
	if merged.ViewSubRatio == 0 {
		merged.ViewSubRatio = prev.ViewSubRatio
	}

	fillSlice(&merged.VideoStructure, prev.VideoStructure)
	fillSlice(&merged.KeyPoints, prev.KeyPoints)
	fillSlice(&merged.Quotes, prev.Quotes)
	fillSlice(&merged.People, prev.People)
	fillSlice(&merged.SourceTracking, prev.SourceTracking)

	if merged.SuitabilityAnalysis == nil {
		merged.SuitabilityAnalysis = prev.SuitabilityAnalysis
	}
	if merged.CriticalAnalysis == nil {
		merged.CriticalAnalysis = prev.CriticalAnalysis
	}
	if merged.AdditionalAnalysis == nil {
		merged.AdditionalAnalysis = prev.AdditionalAnalysis
	}
	return &merged
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func fillInt(dst *int64, src int64) {
	if *dst == 0 {
		*dst = src
	}
}

func fillSlice[T any](dst *[]T, src []T) {
	if len(*dst) == 0 && len(src) > 0 {
		*dst = src
	}
}
