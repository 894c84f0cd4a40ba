package model

// AdditionalAnalysis is the stage-3 section: a production guide for a
// follow-up video.
type AdditionalAnalysis struct {
	ThumbnailSuggestions  []ThumbnailSuggestion  `json:"thumbnail_suggestions"`
	TitleSuggestions      []TitleSuggestion      `json:"title_suggestions"`
	VideoLength           *VideoLength           `json:"video_length,omitempty"`
	ScriptDirections      []ScriptDirection      `json:"script_directions"`
	BonusTip              *BonusTip              `json:"bonus_tip,omitempty"`
	VideoSources          *VideoSources          `json:"video_sources,omitempty"`
	PerformancePrediction *PerformancePrediction `json:"performance_prediction,omitempty"`
	MembershipConnection  *MembershipConnection  `json:"membership_connection,omitempty"`
}

// ThumbnailSuggestion is a proposed thumbnail caption.
type ThumbnailSuggestion struct {
	Type            string `json:"type"`
	Text            string `json:"text"`
	Basis           string `json:"basis,omitempty"`
	ClickPsychology string `json:"click_psychology"`
}

// TitleSuggestion is a proposed video title.
type TitleSuggestion struct {
	Pattern string `json:"pattern"`
	Target  string `json:"target"`
	Title   string `json:"title"`
	Basis   string `json:"basis"`
}

// VideoLengthPart is a time slot in the recommended running order.
type VideoLengthPart struct {
	Part      string `json:"part"`
	TimeRange string `json:"time_range"`
	Content   string `json:"content"`
}

// VideoLength is the recommended length and format of the new video.
type VideoLength struct {
	RecommendedLength string            `json:"recommended_length"`
	Format            string            `json:"format"`
	JudgmentBasis     string            `json:"judgment_basis"`
	Parts             []VideoLengthPart `json:"parts,omitempty"`
}

// ScriptDirection describes the tone and key point of one script part.
type ScriptDirection struct {
	Part     string `json:"part"`
	Emotion  string `json:"emotion"`
	Keypoint string `json:"keypoint"`
	Basis    string `json:"basis"`
}

// BonusTip is an extra piece of advice for viewers.
type BonusTip struct {
	Tip        string `json:"tip,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Summary    string `json:"summary,omitempty"`
	WhyHelpful string `json:"why_helpful,omitempty"`
	Source     string `json:"source"`
	SourceURL  string `json:"source_url,omitempty"`
}

// InterviewClip is a third-party clip worth quoting in the new video.
type InterviewClip struct {
	Person     string `json:"person"`
	Topic      string `json:"topic"`
	Link       string `json:"link"`
	VideoTitle string `json:"video_title,omitempty"`
	Quote      string `json:"quote,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// EvidenceSource is material backing up a counterexample.
type EvidenceSource struct {
	Topic         string `json:"topic"`
	Link          string `json:"link"`
	Contradiction string `json:"contradiction,omitempty"`
	Evidence      string `json:"evidence,omitempty"`
	SourceType    string `json:"source_type,omitempty"`
}

// BrollKeyword is a stock footage search term for a scene.
type BrollKeyword struct {
	Keyword   string `json:"keyword"`
	Scene     string `json:"scene"`
	UsagePart string `json:"usage_part"`
}

// Veo3Prompt is a text-to-video generation prompt for a scene.
type Veo3Prompt struct {
	Scene     string `json:"scene"`
	UsagePart string `json:"usage_part"`
	Prompt    string `json:"prompt"`
}

// VideoSources groups the footage and evidence recommendations.
type VideoSources struct {
	InterviewClips  []InterviewClip  `json:"interview_clips"`
	EvidenceSources []EvidenceSource `json:"evidence_sources"`
	BrollKeywords   []BrollKeyword   `json:"broll_keywords,omitempty"`
	Veo3Prompts     []Veo3Prompt     `json:"veo3_prompts,omitempty"`
}

// TargetFit scores how well the video suits an audience segment.
type TargetFit struct {
	Target   string `json:"target"`
	FitLevel int    `json:"fit_level"`
	Reason   string `json:"reason"`
}

// Controversy estimates how much debate the video will provoke.
type Controversy struct {
	Level             int    `json:"level"`
	ExpectedReactions string `json:"expected_reactions"`
}

// ExpectedComment is a sample comment the video is likely to receive.
type ExpectedComment struct {
	Type    string `json:"type"`
	Comment string `json:"comment"`
}

// SeriesExpansion is a follow-up topic that continues the video.
type SeriesExpansion struct {
	Topic      string `json:"topic"`
	Connection string `json:"connection"`
}

// PerformancePrediction forecasts the audience response.
type PerformancePrediction struct {
	TargetFits       []TargetFit       `json:"target_fits,omitempty"`
	Controversy      *Controversy      `json:"controversy,omitempty"`
	ExpectedComments []ExpectedComment `json:"expected_comments,omitempty"`
	SeriesExpansions []SeriesExpansion `json:"series_expansions,omitempty"`
}

// MembershipTiming is a moment in the video to mention the paid membership.
type MembershipTiming struct {
	Timing        string `json:"timing"`
	VideoPosition string `json:"video_position"`
	Reason        string `json:"reason"`
}

// MembershipContext is a transition line leading into the membership pitch.
type MembershipContext struct {
	PreviousLine string `json:"previous_line"`
	Connection   string `json:"connection"`
}

// MembershipTeaser is a teaser line for members-only content.
type MembershipTeaser struct {
	Situation string `json:"situation"`
	Teaser    string `json:"teaser"`
}

// MembershipContentSuggestion is a members-only follow-up topic.
type MembershipContentSuggestion struct {
	Topic      string `json:"topic"`
	Connection string `json:"connection"`
}

// MembershipConnection suggests how to lead viewers to the membership.
type MembershipConnection struct {
	Timings            []MembershipTiming            `json:"timings,omitempty"`
	Contexts           []MembershipContext           `json:"contexts,omitempty"`
	Teasers            []MembershipTeaser            `json:"teasers,omitempty"`
	ContentSuggestions []MembershipContentSuggestion `json:"content_suggestions,omitempty"`
}
