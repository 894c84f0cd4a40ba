package model

import "slices"

// HistoryItem is one entry of the backend's analysis history.
type HistoryItem struct {
	ID           string `json:"id"`
	VideoID      string `json:"video_id"`
	VideoTitle   string `json:"video_title"`
	VideoURL     string `json:"video_url"`
	ChannelName  string `json:"channel_name"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// Perspective is a named analytical lens for the critical analysis.
type Perspective struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultPerspective is the lens the backend falls back to when none is chosen.
const DefaultPerspective = "auto_trading"

// KnownPerspectives lists the perspective ids the backend ships with.
// The authoritative list is served by the perspectives endpoint; this one
// is used for flag completion and offline validation only.
var KnownPerspectives = []string{
	"auto_trading",
	"value_investing",
	"day_trading",
	"psychology",
}

// IsKnownPerspective reports whether id is one of KnownPerspectives.
func IsKnownPerspective(id string) bool {
	return slices.Contains(KnownPerspectives, id)
}
