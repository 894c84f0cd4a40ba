package pipeline

import "github.com/nao1215/ytanalyzer/internal/model"

// Job carries one video through the stage workflow.
//
// Result is the in-memory snapshot of the aggregate. A step that fails
// leaves it untouched; a step that succeeds replaces it with the merged
// aggregate, so readers never observe a half-applied response.
type Job struct {
	// AnalysisID identifies the analysis on the backend. It is filled in
	// by the analyze step when the job starts from a URL.
	AnalysisID string

	// VideoURL is the video submitted by the analyze step.
	VideoURL string

	// Perspective is the lens used for the critical analysis. Empty means
	// the step's configured perspective, then model.DefaultPerspective.
	Perspective string

	// Result is the current aggregate snapshot.
	Result *model.AnalysisResult

	// Cached reports whether the backend served the last result from its cache.
	Cached bool

	// Phase is where the job stands in the request workflow.
	Phase Phase

	// Err is the last step error, nil if every step succeeded.
	Err error

	// ErrorMessage is Err rendered for display.
	ErrorMessage string

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// ExportPath is where the document was written, if exported.
	ExportPath string

	// ExportSkipped reports that an identical document already existed
	// at ExportPath and nothing was written.
	ExportSkipped bool
}

// NewJob creates a job for an existing analysis.
func NewJob(analysisID string) *Job {
	return &Job{AnalysisID: analysisID}
}

// NewURLJob creates a job that starts by analyzing a video URL.
func NewURLJob(videoURL string) *Job {
	return &Job{VideoURL: videoURL}
}

// label identifies the job in log output.
func (j *Job) label() string {
	if j.AnalysisID != "" {
		return j.AnalysisID
	}
	return j.VideoURL
}
