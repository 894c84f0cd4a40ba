package pipeline

import "errors"

// Sentinel errors for the stage workflow.
var (
	// ErrUnsuitable is wrapped by the gate error returned when the initial
	// analysis judged the video unsuitable for critical analysis.
	ErrUnsuitable = errors.New("video is unsuitable for critical analysis")

	// ErrCriticalRequired is wrapped by the gate error returned when the
	// additional analysis is requested before the critical analysis.
	ErrCriticalRequired = errors.New("critical analysis has not been completed")

	// ErrNoAnalysis is returned when a step needs an aggregate the job
	// does not hold yet.
	ErrNoAnalysis = errors.New("no analysis loaded")

	// ErrNoURL is returned when the analyze step runs without a video URL.
	ErrNoURL = errors.New("video URL is required")

	// ErrEmptyResult is returned when the backend reports success but
	// sends no aggregate.
	ErrEmptyResult = errors.New("backend returned no analysis")
)
