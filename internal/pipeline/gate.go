package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// User-facing gate messages.
const (
	// MsgCriticalRequired is shown when stage 3 is requested too early.
	MsgCriticalRequired = "비판적 분석을 먼저 진행해주세요."

	msgUnsuitableFormat     = "이 영상은 비판적 분석에 적합하지 않습니다. 사유: %s"
	defaultUnsuitableReason = "소재 부적합"
)

// GateError reports a stage request that the workflow rules forbid.
// It is returned before any network call is made.
type GateError struct {
	// Stage is the stage that was requested.
	Stage model.Stage

	// Reason is the backend's explanation, set for unsuitable videos.
	Reason string

	err error
}

// Error returns the localized message shown to the user.
func (e *GateError) Error() string {
	if errors.Is(e.err, ErrUnsuitable) {
		return fmt.Sprintf(msgUnsuitableFormat, e.Reason)
	}
	return MsgCriticalRequired
}

// Unwrap returns ErrUnsuitable or ErrCriticalRequired.
func (e *GateError) Unwrap() error {
	return e.err
}

// CheckCritical reports whether the critical analysis may be requested
// for r. It fails when no aggregate is loaded or when the initial
// analysis judged the video unsuitable. Re-running the critical analysis
// with another perspective is allowed.
func CheckCritical(r *model.AnalysisResult) error {
	if r == nil || r.ID == "" {
		return ErrNoAnalysis
	}
	if r.Judgment().IsUnsuitable() {
		reason := strings.TrimSpace(r.SuitabilityAnalysis.UnsuitableReason)
		if reason == "" {
			reason = defaultUnsuitableReason
		}
		return &GateError{Stage: model.StageCritical, Reason: reason, err: ErrUnsuitable}
	}
	return nil
}

// CheckAdditional reports whether the additional analysis may be
// requested for r. It fails until the critical analysis exists.
func CheckAdditional(r *model.AnalysisResult) error {
	if r == nil || r.ID == "" {
		return ErrNoAnalysis
	}
	if r.CriticalAnalysis == nil {
		return &GateError{Stage: model.StageAdditional, err: ErrCriticalRequired}
	}
	return nil
}

// Phase is where a job stands in the request workflow.
//
// Design decision: One enum replaces the separate "loading" and "showing
// the perspective picker" flags, so a job cannot be selecting a
// perspective and waiting on the backend at the same time.
type Phase int

const (
	// PhaseIdle means no request is in flight.
	PhaseIdle Phase = iota
	// PhaseSelectingPerspective means a critical analysis was requested
	// and the perspective is being resolved.
	PhaseSelectingPerspective
	// PhaseRequesting means a backend call is in flight.
	PhaseRequesting
	// PhaseFailed means the last request failed; the aggregate is unchanged.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelectingPerspective:
		return "selecting_perspective"
	case PhaseRequesting:
		return "requesting"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
