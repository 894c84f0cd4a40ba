package api

import "github.com/nao1215/ytanalyzer/internal/model"

// Response is the envelope returned by every backend endpoint.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Total   int    `json:"total,omitempty"`

	// StatusCode is the HTTP status of the response, 0 on network failure.
	StatusCode int `json:"-"`

	op    string
	cause error
}

// Err returns nil for a successful response and an *Error otherwise.
func (r *Response[T]) Err() error {
	if r.Success {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = MsgUnknownFailure
	}
	return &Error{
		Op:         r.op,
		StatusCode: r.StatusCode,
		Message:    msg,
		Err:        r.cause,
	}
}

// ResultResponse is the envelope carrying an analysis aggregate.
type ResultResponse = Response[*model.AnalysisResult]

// HistoryResponse is the envelope carrying a page of history entries.
type HistoryResponse = Response[[]model.HistoryItem]

// PerspectivesResponse is the envelope carrying the available perspectives.
type PerspectivesResponse = Response[[]model.Perspective]

// DeleteResponse is the envelope returned by history deletion.
type DeleteResponse = Response[struct{}]

// failure builds a failed envelope for op.
func failure[T any](op string, status int, msg string, cause error) *Response[T] {
	return &Response[T]{
		Success:    false,
		Error:      msg,
		StatusCode: status,
		op:         op,
		cause:      cause,
	}
}
