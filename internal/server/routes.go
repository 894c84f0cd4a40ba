package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/pipeline"
	"github.com/nao1215/ytanalyzer/internal/report"
)

// maxRequestBody bounds the JSON body of POST requests.
const maxRequestBody = 4 << 10

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	UptimeS int64  `json:"uptime_s"`
}

// criticalRequest is the optional body of POST /reports/{id}/critical.
type criticalRequest struct {
	Perspective string `json:"perspective"`
}

// NewRouter builds the route table.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/reports/{id}", func(r chi.Router) {
		r.Get("/", previewHandler(cfg))
		r.Get("/download", downloadHandler(cfg))
		r.Get("/json", resultHandler(cfg))
		r.Post("/critical", stageHandler(cfg, model.StageCritical))
		r.Post("/additional", stageHandler(cfg, model.StageAdditional))
	})

	return r
}

func healthHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// previewHandler renders the document as an HTML page.
func previewHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := loadResult(r.Context(), cfg, chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if _, err := report.NewHTMLWriter(w, cfg.Formatter).Write(result); err != nil {
			cfg.Logger.Warn("failed to write preview", "error", err, "request_id", requestID(r.Context()))
		}
	}
}

// downloadHandler serves the Markdown document as an attachment.
func downloadHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := loadResult(r.Context(), cfg, chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, err)
			return
		}
		report.ServeAttachment(w, cfg.Formatter.Format(result))
	}
}

// resultHandler returns the aggregate in a success envelope.
func resultHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := loadResult(r.Context(), cfg, chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, api.ResultResponse{Success: true, Data: result})
	}
}

// stageHandler requests the critical or additional analysis. The gates
// run on the freshly fetched aggregate before the stage request is sent.
func stageHandler(cfg Config, stage model.Stage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job := pipeline.NewJob(chi.URLParam(r, "id"))

		plan := pipeline.Plan{Cache: cfg.Store, Logger: cfg.Logger}
		switch stage {
		case model.StageCritical:
			perspective, err := readPerspective(r)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "요청 본문을 해석할 수 없습니다.")
				return
			}
			job.Perspective = perspective
			plan.Critical = true
			plan.Perspective = cfg.Perspective
		default:
			plan.Additional = true
		}

		if err := plan.Build(cfg.Backend).Execute(r.Context(), job); err != nil {
			writeFailure(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, api.ResultResponse{Success: true, Data: job.Result, Cached: job.Cached})
	}
}

// readPerspective takes the perspective from the query string or, failing
// that, from an optional JSON body.
func readPerspective(r *http.Request) (string, error) {
	if p := strings.TrimSpace(r.URL.Query().Get("perspective")); p != "" {
		return p, nil
	}
	if r.Body == nil {
		return "", nil
	}
	var req criticalRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(req.Perspective), nil
}

// loadResult returns a fresh cached aggregate or fetches it from the backend.
func loadResult(ctx context.Context, cfg Config, id string) (*model.AnalysisResult, error) {
	if cfg.Store != nil && cfg.CacheMaxAge > 0 {
		cached, err := cfg.Store.GetFreshResult(ctx, id, cfg.CacheMaxAge)
		if err != nil {
			cfg.Logger.Warn("failed to read cache", "analysis_id", id, "error", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	job := pipeline.NewJob(id)
	err := pipeline.Plan{Fetch: true, Cache: cfg.Store, Logger: cfg.Logger}.
		Build(cfg.Backend).
		Execute(ctx, job)
	if err != nil {
		return nil, err
	}
	return job.Result, nil
}

// writeFailure maps a workflow error to a status and a failed envelope.
func writeFailure(w http.ResponseWriter, err error) {
	var (
		gateErr *pipeline.GateError
		apiErr  *api.Error
	)
	switch {
	case errors.As(err, &gateErr):
		WriteError(w, http.StatusConflict, gateErr.Error())
	case errors.Is(err, pipeline.ErrNoAnalysis):
		WriteError(w, http.StatusNotFound, "분석 결과를 찾을 수 없습니다.")
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.IsNotFound() {
			status = http.StatusNotFound
		}
		WriteError(w, status, apiErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, api.MsgConnectionFailed)
	default:
		WriteError(w, http.StatusInternalServerError, api.MsgUnknownFailure)
	}
}
