package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appai "github.com/gitrospector/gitrospector/internal/application/ai"
	appanalysis "github.com/gitrospector/gitrospector/internal/application/analysis"
	domai "github.com/gitrospector/gitrospector/internal/domain/ai"
	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
	"github.com/gitrospector/gitrospector/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	aiSvc       *appai.Service
}

// Options configure cross-cutting router behavior.
type Options struct {
	AllowedOrigins []string
	HealthCheckers map[string]middleware.HealthChecker
}

func NewRouter(analysisSvc *appanalysis.Service, aiSvc *appai.Service, opts Options) http.Handler {
	r := &Router{analysisSvc: analysisSvc, aiSvc: aiSvc}
	mux := chi.NewRouter()

	// Outermost: nothing below may escape as a raw fault.
	mux.Use(middleware.RecoveryMiddleware)

	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	mux.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "GitHub Repository Analysis API",
		})
	})

	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Post("/summarize", r.wrap(r.handleSummarize))
	mux.Get("/analyses/latest", r.wrap(r.handleLatest))
	mux.Get("/analyses/{id}", r.wrap(r.handleGet))
	mux.Get("/summary", r.wrap(r.handleSummary))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/openapi.json", openAPIHandler)
	mux.Get("/docs", swaggerUIHandler)
	mux.Get("/redoc", redocHandler)

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps pipeline failures to the HTTP contract. Every error leaves
// as a JSON envelope; nothing propagates as a raw fault.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var perr *domain.Error
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "analysis not found")
		case errors.As(err, &perr) && perr.Kind == domain.KindValidation:
			writeError(w, http.StatusBadRequest, perr.Err.Error())
		case errors.As(err, &perr) && perr.Kind == domain.KindFetch:
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Failed to clone repository: %v", perr.Err))
		case errors.As(err, &perr) && perr.Kind == domain.KindAnalysis:
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("Graph analysis failed: %v", perr.Err))
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "ai quota exceeded")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

type analyzeRequest struct {
	GitHubURL string `json:"github_url"`
}

// POST /analyze
// Body: {"github_url": "https://github.com/owner/name.git"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	cmd, err := decodeAnalyzeRequest(req)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	result, err := r.analysisSvc.Analyze(req.Context(), cmd)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   result.Graph,
	})
	return nil
}

// POST /summarize
// Same input as /analyze; runs the pipeline, then asks the AI client
// for a narrative of the graph's shape.
func (r *Router) handleSummarize(w http.ResponseWriter, req *http.Request) error {
	if r.aiSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "ai summary is not configured")
		return nil
	}
	cmd, err := decodeAnalyzeRequest(req)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	result, err := r.analysisSvc.Analyze(req.Context(), cmd)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}

	summary, err := r.aiSvc.Summarize(req.Context(), cmd.RepositoryURL, result.Graph)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"summary": summary},
	})
	return nil
}

// decodeAnalyzeRequest parses and validates the request body.
// Validation happens here, before any side effect.
func decodeAnalyzeRequest(req *http.Request) (appanalysis.AnalyzeCommand, error) {
	var body analyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.GitHubURL == "" {
		return appanalysis.AnalyzeCommand{}, &domain.Error{
			Kind: domain.KindValidation,
			Err:  fmt.Errorf("GitHub URL is required"),
		}
	}
	if err := middleware.ValidateGitHubURL(body.GitHubURL); err != nil {
		return appanalysis.AnalyzeCommand{}, &domain.Error{
			Kind: domain.KindValidation,
			Err:  err,
		}
	}
	return appanalysis.AnalyzeCommand{RepositoryURL: body.GitHubURL}, nil
}

// GET /analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	a, err := r.analysisSvc.Get(req.Context(), domain.AnalysisID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

// GET /summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.analysisSvc.Summary(req.Context(), days)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summary)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":  "error",
		"message": message,
	})
}
