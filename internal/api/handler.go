package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hr-assistant/internal/apperrors"
	"hr-assistant/internal/config"
	"hr-assistant/internal/matching"
	"hr-assistant/internal/parser"
	"hr-assistant/internal/pipeline"
	"hr-assistant/internal/storage"
	"hr-assistant/internal/vector"
)

// embedder is the slice of the Gemini client the embed endpoint needs.
type embedder interface {
	Embed(ctx context.Context, text, taskType string) ([]float32, error)
}

// store is the slice of relational persistence the handlers use.
type store interface {
	CreateCandidate(ctx context.Context, c *storage.Candidate) error
	GetCandidate(ctx context.Context, id uuid.UUID) (*storage.Candidate, error)
	ListCandidates(ctx context.Context, skip, limit int, status string) ([]*storage.Candidate, int, error)
	UpdateCandidate(ctx context.Context, c *storage.Candidate) error
	DeleteCandidate(ctx context.Context, id uuid.UUID) error

	CreateJob(ctx context.Context, j *storage.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*storage.Job, error)
	ListJobs(ctx context.Context, skip, limit int, isActive *bool) ([]*storage.Job, int, error)
	UpdateJob(ctx context.Context, j *storage.Job) error
	DeleteJob(ctx context.Context, id uuid.UUID) error

	CreateResume(ctx context.Context, r *storage.Resume) error
	GetResume(ctx context.Context, id uuid.UUID) (*storage.Resume, error)
	ListResumesForCandidate(ctx context.Context, candidateID uuid.UUID) ([]*storage.Resume, error)
	UpdateResumeExtraction(ctx context.Context, id uuid.UUID, status, text, errMsg string) error
	UpdateResumeParsing(ctx context.Context, id uuid.UUID, status string, parsed json.RawMessage, errMsg string) error
	DeleteResume(ctx context.Context, id uuid.UUID) error
}

type API struct {
	cfg      *config.Config
	db       store
	files    storage.FileStore
	parser   *parser.Parser
	embedder embedder
	vectors  vector.Store
	matcher  *matching.Engine
	pipeline *pipeline.Runner
	logger   *zap.Logger
}

func NewAPI(cfg *config.Config, db store, files storage.FileStore, resumeParser *parser.Parser, embedder embedder, vectors vector.Store, matcher *matching.Engine, runner *pipeline.Runner, logger *zap.Logger) *API {
	return &API{
		cfg:      cfg,
		db:       db,
		files:    files,
		parser:   resumeParser,
		embedder: embedder,
		vectors:  vectors,
		matcher:  matcher,
		pipeline: runner,
		logger:   logger,
	}
}

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", zap.Error(err))
	}
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Ef(apperrors.KindValidation, "invalid id %q", raw)
	}
	return id, nil
}

// pagination parses skip/limit query params with the listing defaults.
func pagination(r *http.Request) (skip, limit int, err error) {
	skip, err = queryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = queryInt(r, "limit", 100)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, apperrors.E(apperrors.KindValidation, "skip must be >= 0")
	}
	if limit < 1 || limit > 1000 {
		return 0, 0, apperrors.E(apperrors.KindValidation, "limit must be between 1 and 1000")
	}
	return skip, limit, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Ef(apperrors.KindValidation, "invalid %s %q", key, raw)
	}
	return n, nil
}
