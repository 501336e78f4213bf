// Package pipeline runs the AI processing stages that happen after the
// synchronous request path: resume parse -> embed -> index, and job
// embed -> index. Tasks are queued fire-and-forget; every failure is
// recorded on the owning entity or logged, never surfaced to a request.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hr-assistant/internal/ai/gemini"
	"hr-assistant/internal/matching"
	"hr-assistant/internal/parser"
	"hr-assistant/internal/storage"
	"hr-assistant/internal/vector"
)

const (
	resumeQueueSize = 50
	jobQueueSize    = 100
)

// ResumeTask asks for one resume's parse+embed run.
type ResumeTask struct {
	ResumeID uuid.UUID
	Enqueued time.Time
}

// JobTask asks for one job's embed run.
type JobTask struct {
	JobID    uuid.UUID
	Enqueued time.Time
}

type store interface {
	GetResume(ctx context.Context, id uuid.UUID) (*storage.Resume, error)
	UpdateResumeParsing(ctx context.Context, id uuid.UUID, status string, parsed json.RawMessage, errMsg string) error
	GetJob(ctx context.Context, id uuid.UUID) (*storage.Job, error)
}

type resumeParser interface {
	Parse(ctx context.Context, extractedText string) (*parser.ParsedResume, error)
}

type embedder interface {
	Embed(ctx context.Context, text, taskType string) ([]float32, error)
}

type Runner struct {
	db       store
	parser   resumeParser
	embedder embedder
	vectors  vector.Store
	logger   *zap.Logger

	resumesCollection string
	jobsCollection    string

	resumeQueue chan ResumeTask
	jobQueue    chan JobTask
}

func NewRunner(db store, resumeParser resumeParser, embedder embedder, vectors vector.Store, resumesCollection, jobsCollection string, logger *zap.Logger) *Runner {
	return &Runner{
		db:                db,
		parser:            resumeParser,
		embedder:          embedder,
		vectors:           vectors,
		logger:            logger,
		resumesCollection: resumesCollection,
		jobsCollection:    jobsCollection,
		resumeQueue:       make(chan ResumeTask, resumeQueueSize),
		jobQueue:          make(chan JobTask, jobQueueSize),
	}
}

// Start launches one worker per queue. Workers run for the life of the
// process.
func (r *Runner) Start() {
	go r.resumeWorker()
	go r.jobWorker()
	r.logger.Info("pipeline workers started")
}

// EnqueueResume hands a resume to the background pipeline without
// blocking. A full queue drops the task and marks parsing failed so the
// resume doesn't sit in pending forever.
func (r *Runner) EnqueueResume(resumeID uuid.UUID) {
	task := ResumeTask{ResumeID: resumeID, Enqueued: time.Now()}
	select {
	case r.resumeQueue <- task:
		r.logger.Debug("queued resume pipeline task", zap.String("resume_id", resumeID.String()))
	default:
		r.logger.Warn("resume queue full, dropping task", zap.String("resume_id", resumeID.String()))
		ctx := context.Background()
		if err := r.db.UpdateResumeParsing(ctx, resumeID, storage.StageFailed, nil, "processing queue full"); err != nil {
			r.logger.Error("failed to record dropped resume task", zap.Error(err))
		}
	}
}

// EnqueueJob hands a job to the background pipeline without blocking. A
// full queue drops the task with a log; job indexing has no status column
// to dirty.
func (r *Runner) EnqueueJob(jobID uuid.UUID) {
	task := JobTask{JobID: jobID, Enqueued: time.Now()}
	select {
	case r.jobQueue <- task:
		r.logger.Debug("queued job pipeline task", zap.String("job_id", jobID.String()))
	default:
		r.logger.Warn("job queue full, dropping task", zap.String("job_id", jobID.String()))
	}
}

func (r *Runner) resumeWorker() {
	for task := range r.resumeQueue {
		ctx := context.Background()
		r.ProcessResume(ctx, task.ResumeID)
		r.logger.Debug("resume pipeline task finished",
			zap.String("resume_id", task.ResumeID.String()),
			zap.Duration("queue_to_done", time.Since(task.Enqueued)))
	}
}

func (r *Runner) jobWorker() {
	for task := range r.jobQueue {
		ctx := context.Background()
		r.ProcessJob(ctx, task.JobID)
		r.logger.Debug("job pipeline task finished",
			zap.String("job_id", task.JobID.String()),
			zap.Duration("queue_to_done", time.Since(task.Enqueued)))
	}
}

// ProcessResume runs parse then embed+index for one resume. Parsing is
// only attempted when extraction completed with non-empty text; a parsing
// failure stops the run before embedding; an embedding failure is logged
// without rolling back the stored parse result.
func (r *Runner) ProcessResume(ctx context.Context, resumeID uuid.UUID) {
	resume, err := r.db.GetResume(ctx, resumeID)
	if err != nil {
		r.logger.Warn("resume pipeline: load failed", zap.String("resume_id", resumeID.String()), zap.Error(err))
		return
	}
	if !resume.HasExtractedText() {
		return
	}

	parsed, err := r.parser.Parse(ctx, resume.ExtractedText)
	if err != nil {
		r.logger.Error("resume parsing failed", zap.String("resume_id", resumeID.String()), zap.Error(err))
		if updateErr := r.db.UpdateResumeParsing(ctx, resumeID, storage.StageFailed, nil, err.Error()); updateErr != nil {
			r.logger.Error("failed to record parsing failure", zap.Error(updateErr))
		}
		return
	}

	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		r.logger.Error("resume parsing failed", zap.String("resume_id", resumeID.String()), zap.Error(err))
		return
	}
	if err := r.db.UpdateResumeParsing(ctx, resumeID, storage.StageCompleted, parsedJSON, ""); err != nil {
		r.logger.Error("failed to store parsed resume", zap.String("resume_id", resumeID.String()), zap.Error(err))
		return
	}

	embedding, err := r.embedder.Embed(ctx, matching.BuildResumeText(parsed), gemini.TaskRetrievalDocument)
	if err != nil {
		r.logger.Error("resume embedding failed", zap.String("resume_id", resumeID.String()), zap.Error(err))
		return
	}

	metadata := map[string]any{"candidate_id": resume.CandidateID.String()}
	if err := r.vectors.Upsert(ctx, r.resumesCollection, resumeID.String(), resume.ExtractedText, embedding, metadata); err != nil {
		r.logger.Error("resume index upsert failed", zap.String("resume_id", resumeID.String()), zap.Error(err))
	}
}

// ProcessJob embeds one job's text and upserts it into the jobs
// collection. Failures are logged only.
func (r *Runner) ProcessJob(ctx context.Context, jobID uuid.UUID) {
	job, err := r.db.GetJob(ctx, jobID)
	if err != nil {
		r.logger.Warn("job pipeline: load failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return
	}

	embedding, err := r.embedder.Embed(ctx, matching.BuildJobDocumentText(job), gemini.TaskRetrievalDocument)
	if err != nil {
		r.logger.Error("job embedding failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return
	}

	metadata := map[string]any{"is_active": job.IsActive}
	document := job.Title + " " + job.Description + " " + job.Requirements
	if err := r.vectors.Upsert(ctx, r.jobsCollection, jobID.String(), document, embedding, metadata); err != nil {
		r.logger.Error("job index upsert failed", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}
