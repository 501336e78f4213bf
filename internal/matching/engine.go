// Package matching ranks candidates against jobs (and vice versa) by
// embedding similarity, with generated per-match explanations.
package matching

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hr-assistant/internal/ai/gemini"
	"hr-assistant/internal/storage"
	"hr-assistant/internal/vector"
)

// overfetchFactor widens the index search so that min-score rejections and
// stale index entries don't starve the result set. No guarantee of a full
// page survives heavy filtering; this is a deliberate approximation.
const overfetchFactor = 2

type embedder interface {
	Embed(ctx context.Context, text, taskType string) ([]float32, error)
}

type generator interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
}

// directory is the slice of relational persistence the engine resolves
// search hits against.
type directory interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*storage.Candidate, error)
	GetJob(ctx context.Context, id uuid.UUID) (*storage.Job, error)
	GetResume(ctx context.Context, id uuid.UUID) (*storage.Resume, error)
	ListResumesForCandidate(ctx context.Context, candidateID uuid.UUID) ([]*storage.Resume, error)
}

type CandidateMatch struct {
	CandidateID   uuid.UUID `json:"candidate_id"`
	ResumeID      uuid.UUID `json:"resume_id"`
	CandidateName string    `json:"candidate_name"`
	Score         float64   `json:"score"`
	Explanation   string    `json:"explanation"`
}

type JobMatch struct {
	JobID       uuid.UUID `json:"job_id"`
	JobTitle    string    `json:"job_title"`
	Score       float64   `json:"score"`
	Explanation string    `json:"explanation"`
}

type Engine struct {
	db                directory
	vectors           vector.Store
	embedder          embedder
	generator         generator
	resumesCollection string
	jobsCollection    string
	logger            *zap.Logger
}

func NewEngine(db directory, vectors vector.Store, embedder embedder, generator generator, resumesCollection, jobsCollection string, logger *zap.Logger) *Engine {
	return &Engine{
		db:                db,
		vectors:           vectors,
		embedder:          embedder,
		generator:         generator,
		resumesCollection: resumesCollection,
		jobsCollection:    jobsCollection,
		logger:            logger,
	}
}

// MatchCandidatesToJob returns up to limit candidates ranked by similarity
// to the job, each with a generated explanation. An empty list is a valid
// outcome.
func (e *Engine) MatchCandidatesToJob(ctx context.Context, job *storage.Job, limit int, minScore float64) ([]CandidateMatch, error) {
	jobText := BuildJobQueryText(job)
	queryVec, err := e.embedder.Embed(ctx, jobText, gemini.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	results, err := e.vectors.Search(ctx, e.resumesCollection, queryVec, limit*overfetchFactor)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []CandidateMatch{}, nil
	}

	type scored struct {
		match      CandidateMatch
		resumeText string
	}
	var matches []scored
	for _, result := range results {
		score := DistanceToScore(result.Distance)
		if score < minScore {
			continue
		}

		resumeID, err := uuid.Parse(result.ID)
		if err != nil {
			continue
		}
		resume, err := e.db.GetResume(ctx, resumeID)
		if err != nil {
			// Stale index entry; the row was deleted after indexing.
			e.logger.Debug("skipping unresolvable resume match", zap.String("resume_id", result.ID))
			continue
		}
		candidate, err := e.db.GetCandidate(ctx, resume.CandidateID)
		if err != nil {
			continue
		}

		matches = append(matches, scored{
			match: CandidateMatch{
				CandidateID:   candidate.ID,
				ResumeID:      resume.ID,
				CandidateName: candidate.FullName(),
				Score:         score,
			},
			resumeText: resume.ExtractedText,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].match.Score > matches[j].match.Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if len(matches) == 0 {
		return []CandidateMatch{}, nil
	}

	texts := make([]string, len(matches))
	labels := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.resumeText
		labels[i] = m.match.CandidateName
	}
	explanations := e.explanations(ctx, jobText, texts, labels)

	out := make([]CandidateMatch, len(matches))
	for i, m := range matches {
		m.match.Score = round4(m.match.Score)
		m.match.Explanation = explanations[i]
		out[i] = m.match
	}
	return out, nil
}

// MatchJobsToCandidate is the symmetric direction, querying with the
// candidate's newest resume that has extracted text. No such resume means
// an empty result without any service calls.
func (e *Engine) MatchJobsToCandidate(ctx context.Context, candidateID uuid.UUID, limit int, minScore float64) ([]JobMatch, error) {
	resumes, err := e.db.ListResumesForCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	var resume *storage.Resume
	for _, r := range resumes {
		if r.ExtractedText != "" {
			resume = r
			break
		}
	}
	if resume == nil {
		return []JobMatch{}, nil
	}

	queryVec, err := e.embedder.Embed(ctx, resume.ExtractedText, gemini.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	results, err := e.vectors.Search(ctx, e.jobsCollection, queryVec, limit*overfetchFactor)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []JobMatch{}, nil
	}

	type scored struct {
		match   JobMatch
		jobText string
	}
	var matches []scored
	for _, result := range results {
		score := DistanceToScore(result.Distance)
		if score < minScore {
			continue
		}

		jobID, err := uuid.Parse(result.ID)
		if err != nil {
			continue
		}
		job, err := e.db.GetJob(ctx, jobID)
		if err != nil {
			e.logger.Debug("skipping unresolvable job match", zap.String("job_id", result.ID))
			continue
		}

		matches = append(matches, scored{
			match:   JobMatch{JobID: job.ID, JobTitle: job.Title, Score: score},
			jobText: BuildJobQueryText(job),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].match.Score > matches[j].match.Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if len(matches) == 0 {
		return []JobMatch{}, nil
	}

	texts := make([]string, len(matches))
	labels := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.jobText
		labels[i] = m.match.JobTitle
	}
	explanations := e.explanations(ctx, resume.ExtractedText, texts, labels)

	out := make([]JobMatch, len(matches))
	for i, m := range matches {
		m.match.Score = round4(m.match.Score)
		m.match.Explanation = explanations[i]
		out[i] = m.match
	}
	return out, nil
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
