package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"hr-assistant/internal/apperrors"
	"hr-assistant/internal/matching"
)

const maxMatchLimit = 50

type candidateMatchesResponse struct {
	JobID   uuid.UUID                 `json:"job_id"`
	Matches []matching.CandidateMatch `json:"matches"`
}

type jobMatchesResponse struct {
	CandidateID uuid.UUID           `json:"candidate_id"`
	Matches     []matching.JobMatch `json:"matches"`
}

// matchParams parses limit and min_score for the matching endpoints.
func matchParams(r *http.Request) (limit int, minScore float64, err error) {
	limit, err = queryInt(r, "limit", 10)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxMatchLimit {
		return 0, 0, apperrors.Ef(apperrors.KindValidation, "limit must be between 1 and %d", maxMatchLimit)
	}

	minScore = 0.0
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		minScore, err = strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 || minScore > 1 {
			return 0, 0, apperrors.Ef(apperrors.KindValidation, "min_score must be a number in [0, 1]")
		}
	}
	return limit, minScore, nil
}

// MatchCandidatesHandler ranks candidates for a job
// @Summary Match candidates to job
// @Description Returns candidates ranked by resume similarity to the job, with generated explanations
// @Tags matching
// @Produce json
// @Param id path string true "Job ID"
// @Param limit query int false "Max matches" default(10)
// @Param min_score query number false "Minimum score in [0,1]" default(0)
// @Success 200 {object} candidateMatchesResponse
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /matching/jobs/{id}/candidates [get]
func (a *API) MatchCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	limit, minScore, err := matchParams(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	job, err := a.db.GetJob(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	matches, err := a.matcher.MatchCandidatesToJob(r.Context(), job, limit, minScore)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidateMatchesResponse{JobID: id, Matches: matches})
}

// MatchJobsHandler ranks jobs for a candidate
// @Summary Match jobs to candidate
// @Description Returns jobs ranked by similarity to the candidate's latest processed resume. A candidate with no extracted resume yields an empty list.
// @Tags matching
// @Produce json
// @Param id path string true "Candidate ID"
// @Param limit query int false "Max matches" default(10)
// @Param min_score query number false "Minimum score in [0,1]" default(0)
// @Success 200 {object} jobMatchesResponse
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /matching/candidates/{id}/jobs [get]
func (a *API) MatchJobsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	limit, minScore, err := matchParams(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if _, err := a.db.GetCandidate(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}

	matches, err := a.matcher.MatchJobsToCandidate(r.Context(), id, limit, minScore)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, jobMatchesResponse{CandidateID: id, Matches: matches})
}
