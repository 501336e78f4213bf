package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"hr-assistant/internal/apperrors"
	"hr-assistant/internal/storage"
)

type candidateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

type candidateListResponse struct {
	Items []*storage.Candidate `json:"items"`
	Total int                  `json:"total"`
	Skip  int                  `json:"skip"`
	Limit int                  `json:"limit"`
}

var candidateStatuses = map[string]bool{
	storage.CandidateStatusNew:       true,
	storage.CandidateStatusScreening: true,
	storage.CandidateStatusInterview: true,
	storage.CandidateStatusOffer:     true,
	storage.CandidateStatusHired:     true,
	storage.CandidateStatusRejected:  true,
}

// CreateCandidateHandler creates a candidate
// @Summary Create candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param candidate body candidateRequest true "Candidate fields"
// @Success 201 {object} storage.Candidate
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /candidates [post]
func (a *API) CreateCandidateHandler(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindValidation, "invalid JSON body", err))
		return
	}

	candidate := &storage.Candidate{Status: storage.CandidateStatusNew}
	if err := applyCandidate(candidate, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if candidate.FirstName == "" || candidate.LastName == "" || candidate.Email == "" {
		a.writeError(w, apperrors.E(apperrors.KindValidation, "first_name, last_name and email are required"))
		return
	}

	if err := a.db.CreateCandidate(r.Context(), candidate); err != nil {
		a.writeError(w, err)
		return
	}

	a.logger.Info("candidate created", zap.String("candidate_id", candidate.ID.String()))
	a.writeJSON(w, http.StatusCreated, candidate)
}

// ListCandidatesHandler lists candidates
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Param status query string false "Filter by status"
// @Success 200 {object} candidateListResponse
// @Router /candidates [get]
func (a *API) ListCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && !candidateStatuses[status] {
		a.writeError(w, apperrors.Ef(apperrors.KindValidation, "unknown status %q", status))
		return
	}

	candidates, total, err := a.db.ListCandidates(r.Context(), skip, limit, status)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidateListResponse{Items: candidates, Total: total, Skip: skip, Limit: limit})
}

// GetCandidateHandler returns one candidate
// @Summary Get candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} storage.Candidate
// @Failure 404 {object} errorResponse
// @Router /candidates/{id} [get]
func (a *API) GetCandidateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	candidate, err := a.db.GetCandidate(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidate)
}

// UpdateCandidateHandler applies a partial update
// @Summary Update candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param candidate body candidateRequest true "Fields to update"
// @Success 200 {object} storage.Candidate
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /candidates/{id} [put]
func (a *API) UpdateCandidateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindValidation, "invalid JSON body", err))
		return
	}

	candidate, err := a.db.GetCandidate(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := applyCandidate(candidate, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.db.UpdateCandidate(r.Context(), candidate); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidate)
}

// DeleteCandidateHandler deletes a candidate and its resumes
// @Summary Delete candidate
// @Description Deletes the candidate; owned resumes, their files and index entries go with it
// @Tags candidates
// @Param id path string true "Candidate ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /candidates/{id} [delete]
func (a *API) DeleteCandidateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	// Clean up resume files and index entries before the cascading row
	// delete removes our record of them. Best effort.
	resumes, err := a.db.ListResumesForCandidate(r.Context(), id)
	if err == nil {
		for _, resume := range resumes {
			if err := a.files.Delete(resume.FilePath); err != nil {
				a.logger.Debug("resume file cleanup failed", zap.String("resume_id", resume.ID.String()), zap.Error(err))
			}
			if err := a.vectors.Delete(r.Context(), a.cfg.ResumesCollection, resume.ID.String()); err != nil {
				a.logger.Debug("resume vector cleanup failed", zap.String("resume_id", resume.ID.String()), zap.Error(err))
			}
		}
	}

	if err := a.db.DeleteCandidate(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("candidate deleted", zap.String("candidate_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func applyCandidate(c *storage.Candidate, req *candidateRequest) error {
	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		c.LastName = *req.LastName
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	if req.Status != nil {
		if !candidateStatuses[*req.Status] {
			return apperrors.Ef(apperrors.KindValidation, "unknown status %q", *req.Status)
		}
		c.Status = *req.Status
	}
	return nil
}
