package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"hr-assistant/internal/apperrors"
	"hr-assistant/internal/storage"
)

type jobRequest struct {
	Title          *string `json:"title"`
	Department     *string `json:"department"`
	Description    *string `json:"description"`
	Requirements   *string `json:"requirements"`
	Location       *string `json:"location"`
	EmploymentType *string `json:"employment_type"`
	IsActive       *bool   `json:"is_active"`
}

type jobListResponse struct {
	Items []*storage.Job `json:"items"`
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

var employmentTypes = map[string]bool{
	storage.EmploymentFullTime:   true,
	storage.EmploymentPartTime:   true,
	storage.EmploymentContract:   true,
	storage.EmploymentInternship: true,
}

// CreateJobHandler creates a job and queues it for indexing
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body jobRequest true "Job fields"
// @Success 201 {object} storage.Job
// @Failure 422 {object} errorResponse
// @Router /jobs [post]
func (a *API) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindValidation, "invalid JSON body", err))
		return
	}

	job := &storage.Job{EmploymentType: storage.EmploymentFullTime, IsActive: true}
	if err := applyJob(job, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if job.Title == "" {
		a.writeError(w, apperrors.E(apperrors.KindValidation, "title is required"))
		return
	}

	if err := a.db.CreateJob(r.Context(), job); err != nil {
		a.writeError(w, err)
		return
	}

	a.pipeline.EnqueueJob(job.ID)
	a.logger.Info("job created", zap.String("job_id", job.ID.String()))
	a.writeJSON(w, http.StatusCreated, job)
}

// ListJobsHandler lists jobs
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Param is_active query bool false "Filter by active flag"
// @Success 200 {object} jobListResponse
// @Router /jobs [get]
func (a *API) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var isActive *bool
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		switch raw {
		case "true":
			v := true
			isActive = &v
		case "false":
			v := false
			isActive = &v
		default:
			a.writeError(w, apperrors.Ef(apperrors.KindValidation, "invalid is_active %q", raw))
			return
		}
	}

	jobs, total, err := a.db.ListJobs(r.Context(), skip, limit, isActive)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, jobListResponse{Items: jobs, Total: total, Skip: skip, Limit: limit})
}

// GetJobHandler returns one job
// @Summary Get job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} storage.Job
// @Failure 404 {object} errorResponse
// @Router /jobs/{id} [get]
func (a *API) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	job, err := a.db.GetJob(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, job)
}

// UpdateJobHandler applies a partial update and re-queues indexing when the
// embedded text changed
// @Summary Update job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param job body jobRequest true "Fields to update"
// @Success 200 {object} storage.Job
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /jobs/{id} [put]
func (a *API) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindValidation, "invalid JSON body", err))
		return
	}

	job, err := a.db.GetJob(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	prevTitle, prevDesc, prevReq := job.Title, job.Description, job.Requirements
	if err := applyJob(job, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if job.Title == "" {
		a.writeError(w, apperrors.E(apperrors.KindValidation, "title is required"))
		return
	}
	if err := a.db.UpdateJob(r.Context(), job); err != nil {
		a.writeError(w, err)
		return
	}

	if job.Title != prevTitle || job.Description != prevDesc || job.Requirements != prevReq {
		a.pipeline.EnqueueJob(job.ID)
	}
	a.writeJSON(w, http.StatusOK, job)
}

// DeleteJobHandler deletes a job
// @Summary Delete job
// @Tags jobs
// @Param id path string true "Job ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /jobs/{id} [delete]
func (a *API) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.db.DeleteJob(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.vectors.Delete(r.Context(), a.cfg.JobsCollection, id.String()); err != nil {
		a.logger.Debug("job vector cleanup failed", zap.String("job_id", id.String()), zap.Error(err))
	}
	a.logger.Info("job deleted", zap.String("job_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func applyJob(j *storage.Job, req *jobRequest) error {
	if req.Title != nil {
		j.Title = *req.Title
	}
	if req.Department != nil {
		j.Department = *req.Department
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Requirements != nil {
		j.Requirements = *req.Requirements
	}
	if req.Location != nil {
		j.Location = *req.Location
	}
	if req.IsActive != nil {
		j.IsActive = *req.IsActive
	}
	if req.EmploymentType != nil {
		if !employmentTypes[*req.EmploymentType] {
			return apperrors.Ef(apperrors.KindValidation, "unknown employment_type %q", *req.EmploymentType)
		}
		j.EmploymentType = *req.EmploymentType
	}
	return nil
}
