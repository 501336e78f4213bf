package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hr-assistant/internal/ai/gemini"
	"hr-assistant/internal/apperrors"
	"hr-assistant/internal/extract"
	"hr-assistant/internal/matching"
	"hr-assistant/internal/parser"
	"hr-assistant/internal/storage"
)

type resumeTextResponse struct {
	ResumeID         uuid.UUID `json:"resume_id"`
	ExtractionStatus string    `json:"extraction_status"`
	ExtractedText    string    `json:"extracted_text"`
}

type resumeEmbedResponse struct {
	ResumeID  uuid.UUID `json:"resume_id"`
	Dimension int       `json:"dimension"`
}

type resumeParsedResponse struct {
	ResumeID      uuid.UUID       `json:"resume_id"`
	ParsedData    json.RawMessage `json:"parsed_data"`
	ParsingStatus string          `json:"parsing_status"`
	ParsingError  string          `json:"parsing_error,omitempty"`
}

// UploadResumeHandler stores a resume file and runs extraction
// @Summary Upload resume
// @Description Stores the file, creates the resume record and extracts text synchronously. Parsing and indexing continue in the background. The upload succeeds even when extraction fails; check extraction_status.
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Candidate ID"
// @Param file formData file true "Resume file (.pdf, .docx, .txt)"
// @Success 201 {object} storage.Resume
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /candidates/{id}/resumes [post]
func (a *API) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if _, err := a.db.GetCandidate(r.Context(), candidateID); err != nil {
		a.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(a.cfg.MaxUploadBytes()); err != nil {
		a.writeError(w, apperrors.Ef(apperrors.KindValidation, "file too large or invalid form (max %dMB)", a.cfg.MaxUploadMB))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, apperrors.E(apperrors.KindValidation, "no file uploaded"))
		return
	}
	defer file.Close()

	// Validate before anything touches disk.
	if header.Filename == "" {
		a.writeError(w, apperrors.E(apperrors.KindValidation, "filename is required"))
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !a.cfg.AllowsExtension(ext) {
		a.writeError(w, apperrors.Ef(apperrors.KindUnsupported, "unsupported file type %q (allowed: %s)", ext, strings.Join(a.cfg.AllowedFormats, ", ")))
		return
	}
	if header.Size > a.cfg.MaxUploadBytes() {
		a.writeError(w, apperrors.Ef(apperrors.KindValidation, "file exceeds %dMB limit", a.cfg.MaxUploadMB))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindInternal, "failed to read upload", err))
		return
	}

	resumeID := uuid.New()
	storedName := resumeID.String() + ext
	relPath, err := a.files.Save(content, storedName, candidateID.String())
	if err != nil {
		a.writeError(w, err)
		return
	}

	resume := &storage.Resume{
		ID:               resumeID,
		CandidateID:      candidateID,
		OriginalFilename: header.Filename,
		StoredFilename:   storedName,
		FilePath:         relPath,
		ContentType:      header.Header.Get("Content-Type"),
		FileSizeBytes:    int64(len(content)),
		ExtractionStatus: storage.StagePending,
		ParsingStatus:    storage.StagePending,
	}
	if err := a.db.CreateResume(r.Context(), resume); err != nil {
		a.writeError(w, err)
		return
	}

	a.extractResume(r, resume)
	if resume.HasExtractedText() {
		a.pipeline.EnqueueResume(resume.ID)
	}

	a.logger.Info("resume uploaded",
		zap.String("resume_id", resume.ID.String()),
		zap.String("candidate_id", candidateID.String()),
		zap.String("extraction_status", resume.ExtractionStatus))
	a.writeJSON(w, http.StatusCreated, resume)
}

// extractResume runs text extraction for the stored file and records the
// outcome on the resume record, mutating resume in place. Extraction
// failure is recorded, not returned.
func (a *API) extractResume(r *http.Request, resume *storage.Resume) {
	absPath, err := a.files.AbsPath(resume.FilePath)
	if err == nil {
		var text string
		text, err = extract.Text(absPath)
		if err == nil {
			resume.ExtractionStatus = storage.StageCompleted
			resume.ExtractedText = text
			resume.ExtractionError = ""
		}
	}
	if err != nil {
		a.logger.Warn("text extraction failed", zap.String("resume_id", resume.ID.String()), zap.Error(err))
		resume.ExtractionStatus = storage.StageFailed
		resume.ExtractedText = ""
		resume.ExtractionError = err.Error()
	}

	if err := a.db.UpdateResumeExtraction(r.Context(), resume.ID, resume.ExtractionStatus, resume.ExtractedText, resume.ExtractionError); err != nil {
		a.logger.Error("failed to record extraction result", zap.String("resume_id", resume.ID.String()), zap.Error(err))
	}
}

// ListResumesHandler lists a candidate's resumes, newest first
// @Summary List resumes
// @Tags resumes
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {array} storage.Resume
// @Failure 404 {object} errorResponse
// @Router /candidates/{id}/resumes [get]
func (a *API) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if _, err := a.db.GetCandidate(r.Context(), candidateID); err != nil {
		a.writeError(w, err)
		return
	}
	resumes, err := a.db.ListResumesForCandidate(r.Context(), candidateID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resumes)
}

// GetResumeHandler returns resume metadata and processing status
// @Summary Get resume
// @Tags resumes
// @Produce json
// @Param id path string true "Resume ID"
// @Success 200 {object} storage.Resume
// @Failure 404 {object} errorResponse
// @Router /resumes/{id} [get]
func (a *API) GetResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resume)
}

// DownloadResumeHandler serves the original file
// @Summary Download resume file
// @Tags resumes
// @Produce octet-stream
// @Param id path string true "Resume ID"
// @Success 200 {file} binary
// @Failure 404 {object} errorResponse
// @Router /resumes/{id}/download [get]
func (a *API) DownloadResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	absPath, err := a.files.AbsPath(resume.FilePath)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if resume.ContentType != "" {
		w.Header().Set("Content-Type", resume.ContentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.OriginalFilename))
	http.ServeFile(w, r, absPath)
}

// GetResumeTextHandler returns the extracted text
// @Summary Get extracted text
// @Tags resumes
// @Produce json
// @Param id path string true "Resume ID"
// @Success 200 {object} resumeTextResponse
// @Failure 404 {object} errorResponse
// @Router /resumes/{id}/text [get]
func (a *API) GetResumeTextHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resumeTextResponse{
		ResumeID:         resume.ID,
		ExtractionStatus: resume.ExtractionStatus,
		ExtractedText:    resume.ExtractedText,
	})
}

// ExtractResumeHandler re-runs text extraction
// @Summary Re-extract text
// @Description Runs a fresh extraction attempt. Responds 200 with the updated record whether extraction succeeded or not.
// @Tags resumes
// @Produce json
// @Param id path string true "Resume ID"
// @Success 200 {object} storage.Resume
// @Failure 404 {object} errorResponse
// @Router /resumes/{id}/extract [post]
func (a *API) ExtractResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.extractResume(r, resume)
	if resume.HasExtractedText() {
		a.pipeline.EnqueueResume(resume.ID)
	}
	a.writeJSON(w, http.StatusOK, resume)
}

// ParseResumeHandler runs structured parsing synchronously
// @Summary Parse resume
// @Description Sends the extracted text to the model and stores the structured result. Requires completed extraction with non-empty text.
// @Tags resumes
// @Produce json
// @Param id path string true "Resume ID"
// @Success 200 {object} storage.Resume
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /resumes/{id}/parse [post]
func (a *API) ParseResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !resume.HasExtractedText() {
		a.writeError(w, apperrors.E(apperrors.KindPrecondition, "resume has no extracted text; run extraction first"))
		return
	}

	parsed, err := a.parser.Parse(r.Context(), resume.ExtractedText)
	if err != nil {
		if updateErr := a.db.UpdateResumeParsing(r.Context(), id, storage.StageFailed, nil, err.Error()); updateErr != nil {
			a.logger.Error("failed to record parsing failure", zap.Error(updateErr))
		}
		a.writeError(w, err)
		return
	}

	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindInternal, "failed to encode parsed resume", err))
		return
	}
	if err := a.db.UpdateResumeParsing(r.Context(), id, storage.StageCompleted, parsedJSON, ""); err != nil {
		a.writeError(w, err)
		return
	}

	updated, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("resume parsed", zap.String("resume_id", id.String()))
	a.writeJSON(w, http.StatusOK, updated)
}

// GetParsedResumeHandler returns the stored parsed data together with the
// parsing status, so clients can poll it while the pipeline runs. An
// unparsed resume answers 200 with null data, not an error.
// @Summary Get parsed resume
// @Tags resumes
// @Produce json
// @Param id path string true "Resume ID"
// @Success 200 {object} resumeParsedResponse
// @Failure 404 {object} errorResponse
// @Router /resumes/{id}/parsed [get]
func (a *API) GetParsedResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resumeParsedResponse{
		ResumeID:      resume.ID,
		ParsedData:    resume.ParsedData,
		ParsingStatus: resume.ParsingStatus,
		ParsingError:  resume.ParsingError,
	})
}

// EmbedResumeHandler generates and indexes the resume embedding
// @Summary Embed resume
// @Description Embeds text built from the parsed data and upserts it into the resume index. Requires completed parsing.
// @Tags resumes
// @Produce json
// @Param id path string true "Resume ID"
// @Success 200 {object} resumeEmbedResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /resumes/{id}/embed [post]
func (a *API) EmbedResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if resume.ParsingStatus != storage.StageCompleted || len(resume.ParsedData) == 0 {
		a.writeError(w, apperrors.E(apperrors.KindPrecondition, "resume has no parsed data; run parsing first"))
		return
	}

	var parsed parser.ParsedResume
	if err := json.Unmarshal(resume.ParsedData, &parsed); err != nil {
		a.writeError(w, apperrors.Wrap(apperrors.KindInternal, "stored parsed data is unreadable", err))
		return
	}

	embedding, err := a.embedder.Embed(r.Context(), matching.BuildResumeText(&parsed), gemini.TaskRetrievalDocument)
	if err != nil {
		a.writeError(w, err)
		return
	}

	metadata := map[string]any{"candidate_id": resume.CandidateID.String()}
	if err := a.vectors.Upsert(r.Context(), a.cfg.ResumesCollection, id.String(), resume.ExtractedText, embedding, metadata); err != nil {
		a.writeError(w, err)
		return
	}

	a.logger.Info("resume embedded", zap.String("resume_id", id.String()), zap.Int("dimension", len(embedding)))
	a.writeJSON(w, http.StatusOK, resumeEmbedResponse{ResumeID: id, Dimension: len(embedding)})
}

// DeleteResumeHandler deletes a resume, its file and its index entry
// @Summary Delete resume
// @Tags resumes
// @Param id path string true "Resume ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /resumes/{id} [delete]
func (a *API) DeleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resume, err := a.db.GetResume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.files.Delete(resume.FilePath); err != nil {
		a.logger.Debug("resume file cleanup failed", zap.String("resume_id", id.String()), zap.Error(err))
	}
	if err := a.vectors.Delete(r.Context(), a.cfg.ResumesCollection, id.String()); err != nil {
		a.logger.Debug("resume vector cleanup failed", zap.String("resume_id", id.String()), zap.Error(err))
	}

	if err := a.db.DeleteResume(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("resume deleted", zap.String("resume_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
