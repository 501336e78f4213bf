package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Candidates
	mux.HandleFunc("POST /api/v1/candidates", a.CreateCandidateHandler)
	mux.HandleFunc("GET /api/v1/candidates", a.ListCandidatesHandler)
	mux.HandleFunc("GET /api/v1/candidates/{id}", a.GetCandidateHandler)
	mux.HandleFunc("PUT /api/v1/candidates/{id}", a.UpdateCandidateHandler)
	mux.HandleFunc("DELETE /api/v1/candidates/{id}", a.DeleteCandidateHandler)

	// Jobs
	mux.HandleFunc("POST /api/v1/jobs", a.CreateJobHandler)
	mux.HandleFunc("GET /api/v1/jobs", a.ListJobsHandler)
	mux.HandleFunc("GET /api/v1/jobs/{id}", a.GetJobHandler)
	mux.HandleFunc("PUT /api/v1/jobs/{id}", a.UpdateJobHandler)
	mux.HandleFunc("DELETE /api/v1/jobs/{id}", a.DeleteJobHandler)

	// Resumes
	mux.HandleFunc("POST /api/v1/candidates/{id}/resumes", a.UploadResumeHandler)
	mux.HandleFunc("GET /api/v1/candidates/{id}/resumes", a.ListResumesHandler)
	mux.HandleFunc("GET /api/v1/resumes/{id}", a.GetResumeHandler)
	mux.HandleFunc("DELETE /api/v1/resumes/{id}", a.DeleteResumeHandler)
	mux.HandleFunc("GET /api/v1/resumes/{id}/download", a.DownloadResumeHandler)
	mux.HandleFunc("GET /api/v1/resumes/{id}/text", a.GetResumeTextHandler)
	mux.HandleFunc("POST /api/v1/resumes/{id}/extract", a.ExtractResumeHandler)
	mux.HandleFunc("POST /api/v1/resumes/{id}/parse", a.ParseResumeHandler)
	mux.HandleFunc("GET /api/v1/resumes/{id}/parsed", a.GetParsedResumeHandler)
	mux.HandleFunc("POST /api/v1/resumes/{id}/embed", a.EmbedResumeHandler)

	// Matching
	mux.HandleFunc("GET /api/v1/matching/jobs/{id}/candidates", a.MatchCandidatesHandler)
	mux.HandleFunc("GET /api/v1/matching/candidates/{id}/jobs", a.MatchJobsHandler)

	return mux
}
