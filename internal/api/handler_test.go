package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"hr-assistant/internal/config"
)

// newValidationAPI builds an API with nil collaborators. Only routes that
// fail validation before touching storage or AI services may be exercised.
func newValidationAPI() http.Handler {
	cfg := &config.Config{
		MaxUploadMB:       10,
		AllowedFormats:    []string{".pdf", ".docx", ".txt"},
		ResumesCollection: "resumes",
		JobsCollection:    "jobs",
	}
	a := NewAPI(cfg, nil, nil, nil, nil, nil, nil, nil, zap.NewNop())
	return NewRouter(a)
}

func doRequest(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	newValidationAPI().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestInvalidIDRejected(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/api/v1/candidates/not-a-uuid", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")
}

func TestListPaginationRejected(t *testing.T) {
	for _, target := range []string{
		"/api/v1/candidates?limit=0",
		"/api/v1/candidates?limit=5000",
		"/api/v1/candidates?skip=-1",
		"/api/v1/candidates?limit=abc",
	} {
		rec := doRequest(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}
}

func TestListUnknownStatusRejected(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/api/v1/candidates?status=archived", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateCandidateRequiresFields(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/candidates", `{"first_name":"Ada"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
}

func TestCreateCandidateRejectsBadJSON(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/candidates", `{"first_name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateCandidateRejectsUnknownStatus(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/candidates",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","status":"archived"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateJobRejectsUnknownEmploymentType(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/jobs",
		`{"title":"Engineer","employment_type":"freelance"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestJobsInvalidIsActiveRejected(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/api/v1/jobs?is_active=maybe", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMatchParamsValidated(t *testing.T) {
	id := uuid.New()
	for _, target := range []string{
		"/api/v1/matching/jobs/" + id.String() + "/candidates?limit=0",
		"/api/v1/matching/jobs/" + id.String() + "/candidates?limit=51",
		"/api/v1/matching/jobs/" + id.String() + "/candidates?min_score=1.5",
		"/api/v1/matching/jobs/" + id.String() + "/candidates?min_score=-0.1",
		"/api/v1/matching/jobs/" + id.String() + "/candidates?min_score=abc",
	} {
		rec := doRequest(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}
}
