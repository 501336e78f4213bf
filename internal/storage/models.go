package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Candidate pipeline statuses.
const (
	CandidateStatusNew       = "new"
	CandidateStatusScreening = "screening"
	CandidateStatusInterview = "interview"
	CandidateStatusOffer     = "offer"
	CandidateStatusHired     = "hired"
	CandidateStatusRejected  = "rejected"
)

// Job employment types.
const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
)

// Per-stage processing statuses shared by extraction and parsing.
const (
	StagePending   = "pending"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

type Candidate struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName is the display label used in match results.
func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Job struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Department     string    `json:"department,omitempty"`
	Description    string    `json:"description,omitempty"`
	Requirements   string    `json:"requirements,omitempty"`
	Location       string    `json:"location,omitempty"`
	EmploymentType string    `json:"employment_type"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Resume tracks a stored file plus two independent processing stages:
// text extraction and structured parsing. Each stage keeps its own
// status and error so one failing never rewinds the other.
type Resume struct {
	ID               uuid.UUID `json:"id"`
	CandidateID      uuid.UUID `json:"candidate_id"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	FilePath         string    `json:"file_path"`
	ContentType      string    `json:"content_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`

	ExtractedText    string `json:"extracted_text,omitempty"`
	ExtractionStatus string `json:"extraction_status"`
	ExtractionError  string `json:"extraction_error,omitempty"`

	ParsedData    json.RawMessage `json:"parsed_data,omitempty"`
	ParsedAt      *time.Time      `json:"parsed_at,omitempty"`
	ParsingStatus string          `json:"parsing_status"`
	ParsingError  string          `json:"parsing_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasExtractedText reports whether extraction finished with usable text,
// the precondition for parsing.
func (r *Resume) HasExtractedText() bool {
	return r.ExtractionStatus == StageCompleted && r.ExtractedText != ""
}
