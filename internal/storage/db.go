package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hr-assistant/internal/apperrors"
)

//go:embed schema.sql
var schema string

type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() error {
	return db.connection.Close()
}

// Migrate applies the embedded schema, sizing the vector column to
// embeddingDim. All statements are idempotent.
func (db *DB) Migrate(ctx context.Context, embeddingDim int) error {
	_, err := db.connection.ExecContext(ctx, renderSchema(embeddingDim))
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func renderSchema(embeddingDim int) string {
	return strings.ReplaceAll(schema, "{{embedding_dim}}", strconv.Itoa(embeddingDim))
}

// GetConnection returns the underlying database connection for advanced queries.
func (db *DB) GetConnection() *sql.DB {
	return db.connection
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// --- Candidates ---

func (db *DB) CreateCandidate(ctx context.Context, c *Candidate) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CandidateStatusNew
	}

	query := `INSERT INTO candidates (id, first_name, last_name, email, phone, status, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := db.connection.QueryRowContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email,
		nullable(c.Phone), c.Status, nullable(c.Notes),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.Ef(apperrors.KindConflict, "candidate with email '%s' already exists", c.Email)
	}
	return err
}

func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	c := &Candidate{}
	var phone, notes sql.NullString
	query := `SELECT id, first_name, last_name, email, phone, status, notes, created_at, updated_at
	          FROM candidates WHERE id = $1`
	err := db.connection.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.Status, &notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("Candidate", id.String())
	}
	if err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Notes = notes.String
	return c, nil
}

// ListCandidates returns a page of candidates (newest first) and the total
// count matching the optional status filter.
func (db *DB) ListCandidates(ctx context.Context, skip, limit int, status string) ([]*Candidate, int, error) {
	var where string
	var args []any
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := db.connection.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT id, first_name, last_name, email, phone, status, notes, created_at, updated_at
	          FROM candidates%s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := db.connection.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []*Candidate
	for rows.Next() {
		c := &Candidate{}
		var phone, notes sql.NullString
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.Status, &notes,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		c.Phone = phone.String
		c.Notes = notes.String
		res = append(res, c)
	}
	return res, total, rows.Err()
}

func (db *DB) UpdateCandidate(ctx context.Context, c *Candidate) error {
	query := `UPDATE candidates
	          SET first_name = $2, last_name = $3, email = $4, phone = $5,
	              status = $6, notes = $7, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`
	err := db.connection.QueryRowContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email,
		nullable(c.Phone), c.Status, nullable(c.Notes),
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("Candidate", c.ID.String())
	}
	if isUniqueViolation(err) {
		return apperrors.Ef(apperrors.KindConflict, "candidate with email '%s' already exists", c.Email)
	}
	return err
}

// DeleteCandidate removes the candidate; resumes cascade at the database.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	res, err := db.connection.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "Candidate", id)
}

// --- Jobs ---

func (db *DB) CreateJob(ctx context.Context, j *Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.EmploymentType == "" {
		j.EmploymentType = EmploymentFullTime
	}

	query := `INSERT INTO jobs (id, title, department, description, requirements, location, employment_type, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at, updated_at`
	return db.connection.QueryRowContext(ctx, query,
		j.ID, j.Title, nullable(j.Department), nullable(j.Description),
		nullable(j.Requirements), nullable(j.Location), j.EmploymentType, j.IsActive,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
}

func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	j := &Job{}
	var department, description, requirements, location sql.NullString
	query := `SELECT id, title, department, description, requirements, location, employment_type, is_active, created_at, updated_at
	          FROM jobs WHERE id = $1`
	err := db.connection.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.Title, &department, &description, &requirements, &location,
		&j.EmploymentType, &j.IsActive, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("Job", id.String())
	}
	if err != nil {
		return nil, err
	}
	j.Department = department.String
	j.Description = description.String
	j.Requirements = requirements.String
	j.Location = location.String
	return j, nil
}

func (db *DB) ListJobs(ctx context.Context, skip, limit int, isActive *bool) ([]*Job, int, error) {
	var where string
	var args []any
	if isActive != nil {
		where = " WHERE is_active = $1"
		args = append(args, *isActive)
	}

	var total int
	if err := db.connection.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT id, title, department, description, requirements, location, employment_type, is_active, created_at, updated_at
	          FROM jobs%s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := db.connection.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []*Job
	for rows.Next() {
		j := &Job{}
		var department, description, requirements, location sql.NullString
		if err := rows.Scan(&j.ID, &j.Title, &department, &description, &requirements, &location,
			&j.EmploymentType, &j.IsActive, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, err
		}
		j.Department = department.String
		j.Description = description.String
		j.Requirements = requirements.String
		j.Location = location.String
		res = append(res, j)
	}
	return res, total, rows.Err()
}

func (db *DB) UpdateJob(ctx context.Context, j *Job) error {
	query := `UPDATE jobs
	          SET title = $2, department = $3, description = $4, requirements = $5,
	              location = $6, employment_type = $7, is_active = $8, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`
	err := db.connection.QueryRowContext(ctx, query,
		j.ID, j.Title, nullable(j.Department), nullable(j.Description),
		nullable(j.Requirements), nullable(j.Location), j.EmploymentType, j.IsActive,
	).Scan(&j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("Job", j.ID.String())
	}
	return err
}

func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	res, err := db.connection.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "Job", id)
}

// --- Resumes ---

const resumeColumns = `id, candidate_id, original_filename, stored_filename, file_path, content_type,
	file_size_bytes, extracted_text, extraction_status, extraction_error,
	parsed_data, parsed_at, parsing_status, parsing_error, created_at, updated_at`

func (db *DB) CreateResume(ctx context.Context, r *Resume) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ExtractionStatus == "" {
		r.ExtractionStatus = StagePending
	}
	if r.ParsingStatus == "" {
		r.ParsingStatus = StagePending
	}

	query := `INSERT INTO resumes (id, candidate_id, original_filename, stored_filename, file_path, content_type, file_size_bytes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	return db.connection.QueryRowContext(ctx, query,
		r.ID, r.CandidateID, r.OriginalFilename, r.StoredFilename,
		r.FilePath, r.ContentType, r.FileSizeBytes,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*Resume, error) {
	row := db.connection.QueryRowContext(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	r, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("Resume", id.String())
	}
	return r, err
}

// ListResumesForCandidate returns the candidate's resumes, newest first.
func (db *DB) ListResumesForCandidate(ctx context.Context, candidateID uuid.UUID) ([]*Resume, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE candidate_id = $1 ORDER BY created_at DESC`,
		candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// UpdateResumeExtraction records one extraction attempt's outcome. A fresh
// attempt overwrites whatever the previous attempt left behind.
func (db *DB) UpdateResumeExtraction(ctx context.Context, id uuid.UUID, status, text, errMsg string) error {
	query := `UPDATE resumes
	          SET extraction_status = $2, extracted_text = $3, extraction_error = $4, updated_at = NOW()
	          WHERE id = $1`
	res, err := db.connection.ExecContext(ctx, query, id, status, nullable(text), nullable(errMsg))
	if err != nil {
		return err
	}
	return requireRow(res, "Resume", id)
}

// UpdateResumeParsing records one parsing attempt's outcome. parsed_at is
// set only on completion.
func (db *DB) UpdateResumeParsing(ctx context.Context, id uuid.UUID, status string, parsed json.RawMessage, errMsg string) error {
	query := `UPDATE resumes
	          SET parsing_status = $2,
	              parsed_data = COALESCE($3, parsed_data),
	              parsed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE parsed_at END,
	              parsing_error = $4,
	              updated_at = NOW()
	          WHERE id = $1`
	var data any
	if len(parsed) > 0 {
		data = []byte(parsed)
	}
	res, err := db.connection.ExecContext(ctx, query, id, status, data, nullable(errMsg))
	if err != nil {
		return err
	}
	return requireRow(res, "Resume", id)
}

func (db *DB) DeleteResume(ctx context.Context, id uuid.UUID) error {
	res, err := db.connection.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "Resume", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*Resume, error) {
	r := &Resume{}
	var text, extractionErr, parsingErr sql.NullString
	var parsed []byte
	var parsedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.CandidateID, &r.OriginalFilename, &r.StoredFilename,
		&r.FilePath, &r.ContentType, &r.FileSizeBytes,
		&text, &r.ExtractionStatus, &extractionErr,
		&parsed, &parsedAt, &r.ParsingStatus, &parsingErr,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ExtractedText = text.String
	r.ExtractionError = extractionErr.String
	r.ParsingError = parsingErr.String
	if len(parsed) > 0 {
		r.ParsedData = json.RawMessage(parsed)
	}
	if parsedAt.Valid {
		t := parsedAt.Time
		r.ParsedAt = &t
	}
	return r, nil
}

func requireRow(res sql.Result, resource string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(resource, id.String())
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
