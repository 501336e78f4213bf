package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hr-assistant/internal/apperrors"
	"hr-assistant/internal/parser"
	"hr-assistant/internal/storage"
	"hr-assistant/internal/vector"
)

type stubStore struct {
	resumes map[uuid.UUID]*storage.Resume
	jobs    map[uuid.UUID]*storage.Job

	parsingUpdates []parsingUpdate
}

type parsingUpdate struct {
	resumeID uuid.UUID
	status   string
	parsed   json.RawMessage
	errMsg   string
}

func newStubStore() *stubStore {
	return &stubStore{
		resumes: make(map[uuid.UUID]*storage.Resume),
		jobs:    make(map[uuid.UUID]*storage.Job),
	}
}

func (s *stubStore) GetResume(_ context.Context, id uuid.UUID) (*storage.Resume, error) {
	resume, ok := s.resumes[id]
	if !ok {
		return nil, apperrors.NotFound("resume", id.String())
	}
	return resume, nil
}

func (s *stubStore) UpdateResumeParsing(_ context.Context, id uuid.UUID, status string, parsed json.RawMessage, errMsg string) error {
	s.parsingUpdates = append(s.parsingUpdates, parsingUpdate{id, status, parsed, errMsg})
	if resume, ok := s.resumes[id]; ok {
		resume.ParsingStatus = status
		resume.ParsedData = parsed
		resume.ParsingError = errMsg
	}
	return nil
}

func (s *stubStore) GetJob(_ context.Context, id uuid.UUID) (*storage.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job", id.String())
	}
	return job, nil
}

type stubParser struct {
	result *parser.ParsedResume
	err    error
	calls  int
}

func (p *stubParser) Parse(_ context.Context, _ string) (*parser.ParsedResume, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
	texts  []string
}

func (e *stubEmbedder) Embed(_ context.Context, text, _ string) ([]float32, error) {
	e.calls++
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func newTestRunner(db store, p resumeParser, e embedder, vectors vector.Store) *Runner {
	return NewRunner(db, p, e, vectors, "resumes", "jobs", zap.NewNop())
}

func TestProcessResumeParsesEmbedsAndIndexes(t *testing.T) {
	db := newStubStore()
	resumeID := uuid.New()
	candidateID := uuid.New()
	db.resumes[resumeID] = &storage.Resume{
		ID:               resumeID,
		CandidateID:      candidateID,
		ExtractedText:    "Go engineer with 5 years of backend work",
		ExtractionStatus: storage.StageCompleted,
		ParsingStatus:    storage.StagePending,
	}

	p := &stubParser{result: &parser.ParsedResume{Summary: "Go engineer", Skills: []string{"Go"}}}
	e := &stubEmbedder{vector: []float32{1, 0}}
	vectors := vector.NewMemoryStore()
	runner := newTestRunner(db, p, e, vectors)

	runner.ProcessResume(context.Background(), resumeID)

	require.Len(t, db.parsingUpdates, 1)
	assert.Equal(t, storage.StageCompleted, db.parsingUpdates[0].status)

	var stored parser.ParsedResume
	require.NoError(t, json.Unmarshal(db.parsingUpdates[0].parsed, &stored))
	assert.Equal(t, "Go engineer", stored.Summary)
	assert.Equal(t, []string{"Go"}, stored.Skills)

	entry, err := vectors.Get(context.Background(), "resumes", resumeID.String())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, db.resumes[resumeID].ExtractedText, entry.Document)
	assert.Equal(t, candidateID.String(), entry.Metadata["candidate_id"])
	assert.Equal(t, 1, e.calls)
}

func TestProcessResumeSkipsWithoutExtractedText(t *testing.T) {
	db := newStubStore()
	resumeID := uuid.New()
	db.resumes[resumeID] = &storage.Resume{
		ID:               resumeID,
		ExtractionStatus: storage.StageFailed,
		ParsingStatus:    storage.StagePending,
	}

	p := &stubParser{result: &parser.ParsedResume{}}
	e := &stubEmbedder{vector: []float32{1, 0}}
	runner := newTestRunner(db, p, e, vector.NewMemoryStore())

	runner.ProcessResume(context.Background(), resumeID)

	assert.Zero(t, p.calls)
	assert.Zero(t, e.calls)
	assert.Empty(t, db.parsingUpdates)
}

func TestProcessResumeRecordsParsingFailure(t *testing.T) {
	db := newStubStore()
	resumeID := uuid.New()
	db.resumes[resumeID] = &storage.Resume{
		ID:               resumeID,
		ExtractedText:    "some text",
		ExtractionStatus: storage.StageCompleted,
		ParsingStatus:    storage.StagePending,
	}

	p := &stubParser{err: errors.New("model unavailable")}
	e := &stubEmbedder{vector: []float32{1, 0}}
	runner := newTestRunner(db, p, e, vector.NewMemoryStore())

	runner.ProcessResume(context.Background(), resumeID)

	require.Len(t, db.parsingUpdates, 1)
	assert.Equal(t, storage.StageFailed, db.parsingUpdates[0].status)
	assert.Contains(t, db.parsingUpdates[0].errMsg, "model unavailable")
	assert.Zero(t, e.calls)
}

func TestProcessResumeKeepsParseWhenEmbeddingFails(t *testing.T) {
	db := newStubStore()
	resumeID := uuid.New()
	db.resumes[resumeID] = &storage.Resume{
		ID:               resumeID,
		ExtractedText:    "some text",
		ExtractionStatus: storage.StageCompleted,
		ParsingStatus:    storage.StagePending,
	}

	p := &stubParser{result: &parser.ParsedResume{Summary: "Engineer"}}
	e := &stubEmbedder{err: errors.New("quota exceeded")}
	vectors := vector.NewMemoryStore()
	runner := newTestRunner(db, p, e, vectors)

	runner.ProcessResume(context.Background(), resumeID)

	require.Len(t, db.parsingUpdates, 1)
	assert.Equal(t, storage.StageCompleted, db.parsingUpdates[0].status)

	entry, err := vectors.Get(context.Background(), "resumes", resumeID.String())
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestProcessJobEmbedsAndIndexes(t *testing.T) {
	db := newStubStore()
	jobID := uuid.New()
	db.jobs[jobID] = &storage.Job{
		ID:           jobID,
		Title:        "Backend Engineer",
		Description:  "Build services",
		Requirements: "Go, SQL",
		IsActive:     true,
	}

	e := &stubEmbedder{vector: []float32{0, 1}}
	vectors := vector.NewMemoryStore()
	runner := newTestRunner(db, &stubParser{}, e, vectors)

	runner.ProcessJob(context.Background(), jobID)

	require.Len(t, e.texts, 1)
	assert.Equal(t, "Backend Engineer\nBuild services\nRequirements: Go, SQL", e.texts[0])

	entry, err := vectors.Get(context.Background(), "jobs", jobID.String())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Backend Engineer Build services Go, SQL", entry.Document)
	assert.Equal(t, true, entry.Metadata["is_active"])
}

func TestProcessJobMissingJobIsNoOp(t *testing.T) {
	e := &stubEmbedder{vector: []float32{0, 1}}
	runner := newTestRunner(newStubStore(), &stubParser{}, e, vector.NewMemoryStore())

	runner.ProcessJob(context.Background(), uuid.New())

	assert.Zero(t, e.calls)
}

func TestEnqueueResumeFullQueueMarksFailed(t *testing.T) {
	db := newStubStore()
	runner := newTestRunner(db, &stubParser{}, &stubEmbedder{}, vector.NewMemoryStore())

	// Fill the queue without a worker draining it.
	for i := 0; i < resumeQueueSize; i++ {
		runner.EnqueueResume(uuid.New())
	}
	assert.Empty(t, db.parsingUpdates)

	dropped := uuid.New()
	runner.EnqueueResume(dropped)

	require.Len(t, db.parsingUpdates, 1)
	assert.Equal(t, dropped, db.parsingUpdates[0].resumeID)
	assert.Equal(t, storage.StageFailed, db.parsingUpdates[0].status)
	assert.Equal(t, "processing queue full", db.parsingUpdates[0].errMsg)
}
