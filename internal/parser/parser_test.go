package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"hr-assistant/internal/apperrors"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
	lastSchema *genai.Schema
	lastTemp   float32
}

func (s *stubGenerator) GenerateStructured(_ context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastSchema = schema
	s.lastTemp = temperature
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestParseStructuredResponse(t *testing.T) {
	stub := &stubGenerator{response: `{
		"full_name": "John Doe",
		"skills": ["Python"],
		"experience": [{"company": "Acme", "title": "Dev"}]
	}`}
	p := New(stub)

	parsed, err := p.Parse(context.Background(), "John Doe, developer at Acme")
	require.NoError(t, err)

	assert.Equal(t, "John Doe", parsed.FullName)
	assert.Equal(t, []string{"Python"}, parsed.Skills)
	require.Len(t, parsed.Experience, 1)
	assert.Equal(t, "Acme", parsed.Experience[0].Company)
	assert.Empty(t, parsed.Education)
}

func TestParseMakesExactlyOneCall(t *testing.T) {
	stub := &stubGenerator{response: `{}`}
	p := New(stub)

	_, err := p.Parse(context.Background(), "some resume text")
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.True(t, strings.HasSuffix(stub.lastPrompt, "some resume text"))
	assert.NotNil(t, stub.lastSchema)
	assert.InDelta(t, 0.1, stub.lastTemp, 1e-6)
}

func TestParseEmptyResponseYieldsZeroRecord(t *testing.T) {
	stub := &stubGenerator{response: ""}
	p := New(stub)

	parsed, err := p.Parse(context.Background(), "text")
	require.NoError(t, err)

	assert.Empty(t, parsed.FullName)
	assert.Empty(t, parsed.Skills)
	assert.Empty(t, parsed.Experience)
}

func TestParseMalformedResponseIsAIServiceError(t *testing.T) {
	stub := &stubGenerator{response: "definitely not json"}
	p := New(stub)

	_, err := p.Parse(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAIService))
}

func TestParsePropagatesGeneratorError(t *testing.T) {
	boom := apperrors.Wrap(apperrors.KindAIService, "generate content", errors.New("quota"))
	stub := &stubGenerator{err: boom}
	p := New(stub)

	_, err := p.Parse(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
}
