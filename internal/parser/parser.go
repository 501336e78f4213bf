// Package parser turns extracted resume text into structured data via a
// schema-constrained Gemini call.
package parser

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"hr-assistant/internal/apperrors"
)

type WorkExperience struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Year        string `json:"year,omitempty"`
}

// ParsedResume is the structured record extracted from resume text. Fields
// the model cannot find stay empty rather than failing validation.
type ParsedResume struct {
	FullName       string           `json:"full_name,omitempty"`
	Email          string           `json:"email,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Summary        string           `json:"summary,omitempty"`
	Skills         []string         `json:"skills"`
	Experience     []WorkExperience `json:"experience"`
	Education      []Education      `json:"education"`
	Languages      []string         `json:"languages"`
	Certifications []string         `json:"certifications"`
}

const parsePrompt = `You are a resume parser. Extract structured information from the following resume text.
Be thorough — extract all skills, work experience, and education entries.
If a field is not found, leave it as null or empty list.

Resume text:
`

const parseTemperature = 0.1

// resumeSchema constrains Gemini's JSON output to the ParsedResume shape.
var resumeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"full_name": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"email":     {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"phone":     {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"summary":   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"skills":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"experience": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company":     {Type: genai.TypeString},
					"title":       {Type: genai.TypeString},
					"start_date":  {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"end_date":    {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"description": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
				},
			},
		},
		"education": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"institution": {Type: genai.TypeString},
					"degree":      {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"field":       {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"year":        {Type: genai.TypeString, Nullable: genai.Ptr(true)},
				},
			},
		},
		"languages":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"certifications": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
}

// structuredGenerator is the slice of the Gemini client the parser needs.
type structuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

type Parser struct {
	generator structuredGenerator
}

func New(generator structuredGenerator) *Parser {
	return &Parser{generator: generator}
}

// Parse sends the extracted text to the model exactly once. An empty
// response yields a zero-valued record; a present but malformed response
// is an AI-service failure surfaced to the caller.
func (p *Parser) Parse(ctx context.Context, extractedText string) (*ParsedResume, error) {
	raw, err := p.generator.GenerateStructured(ctx, parsePrompt+extractedText, resumeSchema, parseTemperature)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw) == "" {
		return &ParsedResume{}, nil
	}

	var parsed ParsedResume
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.KindAIService, "invalid resume parser response", err)
	}
	return &parsed, nil
}
