package matching

import (
	"fmt"
	"math"
	"strings"

	"hr-assistant/internal/parser"
	"hr-assistant/internal/storage"
)

// Embedding services reject empty input, so a resume with no usable parsed
// fields embeds this placeholder instead.
const emptyResumePlaceholder = "No resume data available"

// DistanceToScore converts cosine distance to a 0-1 similarity score.
// Distance 0 (identical) maps to 1.0, distance 2 (opposite) to 0.0; values
// outside [0, 2] clamp.
func DistanceToScore(distance float64) float64 {
	return math.Max(0.0, math.Min(1.0, 1.0-distance/2))
}

// BuildResumeText flattens parsed resume fields into one embedding input:
// summary, a skills line, one line per experience entry, one per education
// entry.
func BuildResumeText(parsed *parser.ParsedResume) string {
	var parts []string

	if parsed.Summary != "" {
		parts = append(parts, parsed.Summary)
	}
	if len(parsed.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(parsed.Skills, ", "))
	}
	for _, exp := range parsed.Experience {
		line := fmt.Sprintf("%s at %s", exp.Title, exp.Company)
		if exp.Description != "" {
			line += " — " + exp.Description
		}
		parts = append(parts, line)
	}
	for _, edu := range parsed.Education {
		parts = append(parts, fmt.Sprintf("%s in %s from %s", edu.Degree, edu.Field, edu.Institution))
	}

	if len(parts) == 0 {
		return emptyResumePlaceholder
	}
	return strings.Join(parts, "\n")
}

// BuildJobQueryText is the job's text as used for query embeddings and as
// the reference shown to the explanation model.
func BuildJobQueryText(job *storage.Job) string {
	return fmt.Sprintf("%s\n%s\n%s", job.Title, job.Description, job.Requirements)
}

// BuildJobDocumentText is the job's text as embedded for indexing; the
// requirements get an explicit prefix so they carry their own weight.
func BuildJobDocumentText(job *storage.Job) string {
	parts := []string{job.Title}
	if job.Description != "" {
		parts = append(parts, job.Description)
	}
	if job.Requirements != "" {
		parts = append(parts, "Requirements: "+job.Requirements)
	}
	return strings.Join(parts, "\n")
}
