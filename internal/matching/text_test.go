package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hr-assistant/internal/parser"
	"hr-assistant/internal/storage"
)

func TestDistanceToScore(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1.0},
		{2, 0.0},
		{1, 0.5},
		{3, 0.0},
		{-0.5, 1.0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, DistanceToScore(tc.distance), 1e-9, "distance %v", tc.distance)
	}
}

func TestBuildResumeText(t *testing.T) {
	parsed := &parser.ParsedResume{
		Summary: "S",
		Skills:  []string{"Python", "FastAPI"},
		Experience: []parser.WorkExperience{
			{Title: "Dev", Company: "Acme", Description: "Built APIs"},
		},
		Education: []parser.Education{
			{Degree: "BS", Field: "CS", Institution: "MIT"},
		},
	}

	lines := strings.Split(BuildResumeText(parsed), "\n")
	assert.Equal(t, []string{
		"S",
		"Skills: Python, FastAPI",
		"Dev at Acme — Built APIs",
		"BS in CS from MIT",
	}, lines)
}

func TestBuildResumeTextExperienceWithoutDescription(t *testing.T) {
	parsed := &parser.ParsedResume{
		Experience: []parser.WorkExperience{{Title: "SRE", Company: "Globex"}},
	}
	assert.Equal(t, "SRE at Globex", BuildResumeText(parsed))
}

func TestBuildResumeTextEmpty(t *testing.T) {
	assert.Equal(t, "No resume data available", BuildResumeText(&parser.ParsedResume{}))
}

func TestBuildJobQueryTextKeepsEmptyLines(t *testing.T) {
	job := &storage.Job{Title: "Go Engineer"}
	assert.Equal(t, "Go Engineer\n\n", BuildJobQueryText(job))
}

func TestBuildJobDocumentText(t *testing.T) {
	job := &storage.Job{
		Title:        "Go Engineer",
		Description:  "Build backend services",
		Requirements: "5 years of Go",
	}
	assert.Equal(t, "Go Engineer\nBuild backend services\nRequirements: 5 years of Go",
		BuildJobDocumentText(job))

	bare := &storage.Job{Title: "Intern"}
	assert.Equal(t, "Intern", BuildJobDocumentText(bare))
}
