package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const explanationFallback = "No explanation available."

const explainTemperature = 0.3

// explanations asks the model to explain all matches in one call and
// repairs whatever comes back: missing entries are padded with a fallback,
// excess entries truncated. Ranked results are never failed over missing
// commentary.
func (e *Engine) explanations(ctx context.Context, referenceText string, matchTexts, matchLabels []string) []string {
	if len(matchTexts) == 0 {
		return []string{}
	}

	var matchesBlock strings.Builder
	for i, text := range matchTexts {
		fmt.Fprintf(&matchesBlock, "\n--- %s ---\n%s\n", matchLabels[i], text)
	}

	prompt := fmt.Sprintf(
		"You are an HR matching assistant. For each candidate/job below, "+
			"explain in 1-2 sentences why they are a good or poor match for "+
			"the reference.\n\n"+
			"Reference:\n%s\n\n"+
			"Matches:\n%s\n\n"+
			"Return a JSON array of strings, one explanation per match, "+
			"in the same order.",
		referenceText, matchesBlock.String(),
	)

	raw, err := e.generator.GenerateJSON(ctx, prompt, explainTemperature)
	if err != nil {
		e.logger.Warn("explanation generation failed", zap.Error(err))
		return repeated(explanationFallback, len(matchTexts))
	}

	var explanations []string
	if err := json.Unmarshal([]byte(raw), &explanations); err != nil {
		e.logger.Warn("explanation response was not a JSON string array",
			zap.String("response_preview", preview(raw, 200)))
		return repeated(explanationFallback, len(matchTexts))
	}

	for len(explanations) < len(matchTexts) {
		explanations = append(explanations, explanationFallback)
	}
	return explanations[:len(matchTexts)]
}

func repeated(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func preview(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
