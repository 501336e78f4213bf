// Package gemini wraps the Google GenAI client behind the two calls the
// rest of the service needs: JSON-constrained text generation and single
// text embeddings.
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"hr-assistant/internal/apperrors"
)

// Embedding task-type hints. Documents being indexed and queries used to
// search them are embedded with different geometry.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

type Client struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func New(ctx context.Context, apiKey, model, embeddingModel string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("google ai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
	}, nil
}

// GenerateJSON asks the model for JSON output without a schema constraint.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.generate(ctx, prompt, nil, temperature)
}

// GenerateStructured asks the model for JSON output conforming to schema.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	return c.generate(ctx, prompt, schema, temperature)
}

// generate returns the concatenated text of the first response. An empty
// response is returned as an empty string, not an error; callers decide
// what an absent payload means.
func (c *Client) generate(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(temperature),
	}
	if schema != nil {
		cfg.ResponseSchema = schema
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindAIService, "generate content", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// Embed converts text into a vector. Exactly one input goes out and exactly
// one vector comes back.
func (c *Client) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{TaskType: taskType}

	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindAIService, "embed content", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, apperrors.E(apperrors.KindAIService, "embedding api returned no vector")
	}

	return resp.Embeddings[0].Values, nil
}
