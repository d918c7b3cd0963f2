// Package coaching generates short goal-coaching tips with the Gemini API.
// The generative model itself is an opaque collaborator; this package only
// owns the prompt and the client plumbing.
package coaching

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// defaultModel is used when no model is configured.
const defaultModel = "gemini-2.0-flash"

// Client produces coaching tips for family goal suggestions.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a new coaching client.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// GenerateTip asks the model for one actionable tip on improving a trait
// with the named partner. The returned text is trimmed; an empty generation
// is reported as an error so callers can fall back to a tip-less goal.
func (c *Client) GenerateTip(ctx context.Context, trait, partnerName string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a family relationship coach. Suggest one concrete, kind activity "+
			"someone can do this week to improve %q with %s. "+
			"Answer in at most two sentences, plain text, no preamble.",
		trait, partnerName,
	)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI tip generation failed: %w", err)
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}

	tip := strings.TrimSpace(sb.String())
	if tip == "" {
		return "", fmt.Errorf("no tip text returned")
	}
	return tip, nil
}

// Name returns the provider/model label, useful in startup logs.
func (c *Client) Name() string {
	return fmt.Sprintf("genai:%s", c.model)
}

// Close closes the underlying GenAI client. The genai SDK client holds no
// closable resources, so there is nothing to release.
func (c *Client) Close() error {
	return nil
}
