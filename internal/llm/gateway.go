package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UpstreamError reports a non-success response from the completion provider.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm invoke failed: %d %s - %s", e.StatusCode, e.Status, e.Body)
}

// Gateway calls an OpenAI-compatible chat-completions endpoint.
type Gateway struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// NewGateway creates a Gateway for the given provider. apiKey may be empty
// for providers that do not require authentication.
func NewGateway(baseURL, apiKey, model string, maxTokens int) *Gateway {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Gateway{client: c, model: model, maxTokens: maxTokens}
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation to the provider and returns the first
// choice's content. A systemPrompt, when supplied, is prepended as a single
// system-role message. Malformed-but-successful responses yield an empty
// string rather than an error.
func (g *Gateway) Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	all := messages
	if systemPrompt != "" {
		all = append([]Message{{Role: "system", Content: systemPrompt}}, messages...)
	}

	var out completionResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&completionRequest{Model: g.model, Messages: all, MaxTokens: g.maxTokens}).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       string(resp.Body()),
		}
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// HealthPing probes the provider's model listing endpoint.
func (g *Gateway) HealthPing(ctx context.Context) error {
	resp, err := g.client.R().SetContext(ctx).Get("/v1/models")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("llm provider status %d", resp.StatusCode())
	}
	return nil
}
