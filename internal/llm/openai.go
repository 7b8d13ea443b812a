package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// completeOpenAI calls an OpenAI-compatible chat completions endpoint and
// asks for a JSON object reply.
func (c *Client) completeOpenAI(ctx context.Context, system, user string) (string, error) {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: "system", Content: system})
	}
	msgs = append(msgs, Message{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       msgs,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, body, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		return "", err
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("llm call",
		"provider", ProviderOpenAI,
		"input_tokens", apiResp.Usage.PromptTokens,
		"output_tokens", apiResp.Usage.CompletionTokens,
	)
	return apiResp.Choices[0].Message.Content, nil
}
