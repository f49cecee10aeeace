package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ChatMessage is a single turn in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes a chat completion call.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// Usage reports token consumption for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult carries the first choice's text plus usage accounting.
type ChatResult struct {
	Content string
	Usage   Usage
}

// CreateChatCompletion runs a chat completion and returns the first choice.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResult, error) {
	resp, err := c.postJSON(ctx, "/chat/completions", req)
	if err != nil {
		return ChatResult{}, err
	}
	defer resp.Body.Close()

	var decoded struct {
		Choices []struct {
			Message ChatMessage `json:"message"`
		} `json:"choices"`
		Usage Usage `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ChatResult{}, fmt.Errorf("openai chat decode: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return ChatResult{}, errors.New("openai chat: response contained no choices")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return ChatResult{}, errors.New("openai chat: response contained empty content")
	}
	return ChatResult{Content: content, Usage: decoded.Usage}, nil
}
