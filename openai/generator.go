// Package openai provides generation backed by the OpenAI chat completions API.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/sourcebook"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 5 * time.Minute
)

const (
	temperature  = 0.4
	streamBuffer = 16
)

// Ensure interface compliance at compile time.
var (
	_ sourcebook.Generator           = (*Generator)(nil)
	_ sourcebook.CredentialValidator = (*Validator)(nil)
)

// Config holds configuration for the OpenAI adapter.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// Model is the model to generate with.
	Model string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Timeout bounds a full request including body read (default: 5m).
	Timeout time.Duration

	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return cfg
}

// Generator implements sourcebook.Generator using the chat completions API.
type Generator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGenerator creates a new Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "openai: API key required")
	}
	if cfg.Model == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "openai: model required")
	}
	c := cfg.withDefaults()
	return &Generator{
		client:  c.HTTPClient,
		baseURL: c.BaseURL,
		apiKey:  c.APIKey,
		model:   c.Model,
	}, nil
}

// chatRequest is the /chat/completions request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// chatMessage is the OpenAI message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the non-streaming /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// chatStreamChunk is one SSE data payload of a streaming completion.
type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Generate returns the complete response for a prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	resp, err := g.post(ctx, chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "openai: decode response: %v", err)
	}
	if len(completion.Choices) == 0 {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "openai: response contained no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// GenerateStream starts a generation and returns a stream of response chunks.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	if prompt == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	resp, err := g.post(ctx, chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	stream := sourcebook.NewStream(streamBuffer)

	go func() {
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				stream.Close(nil)
				return
			}

			var chunk chatStreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil || len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if err := stream.Send(ctx, text); err != nil {
					stream.Close(err)
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			stream.Close(sourcebook.Errorf(sourcebook.EUNAVAILABLE, "openai: stream interrupted: %v", err))
			return
		}
		stream.Close(nil)
	}()

	return stream, nil
}

// post sends a chat completion request and returns the response with a
// still-open body. Non-2xx responses are drained and translated.
func (g *Generator) post(ctx context.Context, reqBody chatRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "openai: marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "openai: create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EUNAVAILABLE, "openai: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apiError(resp.StatusCode, respBody)
	}

	return resp, nil
}

// Validator implements sourcebook.CredentialValidator by listing models,
// which requires a valid key but consumes no tokens.
type Validator struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewValidator creates a new Validator.
func NewValidator(cfg Config) (*Validator, error) {
	if cfg.APIKey == "" {
		return nil, sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "openai: API key required")
	}
	c := cfg.withDefaults()
	return &Validator{client: c.HTTPClient, baseURL: c.BaseURL, apiKey: c.APIKey}, nil
}

// ValidateCredential probes the API with the configured key.
func (v *Validator) ValidateCredential(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/models", http.NoBody)
	if err != nil {
		return sourcebook.Errorf(sourcebook.EINTERNAL, "openai: create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "openai: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, respBody)
	}
	return nil
}

// apiError translates an error response onto domain error codes. The message
// comes from the body's error.message, then message, then the status code.
func apiError(status int, body []byte) error {
	var payload struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}

	var msg string
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != nil && payload.Error.Message != "":
			msg = payload.Error.Message
		case payload.Message != "":
			msg = payload.Message
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			msg = fmt.Sprintf("invalid API key (%d)", status)
		}
		return sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "openai: %s", msg)
	case status == http.StatusTooManyRequests || status >= 500:
		if msg == "" {
			msg = fmt.Sprintf("status %d", status)
		}
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "openai: %s", msg)
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return sourcebook.Errorf(sourcebook.EINTERNAL, "openai: %s", msg)
}
