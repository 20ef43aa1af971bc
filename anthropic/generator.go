// Package anthropic provides generation backed by the Anthropic messages API.
package anthropic

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
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultTimeout = 5 * time.Minute

	// apiVersion is the required anthropic-version header.
	apiVersion = "2023-06-01"
)

const (
	temperature  = 0.4
	maxTokens    = 4096
	streamBuffer = 16
)

// Ensure interface compliance at compile time.
var (
	_ sourcebook.Generator           = (*Generator)(nil)
	_ sourcebook.CredentialValidator = (*Validator)(nil)
)

// Config holds configuration for the Anthropic adapter.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// Model is the model to generate with.
	Model string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
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

// Generator implements sourcebook.Generator using the messages API.
type Generator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGenerator creates a new Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "anthropic: API key required")
	}
	if cfg.Model == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "anthropic: model required")
	}
	c := cfg.withDefaults()
	return &Generator{
		client:  c.HTTPClient,
		baseURL: c.BaseURL,
		apiKey:  c.APIKey,
		model:   c.Model,
	}, nil
}

// messagesRequest is the /v1/messages request format.
type messagesRequest struct {
	Model       string         `json:"model"`
	Messages    []messageParam `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
}

// messageParam is the Anthropic message format.
type messageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the non-streaming /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// streamEvent is one SSE data payload of a streaming message. The type field
// discriminates; only deltas, errors and the stop marker matter here.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate returns the complete response for a prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	resp, err := g.post(ctx, messagesRequest{
		Model:       g.model,
		Messages:    []messageParam{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var message messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&message); err != nil {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: decode response: %v", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: response contained no text")
	}

	return sb.String(), nil
}

// GenerateStream starts a generation and returns a stream of response chunks.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	if prompt == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	resp, err := g.post(ctx, messagesRequest{
		Model:       g.model,
		Messages:    []messageParam{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
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

			var event streamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				continue
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta.Type != "text_delta" || event.Delta.Text == "" {
					continue
				}
				if err := stream.Send(ctx, event.Delta.Text); err != nil {
					stream.Close(err)
					return
				}
			case "error":
				stream.Close(eventError(event))
				return
			case "message_stop":
				stream.Close(nil)
				return
			}
		}

		if err := scanner.Err(); err != nil {
			stream.Close(sourcebook.Errorf(sourcebook.EUNAVAILABLE, "anthropic: stream interrupted: %v", err))
			return
		}
		stream.Close(nil)
	}()

	return stream, nil
}

// post sends a messages request and returns the response with a still-open
// body. Non-2xx responses are drained and translated.
func (g *Generator) post(ctx context.Context, reqBody messagesRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EUNAVAILABLE, "anthropic: %v", err)
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
		return nil, sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "anthropic: API key required")
	}
	c := cfg.withDefaults()
	return &Validator{client: c.HTTPClient, baseURL: c.BaseURL, apiKey: c.APIKey}, nil
}

// ValidateCredential probes the API with the configured key.
func (v *Validator) ValidateCredential(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: create request: %v", err)
	}
	req.Header.Set("x-api-key", v.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := v.client.Do(req)
	if err != nil {
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "anthropic: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, respBody)
	}
	return nil
}

// eventError maps an in-stream error event onto domain error codes.
func eventError(event streamEvent) error {
	msg := "stream error"
	kind := ""
	if event.Error != nil {
		kind = event.Error.Type
		if event.Error.Message != "" {
			msg = event.Error.Message
		}
	}
	if kind == "overloaded_error" || kind == "api_error" {
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "anthropic: %s", msg)
	}
	return sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: %s", msg)
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
		return sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "anthropic: %s", msg)
	case status == http.StatusTooManyRequests || status >= 500:
		if msg == "" {
			msg = fmt.Sprintf("status %d", status)
		}
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "anthropic: %s", msg)
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return sourcebook.Errorf(sourcebook.EINTERNAL, "anthropic: %s", msg)
}
