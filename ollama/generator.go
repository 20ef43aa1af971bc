// Package ollama provides generation backed by a local Ollama server.
// The credential is the server URL rather than an API key.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/sourcebook"
)

// Default configuration values.
const (
	DefaultHost    = "http://localhost:11434"
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

// Config holds configuration for the Ollama adapter.
type Config struct {
	// Host is the Ollama server URL (default: http://localhost:11434).
	Host string

	// Model is the model to generate with.
	Model string

	// Timeout bounds a full request including body read (default: 5m).
	Timeout time.Duration

	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

func (c *Config) withDefaults() (Config, error) {
	cfg := *c
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	host, err := normalizeHost(cfg.Host)
	if err != nil {
		return Config{}, err
	}
	cfg.Host = host
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return cfg, nil
}

// normalizeHost validates the server URL and strips a trailing slash.
func normalizeHost(host string) (string, error) {
	u, err := url.Parse(host)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "invalid Ollama host URL %q", host)
	}
	return strings.TrimSuffix(host, "/"), nil
}

// Generator implements sourcebook.Generator using the /api/generate endpoint.
type Generator struct {
	client *http.Client
	host   string
	model  string
}

// NewGenerator creates a new Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Model == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "ollama: model required")
	}
	c, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Generator{client: c.HTTPClient, host: c.Host, model: c.Model}, nil
}

// generateRequest is the /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is one /api/generate response object. Streaming responses
// are newline-delimited JSON, one object per chunk.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate returns the complete response for a prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	resp, err := g.post(ctx, generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  false,
		Options: &options{Temperature: temperature},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: decode response: %v", err)
	}
	if genResp.Error != "" {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: %s", genResp.Error)
	}

	return genResp.Response, nil
}

// GenerateStream starts a generation and returns a stream of response chunks.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	if prompt == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	resp, err := g.post(ctx, generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  true,
		Options: &options{Temperature: temperature},
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
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk generateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Error != "" {
				stream.Close(sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: %s", chunk.Error))
				return
			}
			if chunk.Response != "" {
				if err := stream.Send(ctx, chunk.Response); err != nil {
					stream.Close(err)
					return
				}
			}
			if chunk.Done {
				stream.Close(nil)
				return
			}
		}

		if err := scanner.Err(); err != nil {
			stream.Close(sourcebook.Errorf(sourcebook.EUNAVAILABLE, "ollama: stream interrupted: %v", err))
			return
		}
		stream.Close(nil)
	}()

	return stream, nil
}

// post sends a generate request and returns the response with a still-open
// body. Non-2xx responses are drained and translated.
func (g *Generator) post(ctx context.Context, reqBody generateRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EUNAVAILABLE, "cannot reach Ollama at %s: %v", g.host, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apiError(resp.StatusCode, respBody)
	}

	return resp, nil
}

// Validator implements sourcebook.CredentialValidator by probing the
// /api/tags endpoint, which answers without running inference.
type Validator struct {
	client *http.Client
	host   string
}

// NewValidator creates a new Validator for a server URL.
func NewValidator(cfg Config) (*Validator, error) {
	c, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Validator{client: c.HTTPClient, host: c.Host}, nil
}

// ValidateCredential probes the configured server.
func (v *Validator) ValidateCredential(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.host+"/api/tags", http.NoBody)
	if err != nil {
		return sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: create request: %v", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "cannot reach Ollama at %s: %v", v.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, respBody)
	}
	return nil
}

// apiError translates an error response onto domain error codes. Ollama
// reports errors as {"error": "message"}.
func apiError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}

	switch {
	case status == http.StatusNotFound:
		return sourcebook.Errorf(sourcebook.EINVALID, "ollama: %s", msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "ollama: %s", msg)
	}
	return sourcebook.Errorf(sourcebook.EINTERNAL, "ollama: %s", msg)
}
