package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fwojciec/sourcebook"
	"google.golang.org/genai"
)

// defaultModel is used for credential validation probes.
const defaultModel = "gemini-2.5-flash"

// streamBuffer is the chunk buffer between the API reader and the subscriber.
const streamBuffer = 16

// Ensure interface compliance at compile time.
var (
	_ sourcebook.Generator           = (*Generator)(nil)
	_ sourcebook.CredentialValidator = (*Validator)(nil)
)

// NewClient creates a Gemini API client for the given API key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// Generator implements sourcebook.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator for a Gemini model.
func NewGenerator(client *genai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate returns the complete response for a prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", translateError(err)
	}
	if result == nil {
		return "", sourcebook.Errorf(sourcebook.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// GenerateStream starts a generation and returns a stream of response chunks.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	if prompt == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "prompt required")
	}

	stream := sourcebook.NewStream(streamBuffer)

	go func() {
		for result, err := range g.client.Models.GenerateContentStream(ctx, g.model,
			[]*genai.Content{{
				Parts: []*genai.Part{{Text: prompt}},
			}},
			BuildConfig(),
		) {
			if err != nil {
				stream.Close(translateError(err))
				return
			}
			if text := result.Text(); text != "" {
				if err := stream.Send(ctx, text); err != nil {
					stream.Close(err)
					return
				}
			}
		}
		stream.Close(nil)
	}()

	return stream, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// Prompts arrive fully built, so no system instruction is set here.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		Temperature: &temp,
	}
}

// Validator implements sourcebook.CredentialValidator by running a token
// count against the API, which fails fast on a bad key.
type Validator struct {
	client *genai.Client
}

// NewValidator creates a new Validator.
func NewValidator(client *genai.Client) *Validator {
	return &Validator{client: client}
}

// ValidateCredential probes the API with the configured key.
func (v *Validator) ValidateCredential(ctx context.Context) error {
	_, err := v.client.Models.CountTokens(ctx, defaultModel,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: "ping"}},
		}},
		nil,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// translateError maps Gemini API failures onto domain error codes. Gemini
// reports a bad key as a 400 INVALID_ARGUMENT, not a 401.
func translateError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "gemini: %v", err)
	}

	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "gemini: %s", msg)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(msg, "API key"):
		return sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "gemini: %s", msg)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
		return sourcebook.Errorf(sourcebook.EUNAVAILABLE, "gemini: %s", msg)
	}
	return sourcebook.Errorf(sourcebook.EINTERNAL, "gemini: %s", msg)
}
