package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.Handler) *anthropic.Generator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := anthropic.NewGenerator(anthropic.Config{
		APIKey:  "test-key",
		Model:   "claude-sonnet-4-20250514",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return g
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("returns concatenated text blocks", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.NotZero(t, req["max_tokens"], "max_tokens is required by the API")

			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there."}],"stop_reason":"end_turn"}`))
		}))

		answer, err := g.Generate(context.Background(), "greet me")
		require.NoError(t, err)
		assert.Equal(t, "Hello there.", answer)
	})

	t.Run("returns error for empty prompt", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("server should not be called")
		}))

		_, err := g.Generate(context.Background(), "")
		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
	})

	t.Run("maps 401 to EUNAUTHORIZED with decoded message", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
		}))

		_, err := g.Generate(context.Background(), "hello")
		require.Error(t, err)
		assert.Equal(t, sourcebook.EUNAUTHORIZED, sourcebook.ErrorCode(err))
		assert.Contains(t, sourcebook.ErrorMessage(err), "invalid x-api-key")
	})

	t.Run("maps 529 overloaded to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(529)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
		}))

		_, err := g.Generate(context.Background(), "hello")
		require.Error(t, err)
		assert.Equal(t, sourcebook.EUNAVAILABLE, sourcebook.ErrorCode(err))
	})
}

func TestGenerator_GenerateStream(t *testing.T) {
	t.Parallel()

	t.Run("delivers text deltas in order", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte("event: message_start\ndata: {\"type\":\"message_start\"}\n\n"))
			_, _ = w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n"))
			_, _ = w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"lo\"}}\n\n"))
			_, _ = w.Write([]byte("event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"))
		}))

		stream, err := g.GenerateStream(context.Background(), "greet me")
		require.NoError(t, err)

		var sb strings.Builder
		for chunk := range stream.Chunks() {
			sb.WriteString(chunk)
		}

		require.NoError(t, stream.Err())
		assert.Equal(t, "Hello", sb.String())
	})

	t.Run("surfaces in-stream error events", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n"))
			_, _ = w.Write([]byte("event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n"))
		}))

		stream, err := g.GenerateStream(context.Background(), "hello")
		require.NoError(t, err)

		var sb strings.Builder
		for chunk := range stream.Chunks() {
			sb.WriteString(chunk)
		}

		assert.Equal(t, "partial", sb.String())
		require.Error(t, stream.Err())
		assert.Equal(t, sourcebook.EUNAVAILABLE, sourcebook.ErrorCode(stream.Err()))
	})

	t.Run("rejects bad credentials before streaming", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
		}))

		_, err := g.GenerateStream(context.Background(), "hello")
		require.Error(t, err)
		assert.Equal(t, sourcebook.EUNAUTHORIZED, sourcebook.ErrorCode(err))
	})
}

func TestValidator_ValidateCredential(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid key", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			assert.Equal(t, "good-key", r.Header.Get("x-api-key"))
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		t.Cleanup(server.Close)

		v, err := anthropic.NewValidator(anthropic.Config{APIKey: "good-key", BaseURL: server.URL})
		require.NoError(t, err)

		require.NoError(t, v.ValidateCredential(context.Background()))
	})

	t.Run("rejects bad key", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
		}))
		t.Cleanup(server.Close)

		v, err := anthropic.NewValidator(anthropic.Config{APIKey: "bad-key", BaseURL: server.URL})
		require.NoError(t, err)

		err = v.ValidateCredential(context.Background())
		require.Error(t, err)
		assert.Equal(t, sourcebook.EUNAUTHORIZED, sourcebook.ErrorCode(err))
	})
}
