package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.Handler) *ollama.Generator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := ollama.NewGenerator(ollama.Config{Host: server.URL, Model: "llama3.2"})
	require.NoError(t, err)
	return g
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid host URL", func(t *testing.T) {
		t.Parallel()

		for _, host := range []string{"not a url", "localhost:11434", "ftp://example.com"} {
			_, err := ollama.NewGenerator(ollama.Config{Host: host, Model: "llama3.2"})
			require.Error(t, err, "host %q should be rejected", host)
			assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
		}
	})

	t.Run("requires model", func(t *testing.T) {
		t.Parallel()

		_, err := ollama.NewGenerator(ollama.Config{Host: "http://localhost:11434"})
		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
	})
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("returns response text", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/generate", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.2", req["model"])
			assert.Equal(t, false, req["stream"])

			_, _ = w.Write([]byte(`{"response":"The answer is 42.","done":true}`))
		}))

		answer, err := g.Generate(context.Background(), "What is the answer?")
		require.NoError(t, err)
		assert.Equal(t, "The answer is 42.", answer)
	})

	t.Run("maps missing model to EINVALID", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'llama3.2' not found"}`))
		}))

		_, err := g.Generate(context.Background(), "hello")
		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
		assert.Contains(t, sourcebook.ErrorMessage(err), "not found")
	})

	t.Run("maps unreachable server to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		g, err := ollama.NewGenerator(ollama.Config{Host: server.URL, Model: "llama3.2"})
		require.NoError(t, err)

		_, err = g.Generate(context.Background(), "hello")
		require.Error(t, err)
		assert.Equal(t, sourcebook.EUNAVAILABLE, sourcebook.ErrorCode(err))
	})
}

func TestGenerator_GenerateStream(t *testing.T) {
	t.Parallel()

	t.Run("delivers JSON line chunks in order", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, true, req["stream"])

			_, _ = w.Write([]byte(`{"response":"Hel","done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"response":"lo","done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"response":"","done":true}` + "\n"))
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

	t.Run("surfaces in-stream errors", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"response":"partial","done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"error":"model crashed"}` + "\n"))
		}))

		stream, err := g.GenerateStream(context.Background(), "hello")
		require.NoError(t, err)

		var sb strings.Builder
		for chunk := range stream.Chunks() {
			sb.WriteString(chunk)
		}

		assert.Equal(t, "partial", sb.String())
		require.Error(t, stream.Err())
		assert.Contains(t, sourcebook.ErrorMessage(stream.Err()), "model crashed")
	})
}

func TestValidator_ValidateCredential(t *testing.T) {
	t.Parallel()

	t.Run("accepts reachable server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		t.Cleanup(server.Close)

		v, err := ollama.NewValidator(ollama.Config{Host: server.URL})
		require.NoError(t, err)

		require.NoError(t, v.ValidateCredential(context.Background()))
	})

	t.Run("rejects invalid host URL", func(t *testing.T) {
		t.Parallel()

		_, err := ollama.NewValidator(ollama.Config{Host: "::not-a-url::"})
		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
	})

	t.Run("maps unreachable server to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		v, err := ollama.NewValidator(ollama.Config{Host: server.URL})
		require.NoError(t, err)

		err = v.ValidateCredential(context.Background())
		require.Error(t, err)
		assert.Equal(t, sourcebook.EUNAVAILABLE, sourcebook.ErrorCode(err))
	})
}
