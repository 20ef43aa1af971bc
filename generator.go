package sourcebook

import (
	"context"
	"sync"
)

// Generator produces text from a prompt using a single configured model.
type Generator interface {
	// Generate returns the complete response for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream starts a generation and returns a stream of response
	// chunks. The generator always closes the stream, recording a terminal
	// error if the transport fails mid-stream.
	GenerateStream(ctx context.Context, prompt string) (*Stream, error)
}

// CredentialValidator probes a provider credential without generating
// content. Returns EUNAUTHORIZED when the provider rejects the credential
// and EUNAVAILABLE when the provider cannot be reached.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context) error
}

// GeneratorFactory builds generators for catalog models. credential is the
// provider API key, or the server URL for host-based providers.
type GeneratorFactory interface {
	// Generator returns a generator for the model.
	Generator(model *AIModel, credential string) (Generator, error)

	// Validator returns a credential validator for the provider.
	Validator(provider Provider, credential string) (CredentialValidator, error)
}

// Stream delivers generated text incrementally. A stream has a single
// producer and a single subscriber: the producer calls Send and then Close
// exactly once; the subscriber ranges over Chunks and reads Err after the
// channel closes.
type Stream struct {
	ch chan string

	mu     sync.Mutex
	err    error
	closed bool
}

// NewStream returns a stream with the given chunk buffer size.
func NewStream(buffer int) *Stream {
	return &Stream{ch: make(chan string, buffer)}
}

// Chunks returns the channel of response chunks. The channel is closed when
// the generation settles.
func (s *Stream) Chunks() <-chan string {
	return s.ch
}

// Send delivers a chunk to the subscriber, honoring context cancellation.
func (s *Stream) Send(ctx context.Context, chunk string) error {
	select {
	case s.ch <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close settles the stream. A non-nil err records that generation failed
// after the chunks delivered so far. Only the first call takes effect.
func (s *Stream) Close(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
}

// Err returns the terminal error, if any. Valid once Chunks is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
