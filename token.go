package sourcebook

import "context"

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// tokenCharRatio is the assumed average number of characters per token.
const tokenCharRatio = 4

// EstimateTokens approximates the number of tokens in text with a
// characters-per-token heuristic, for when no model tokenizer is available.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + tokenCharRatio - 1) / tokenCharRatio
}

// TokenEstimator is a TokenCounter backed by EstimateTokens.
type TokenEstimator struct{}

// CountTokens implements TokenCounter.
func (TokenEstimator) CountTokens(_ context.Context, text string) (int, error) {
	return EstimateTokens(text), nil
}
