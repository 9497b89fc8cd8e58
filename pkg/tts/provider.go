// Package tts defines the speech synthesis contract and its error taxonomy.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// Provider defines the interface for Text-To-Speech engines.
type Provider interface {
	// Synthesize generates audio from text and streams it into outputPath.
	// An empty voice selects the provider's configured voice. No retries are
	// performed; on error outputPath may be absent or partial and must not be
	// trusted by the caller.
	Synthesize(ctx context.Context, text, voice, outputPath string) error
}

// Profile is the fixed synthesis profile sent with every request.
type Profile struct {
	// Stability trades expressiveness for consistency. 0 is the most
	// expressive and variable delivery, 1 the most even.
	Stability float64
	// Similarity favors closeness to the reference voice. Higher values stay
	// nearer the original speaker's timbre.
	Similarity float64
}

// Validate reports whether both parameters lie in [0,1].
func (p Profile) Validate() error {
	if p.Stability < 0 || p.Stability > 1 {
		return fmt.Errorf("stability %.2f out of range [0,1]", p.Stability)
	}
	if p.Similarity < 0 || p.Similarity > 1 {
		return fmt.Errorf("similarity %.2f out of range [0,1]", p.Similarity)
	}
	return nil
}

// AuthError reports a missing or rejected synthesis credential.
// It is fatal at startup.
type AuthError struct {
	StatusCode int // 0 when raised before any request was sent
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tts auth failed (status %d): %s", e.StatusCode, e.Message)
	}
	return "tts auth failed: " + e.Message
}

// RemoteError reports a non-success response from the synthesis service.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("tts remote error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError reports a network failure talking to the synthesis service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "tts transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsAuthError checks if err is, or wraps, an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
