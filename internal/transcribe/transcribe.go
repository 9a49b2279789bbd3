// Package transcribe defines the speech-to-text collaborator and its HTTP
// client implementation.
package transcribe

import "context"

// Transcriber converts a local audio file into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}
