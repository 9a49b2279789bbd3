// Package caption defines the image-captioning collaborator and its HTTP
// client implementation. The collaborator is optional; when it is not
// loaded at startup, caption requests get a remediation notice instead.
package caption

import (
	"context"
	"image"
)

// Captioner produces a natural-language caption for a decoded image.
type Captioner interface {
	Caption(ctx context.Context, img image.Image) (string, error)
}
