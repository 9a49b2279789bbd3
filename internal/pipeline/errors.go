package pipeline

import "errors"

var (
	// ErrNoAttachment means a download trigger fired on a reply chain whose
	// original message carries no attachments.
	ErrNoAttachment = errors.New("replied-to message has no attachments")
)
