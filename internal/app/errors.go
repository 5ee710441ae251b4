package app

import "errors"

// Failure taxonomy surfaced to the transport layer. Every service failure is
// one of these (or wraps one); nothing is swallowed and nothing is retried
// inside the services.
var (
	ErrValidation         = errors.New("invalid or incomplete input")
	ErrEmptyMessage       = errors.New("message content is empty")
	ErrNoCorpus           = errors.New("no guideline corpus available")
	ErrUpstream           = errors.New("upstream model or search backend unavailable")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidAttachment  = errors.New("invalid attachment")
	ErrGuidelineNotFound  = errors.New("guideline document not found")
)
