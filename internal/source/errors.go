package source

import "errors"

// Adapter error taxonomy. Transport failures and non-2xx statuses surface as
// wrapped errors from pkg/http; these sentinels cover the parse layer.
var (
	// ErrMissingTag marks a tag-message response whose first message lacks
	// the expected data tag.
	ErrMissingTag = errors.New("source: expected tag missing")

	// ErrEmptyResult marks a well-formed but semantically empty response.
	ErrEmptyResult = errors.New("source: empty result")
)
