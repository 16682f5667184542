package analysis

import "errors"

var (
	// ErrInvalidInput means code or language was missing or rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the provider rejected the configured credential.
	ErrUnauthorized = errors.New("provider rejected credential")

	// ErrProviderNotConfigured means no credential is available for the completion provider.
	ErrProviderNotConfigured = errors.New("completion provider not configured")

	// ErrProviderFailure covers network, timeout and throttling errors from the provider.
	// It is absorbed into the fallback path and never reaches the caller.
	ErrProviderFailure = errors.New("completion provider failure")

	// ErrParseFailure means the provider output held no usable JSON object.
	// Also absorbed into the fallback path.
	ErrParseFailure = errors.New("unparsable provider output")

	// ErrStorageNotConfigured is returned by report export when no object store is set up.
	ErrStorageNotConfigured = errors.New("report storage not configured")
)
