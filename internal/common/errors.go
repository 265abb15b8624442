// Package common defines shared constants and sentinel errors used across
// the release-manifest pipeline. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrReleaseNotFound    = errors.New("release not found")
	ErrNoManifestSnapshot = errors.New("release has no manifest snapshot; activate the release first")
	ErrStackNotInstalled  = errors.New("access point stack is not installed")

	// Activation errors. ErrNothingToShare is a legitimate terminal state:
	// the operator must change permissions or specimen selections.
	// ErrMismatchedExpectations means permissions were granted but the
	// backing data does not exist, which usually points at an upstream
	// indexing defect rather than a releasing mistake.
	ErrNothingToShare         = errors.New("nothing to share")
	ErrMismatchedExpectations = errors.New("mismatched sharing expectations")

	// Data-integrity errors. A stored object URL that does not parse is
	// never skipped; skipping would silently under-report shared data.
	ErrMalformedObjectURL = errors.New("malformed object URL")

	// Caller/programming errors.
	ErrGenerationUsage = errors.New("invalid generation request")
	ErrUnknownProtocol = errors.New("unknown object store protocol")

	// ErrExternalService wraps failures from the object-store or
	// resource-description clients. No retry policy lives here; failures
	// are terminal for the current generation attempt.
	ErrExternalService = errors.New("external service error")
)
