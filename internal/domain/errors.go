package domain

import "errors"

var (
	// ErrMissingCredential signals a required provider credential was not configured.
	ErrMissingCredential = errors.New("missing provider credential")
	// ErrIndexNotFound signals a missing vector index namespace.
	ErrIndexNotFound = errors.New("index not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch on insert.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrNoDocuments signals that ingestion found no usable source documents.
	ErrNoDocuments = errors.New("no source documents")

	// ErrModelProviderError signals an embedding/summarization/generation provider failure.
	ErrModelProviderError = errors.New("model provider error")
	// ErrEmptyCompletion signals a provider response with no usable output.
	ErrEmptyCompletion = errors.New("empty model completion")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
