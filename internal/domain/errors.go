package domain

import "errors"

// Error kinds surfaced by the build and query pipelines.
// Callers classify wrapped errors with errors.Is.
var (
	// ErrInputNotFound indicates there were no ingestible documents, or the
	// persisted index/metadata pair is missing.
	ErrInputNotFound = errors.New("input not found")

	// ErrEmptyExtraction indicates no text of at least the minimum length was
	// found across all documents.
	ErrEmptyExtraction = errors.New("no extractable text")

	// ErrEmbedding indicates the embedding provider failed.
	ErrEmbedding = errors.New("embedding failure")

	// ErrDimensionMismatch indicates a vector length disagrees with the
	// established index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCorruptIndex indicates the index and metadata are out of step, or a
	// row id could not be resolved.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrIO indicates a persistence read or write failed.
	ErrIO = errors.New("i/o failure")
)
