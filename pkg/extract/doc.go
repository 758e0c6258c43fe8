// Package extract is the boundary to the service that turns free-form
// documents into a contact analysis.
//
// The extraction itself is an [Extractor]; orgtower ships a
// [StaticExtractor] for documents that already hold a JSON or TOML
// analysis, and [FuncExtractor] to adapt anything else. Everything an
// extractor returns is untrusted and is normalized before use.
//
// # Requests
//
// A [Coordinator] allows one logical request in flight. Each call to
// [Coordinator.Run] takes the next sequence number; when a response arrives
// after a newer request was started it is discarded with a SUPERSEDED error,
// so the caller keeps whatever analysis it already had.
//
// Several documents are extracted concurrently by [ExtractAll] and merged
// in document order: contacts and narrative lists are concatenated before
// any validation runs, so duplicate ids across documents are resolved later
// by the pipeline like any other duplicate.
//
// # Retries
//
// Extractors backed by a remote service wrap transient failures in
// [RetryableError] and are wrapped with [WithRetry]. [ReadDocuments] retries
// interrupted or busy file reads the same way.
package extract
