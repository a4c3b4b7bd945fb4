// Package api implements the client side of the conversion service contract.
//
// # Endpoints
//
// POST /upload: multipart form body with a single "file" field. The service
// answers {filename, file_category} or {error}.
//
// POST /convert: JSON {filename, target_format, compress}. The service answers
// {filename, download_url} or {error}.
//
// GET <download_url>: the converted artefact. Relative references are resolved
// against the configured base URL.
//
// # Errors
//
// Responses carrying an "error" field surface as *RejectedError and match
// services.ErrRejected. Everything else that prevents a usable answer
// (dial failures, timeouts, undecodable bodies, bare non-2xx statuses) is
// tagged with services.ErrTransport. The client never retries.
package api
