// Package google provides the shared plumbing for the Google API
// adapters: service construction, service-account credentials, error
// mapping and per-service rate limiting. The Sheets, Slides and Drive
// adapters live in subpackages.
package google
