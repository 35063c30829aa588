// Package services contains the core pipeline logic: the retry policy,
// the concurrency limiter, the dated-folder resolver, the scratch
// render sessions and the export orchestrator.
package services
