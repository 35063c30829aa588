// Package driven defines the interfaces the core requires from
// external collaborators: the document graph, the presentation service,
// the object store and the run ledger. Adapters under
// internal/connectors and internal/adapters/driven implement them.
package driven
