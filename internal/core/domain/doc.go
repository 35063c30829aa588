// Package domain contains the core business entities of chartpress:
// stores, chart references, export results and run reports. The domain
// layer has no dependencies on adapters or external services.
package domain
