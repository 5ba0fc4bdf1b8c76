// Package driving defines the interfaces through which the outside
// world drives the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI and chat adapters depend on these interfaces, and core
// services implement them.
//
//   - HarvestService: content ingestion and catalog statistics
//   - QueryService: retrieval-grounded question answering
//
// # Import Rules
//
//   - Can Import: domain package, and ports/driven for shared
//     acquisition result types (VideoInfo)
//   - Cannot Import: Any adapter or service package
package driving
