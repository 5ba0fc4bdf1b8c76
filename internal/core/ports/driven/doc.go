// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CatalogStore: Source/Item/Chunk persistence and dedup lookups
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Vector storage and similarity search
//   - LLMService: Answer synthesis from an assembled context
//
// # Acquisition Interfaces
//
// One per content kind; a harvest only needs the ones for the URL it
// is given:
//
//   - VideoProvider: YouTube metadata, search, and audio download
//   - Transcriber: Audio to time-aligned text
//   - ArticleFetcher: Web page to extracted text
//   - RepoProvider: Repository documentation files
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
