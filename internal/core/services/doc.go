// Package services implements the core ingestion-segmentation-retrieval
// pipeline.
//
// Services orchestrate domain logic and collaborator calls. They depend
// only on driven port interfaces, injected through constructors, so the
// whole pipeline is testable with in-memory fakes.
//
//   - HarvestService: URL -> acquire -> chunk -> persist -> embed -> index
//   - Retriever: question -> embedding -> vector query -> ranked chunks
//   - ContextAssembler: ranked chunks -> bounded, cited context block
//   - QueryService: Retriever + ContextAssembler + LLM synthesis
package services
