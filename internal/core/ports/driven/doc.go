// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - BookSource: Produces structured books (ingestion)
//   - Enricher: Attaches lexical features to chapters (enrichment)
//   - BookStore: Book and chapter persistence
//   - RunStore: Run and edge persistence, keyed by run id
//   - ConfigStore: Application configuration
//   - CandidateGenerator: Recall stage of the retrieval pipeline
//   - SimilarityScorer: Precision stage of the retrieval pipeline
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or ingestion package
package driven
