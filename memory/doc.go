// Package memory provides short-term and long-term memory for AI Persons.
//
// Short-term memory is a bounded per-session message buffer, never
// persisted. Long-term memory is a durable per-Person record of
// conversation summaries, preferences, and relationships. Facts are
// deduplicated natural-language assertions learned about the user,
// scoped per Person.
//
// Consolidation folds a session's short-term buffer into the bound
// Person's long-term memory: a heuristic topic summary is appended,
// facts and preferences are extracted from the user's messages and
// merged, and the durable collections are written.
//
// Architecture:
//   - Store: owns all three sub-collections and the consolidation and
//     search logic
//   - FactIndex: optional vector index for semantic fact retrieval
//     (chromem-go implementation in memory/index/chromem)
//   - Embedder: text-to-vector conversion for the index (mock for tests,
//     ONNX behind the onnx build tag for offline semantic search)
package memory
