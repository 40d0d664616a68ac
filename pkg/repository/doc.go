// Package repository provides data persistence for question/answer exchanges.
//
// The Repository interface abstracts storage operations, with BoltRepository
// as the BoltDB-backed implementation (via bolthold). Exchanges are keyed by
// their UUID and indexed by creation time for recency queries and retention
// cleanup.
package repository
