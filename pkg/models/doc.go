// Package models defines the core data structures used throughout the VQA agent.
//
// It includes:
//   - Exchange: Represents one answered question about one image
//   - VisualProfile: The structured description extracted by the vision model
//   - HistoryStats: Aggregate counts over stored exchanges
//
// All models include appropriate serialization tags for database storage
// and JSON API responses.
package models
