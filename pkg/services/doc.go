// Package services contains the business logic of the VQA agent.
//
// Service responsibilities:
//   - ImageService: temp-image lifecycle (uploads, URL downloads, validation,
//     model encoding, age-based expiry)
//   - ModelService: vision and language inference against an Ollama-compatible
//     backend, plus startup model verification
//   - VQAService: the two-stage answer pipeline (visual profile, then
//     language-model composition)
//   - CleanupService: periodic maintenance over temp images and history
//   - AppService: orchestration facade consumed by the HTTP handlers
package services
