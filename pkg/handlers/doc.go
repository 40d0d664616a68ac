// Package handlers provides the HTTP API of the VQA agent.
//
// Endpoints:
//   - GET  /                  landing page (embedded)
//   - POST /api/upload        multipart image + question
//   - POST /api/url           JSON image URL + question
//   - GET  /images/{name}     serve a stored temp image
//   - GET  /api/history       recent exchanges
//   - GET  /api/history/stats exchange counts
//   - GET  /health            liveness and backend reachability
//
// Responses are JSON; the two answer endpoints return the original
// {"answer", "image_path"} shape, errors use {"error", "message"}.
package handlers
