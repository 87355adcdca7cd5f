// Package server exposes the position history over HTTP.
//
// Routes:
//   - GET /api/positions[?limit=N]  retained history, oldest first
//   - GET /api/latest               newest position
//   - GET /api/status               history size and polling configuration
//   - GET /api/stream               WebSocket feed of new positions
//   - GET /health                   acquisition health
//   - everything else               static assets from the configured directory
//
// API responses are JSON unless the client asks for application/msgpack.
// Responses are compressed with brotli, zstd or gzip when the client accepts
// it, and /api/ paths can be rate limited per client IP.
package server
