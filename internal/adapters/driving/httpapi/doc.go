// Package httpapi serves the ask pipeline over HTTP with echo.
//
// # Routes
//
//	GET  /         status and whether Azure OpenAI is configured
//	GET  /health   provider health, 503 when any component is down
//	POST /ask      answer a question (API key or JWT required)
//	GET  /stats    vector index statistics (API key or JWT required)
//	GET  /metrics  Prometheus metrics
//
// # Authentication
//
// Protected routes read "Authorization: Bearer <token>". The token is
// accepted when its sha256 hex digest is a configured API key hash, or
// when it is an HS256 JWT signed with the configured secret.
//
// Errors are returned as {"error": "..."}. Provider failures never expose
// provider error text.
package httpapi
