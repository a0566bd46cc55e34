// Package http serves the survey pages.
//
// The server exposes:
//   - The survey flow (/, /begin, /questions/:id, /answer, /complete)
//   - Health checks
//   - Prometheus metrics
//
// Every page request carries a session cookie holding an opaque id. Notices
// raised by a redirect travel in a one-time flash cookie and are shown on the
// next rendered page.
package http
