// Package services defines shared request-scoped helpers consumed by the API
// server, the queue engine, and the logging package.
//
// The context helpers stamp queue identifiers, operation names, client
// addresses, and correlation identifiers so every log line emitted while
// serving a request can be traced back to the room and call that caused it.
package services
