// Package api defines the wire format of the karaoke HTTP API and a client
// for it.
//
// DTOs use camelCase JSON tags for browser and TypeScript consumers.
// Timestamps are RFC 3339 with milliseconds. Positions travel as JSON
// numbers and in URL paths as the shortest decimal form that parses back to
// the same float64, so a position read from one response can always address
// the same item in the next request.
//
// FromQueueItem, FromPlaying and FromSong translate internal models into
// DTOs. Client wraps every route for the CLI and tags each request with an
// X-Request-ID header.
package api
