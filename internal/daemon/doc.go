// Package daemon coordinates the long-running karaoked process.
//
// It serves the queue engine and song catalog over a gin HTTP API, streams
// queue events from the notification hub as server-sent events, and runs a
// maintenance loop that renumbers queues whose positions have crowded
// together. A flock on the data directory keeps two daemons from sharing one
// database file.
//
// Keep orchestration here: queue semantics live in internal/queue and wire
// types in internal/api.
package daemon
