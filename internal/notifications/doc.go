// Package notifications fans committed queue changes out to listeners.
//
// Service implements queue.Notifier. Every change becomes an Event with a
// ULID identifier and is handed to each configured Publisher: the in-process
// Hub that feeds the daemon's server-sent events endpoint, an ntfy-style
// webhook, Redis pub/sub and a RabbitMQ topic exchange. Publisher failures are
// joined and returned so the engine can log them; they never undo the queue
// change that triggered them.
package notifications
