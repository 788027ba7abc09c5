// Package storage opens the relational database shared by the queue and song
// catalog stores.
//
// SQLite (modernc.org/sqlite, no cgo) is the default and suits a single
// karaoke room server; PostgreSQL (lib/pq) serves deployments where several
// daemons share one database. Both are driven through sqlx so the stores can
// write `?` placeholders and rebind them per dialect. Open applies the
// embedded migrations for the active dialect inside one transaction and
// refuses to start against a database that a newer build has migrated.
//
// InTx is the unit of atomicity for multi-step queue operations. Lock
// contention restarts the whole transaction with bounded backoff.
package storage
