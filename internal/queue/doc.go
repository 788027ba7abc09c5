// Package queue keeps per-room karaoke queues ordered by fractional
// positions.
//
// Items carry a float64 position that is unique within a queue and defines
// playback order. Inserting between two neighbours takes their midpoint, so
// most moves touch exactly one row. When repeated halving exhausts the
// float64 precision between two neighbours the engine renumbers the queue to
// 1..N inside the same transaction and continues.
//
// Engine holds the placement rules. Store implementations (SQLStore over
// SQLite/PostgreSQL and MemoryStore) only persist rows and never reorder on
// their own.
package queue
