// Package catalog stores the songs a karaoke room can queue.
//
// Service validates input and implements queue.SongLookup so the queue engine
// can resolve song ids into the denormalized references it stores on each
// item. Songs are persisted through a Repository: SQLRepository shares the
// storage database with the queue, MemoryRepository backs tests and the
// in-memory daemon mode.
package catalog
