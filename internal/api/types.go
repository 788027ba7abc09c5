package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// RequestIDHeader carries the correlation id of one API call.
const RequestIDHeader = "X-Request-ID"

// Song is the song reference stored on queue items and the now-playing
// pointer.
type Song struct {
	SongID   int64  `json:"songId"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Source   string `json:"source,omitempty"`
	Filename string `json:"filename,omitempty"`
	Duration int    `json:"duration"`
}

// QueueItem describes one queue entry.
type QueueItem struct {
	ID        int64   `json:"id"`
	QueueID   string  `json:"queueId"`
	Position  float64 `json:"position"`
	Song      Song    `json:"song"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Playing describes the now-playing pointer of a queue.
type Playing struct {
	QueueID   string `json:"queueId"`
	Song      Song   `json:"song"`
	StartedAt string `json:"startedAt,omitempty"`
}

// QueueSummary reports a non-empty queue.
type QueueSummary struct {
	QueueID string `json:"queueId"`
	Items   int    `json:"items"`
}

// CatalogSong is a song catalog entry.
type CatalogSong struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Source     string `json:"source,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Duration   int    `json:"duration"`
	Plays      int    `json:"plays"`
	LastPlayed string `json:"lastPlayed,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// EnqueueRequest adds a song. Method is atEnd (default), atFront or
// afterItem; AfterPosition is required for afterItem.
type EnqueueRequest struct {
	Method        string   `json:"method,omitempty"`
	SongID        int64    `json:"songId"`
	AfterPosition *float64 `json:"afterPosition,omitempty"`
}

// MoveRequest relocates an item. Method is up, down, atFront, atEnd,
// afterItem (needs AfterPosition) or to (needs NewPosition).
type MoveRequest struct {
	Method        string   `json:"method"`
	AfterPosition *float64 `json:"afterPosition,omitempty"`
	NewPosition   *float64 `json:"newPosition,omitempty"`
}

// SetPlayingRequest marks a song as playing.
type SetPlayingRequest struct {
	SongID int64 `json:"songId"`
}

// CreateSongRequest adds a catalog song.
type CreateSongRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Source   string `json:"source,omitempty"`
	Filename string `json:"filename,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Search result shapes. Short groups title and artist searches by name.
const (
	ResultTypeShort = "short"
	ResultTypeFull  = "full"
)

// SearchSongsRequest searches the catalog. SearchMode is title, artist, text
// (the default) or id; ResultType is short (the default) or full.
type SearchSongsRequest struct {
	Query      string `json:"query"`
	SearchMode string `json:"searchMode,omitempty"`
	Exact      bool   `json:"exact,omitempty"`
	ResultType string `json:"resultType,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// SearchGroup is one distinct title or artist with its song count.
type SearchGroup struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchSongsResponse is one page of search results. ResultType is song,
// artist or title and tells whether Songs or Groups is filled. Total counts
// every match.
type SearchSongsResponse struct {
	ResultType string        `json:"resultType"`
	Songs      []CatalogSong `json:"songs,omitempty"`
	Groups     []SearchGroup `json:"groups,omitempty"`
	Total      int           `json:"total"`
}

// QueueItemsResponse lists a queue in play order.
type QueueItemsResponse struct {
	QueueID string      `json:"queueId"`
	Items   []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// ClearResponse reports how many items a clear removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// QueuesResponse lists non-empty queues.
type QueuesResponse struct {
	Queues []QueueSummary `json:"queues"`
}

// PlayingResponse wraps the now-playing pointer; Playing is nil when idle.
type PlayingResponse struct {
	Playing *Playing `json:"playing"`
}

// SongsResponse wraps a page of catalog songs.
type SongsResponse struct {
	Songs []CatalogSong `json:"songs"`
}

// SongResponse wraps one catalog song.
type SongResponse struct {
	Song CatalogSong `json:"song"`
}

// HealthResponse is returned by the health probe.
type HealthResponse struct {
	Status string `json:"status"`
}

// DaemonStatus aggregates daemon runtime information.
type DaemonStatus struct {
	Running        bool           `json:"running"`
	PID            int            `json:"pid"`
	StartedAt      string         `json:"startedAt,omitempty"`
	StorageDriver  string         `json:"storageDriver"`
	DatabasePath   string         `json:"databasePath,omitempty"`
	LockFilePath   string         `json:"lockFilePath,omitempty"`
	DataDir        string         `json:"dataDir"`
	DiskFreeBytes  uint64         `json:"diskFreeBytes"`
	DiskTotalBytes uint64         `json:"diskTotalBytes"`
	Songs          int            `json:"songs"`
	Queues         []QueueSummary `json:"queues"`
	Subscribers    int            `json:"subscribers"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
