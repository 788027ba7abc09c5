package notifications

import (
	"time"

	"github.com/oklog/ulid/v2"

	"karaoke/internal/api"
	"karaoke/internal/queue"
)

// EventType names a change.
type EventType string

const (
	EventQueueChanged   EventType = "queue.changed"
	EventPlayingChanged EventType = "playing.changed"
	EventPlayingSkipped EventType = "playing.skipped"
)

// Event is one committed change of a queue.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	QueueID    string          `json:"queueId"`
	Items      []api.QueueItem `json:"items,omitempty"`
	Playing    *api.Playing    `json:"playing,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func newEvent(kind EventType, queueID string, now time.Time) Event {
	return Event{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Type:       kind,
		QueueID:    queueID,
		OccurredAt: now.UTC(),
	}
}

// QueueChangedEvent snapshots the queue after a change.
func QueueChangedEvent(queueID string, items []queue.Item, now time.Time) Event {
	event := newEvent(EventQueueChanged, queueID, now)
	event.Items = api.FromQueueItems(items)
	return event
}

// PlayingChangedEvent reports a new now-playing pointer; nil means stopped.
func PlayingChangedEvent(queueID string, playing *queue.Playing, now time.Time) Event {
	event := newEvent(EventPlayingChanged, queueID, now)
	event.Playing = api.FromPlaying(playing)
	return event
}

// PlayingSkippedEvent asks players of queueID to stop the current song.
// skipped is the song that was playing, nil when nothing was.
func PlayingSkippedEvent(queueID string, skipped *queue.Playing, now time.Time) Event {
	event := newEvent(EventPlayingSkipped, queueID, now)
	event.Playing = api.FromPlaying(skipped)
	return event
}

// Title renders a short human headline.
func (e Event) Title() string {
	switch e.Type {
	case EventPlayingChanged:
		if e.Playing == nil {
			return "Karaoke - Stopped"
		}
		return "Karaoke - Now Playing"
	case EventPlayingSkipped:
		return "Karaoke - Skipped"
	default:
		return "Karaoke - Queue Updated"
	}
}

// Summary renders a one-line description.
func (e Event) Summary() string {
	switch e.Type {
	case EventPlayingChanged:
		if e.Playing == nil {
			return "Nothing playing in " + e.QueueID
		}
		return "Now playing in " + e.QueueID + ": " + songLabel(e.Playing.Song)
	case EventPlayingSkipped:
		if e.Playing == nil {
			return "Skip requested in " + e.QueueID
		}
		return "Skipped in " + e.QueueID + ": " + songLabel(e.Playing.Song)
	default:
		if len(e.Items) == 0 {
			return "Queue " + e.QueueID + " is empty"
		}
		return "Next up in " + e.QueueID + ": " + songLabel(e.Items[0].Song)
	}
}

func songLabel(song api.Song) string {
	return queue.ItemRef{Title: song.Title, Artist: song.Artist}.Label()
}
