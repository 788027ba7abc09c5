package queue

import (
	"strings"
	"time"
)

// ItemRef describes the song an item points at. The engine copies it from the
// catalog at enqueue time and never changes it afterwards.
type ItemRef struct {
	SongID   int64
	Title    string
	Artist   string
	Source   string
	Filename string
	Duration int // seconds
}

// Label renders "Title - Artist" for logs and notifications.
func (r ItemRef) Label() string {
	title := strings.TrimSpace(r.Title)
	artist := strings.TrimSpace(r.Artist)
	switch {
	case title != "" && artist != "":
		return title + " - " + artist
	case title != "":
		return title
	case artist != "":
		return artist
	default:
		return ""
	}
}

// Item is one queued entry.
type Item struct {
	ID        int64
	QueueID   string
	Position  float64
	Ref       ItemRef
	CreatedAt time.Time
}

// Playing is the now-playing pointer of one queue.
type Playing struct {
	QueueID   string
	Ref       ItemRef
	StartedAt time.Time
}

// Summary reports a queue that currently holds items.
type Summary struct {
	QueueID string
	Items   int
}

// Placement selects where an enqueue lands.
type Placement string

const (
	PlaceAtEnd     Placement = "atEnd"
	PlaceAtFront   Placement = "atFront"
	PlaceAfterItem Placement = "afterItem"
)

// ParsePlacement accepts the wire names case-insensitively.
func ParsePlacement(value string) (Placement, bool) {
	for _, p := range []Placement{PlaceAtEnd, PlaceAtFront, PlaceAfterItem} {
		if strings.EqualFold(strings.TrimSpace(value), string(p)) {
			return p, true
		}
	}
	return "", false
}

// MoveMethod selects how an existing item is relocated.
type MoveMethod string

const (
	MoveUp        MoveMethod = "up"
	MoveDown      MoveMethod = "down"
	MoveAtFront   MoveMethod = "atFront"
	MoveAtEnd     MoveMethod = "atEnd"
	MoveAfterItem MoveMethod = "afterItem"
	MoveTo        MoveMethod = "to"
)

var moveMethods = []MoveMethod{MoveUp, MoveDown, MoveAtFront, MoveAtEnd, MoveAfterItem, MoveTo}

// ParseMoveMethod accepts the wire names case-insensitively.
func ParseMoveMethod(value string) (MoveMethod, bool) {
	for _, m := range moveMethods {
		if strings.EqualFold(strings.TrimSpace(value), string(m)) {
			return m, true
		}
	}
	return "", false
}
