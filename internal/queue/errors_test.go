package queue_test

import (
	"errors"
	"fmt"
	"testing"

	"karaoke/internal/queue"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      *queue.Error
		sentinel error
		code     string
	}{
		{&queue.Error{Kind: queue.KindValidation}, queue.ErrValidation, queue.CodeValidation},
		{&queue.Error{Kind: queue.KindNotFound}, queue.ErrNotFound, queue.CodeNoItem},
		{&queue.Error{Kind: queue.KindConflict}, queue.ErrConflict, queue.CodeConflict},
		{&queue.Error{Kind: queue.KindStore}, queue.ErrStore, queue.CodeStore},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("handler: %w", tc.err)
		if !errors.Is(wrapped, tc.sentinel) {
			t.Fatalf("%s: expected errors.Is to match %v", tc.err.Kind, tc.sentinel)
		}
		if got := queue.KindOf(wrapped); got != tc.err.Kind {
			t.Fatalf("KindOf = %q, want %q", got, tc.err.Kind)
		}
		if got := queue.CodeOf(wrapped); got != tc.code {
			t.Fatalf("CodeOf = %q, want %q", got, tc.code)
		}
		if tc.err.ErrorKind() != string(tc.err.Kind) {
			t.Fatalf("ErrorKind = %q", tc.err.ErrorKind())
		}
	}
	if errors.Is(&queue.Error{Kind: queue.KindNotFound}, queue.ErrConflict) {
		t.Fatal("not_found must not match ErrConflict")
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := &queue.Error{
		Kind:        queue.KindStore,
		Op:          "move_up",
		QueueID:     "room-1",
		Position:    2.5,
		HasPosition: true,
		Message:     "update failed",
		Err:         cause,
	}
	want := "queue move_up room-1 @2.5: update failed: disk I/O error"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}

	var classifier queue.ErrorClassifier
	if !errors.As(fmt.Errorf("wrapped: %w", err), &classifier) {
		t.Fatal("expected ErrorClassifier")
	}

	songErr := queue.SongNotFound(12, nil)
	if queue.CodeOf(songErr) != queue.CodeNoSong || !errors.Is(songErr, queue.ErrNotFound) {
		t.Fatalf("unexpected song error %v", songErr)
	}
	if queue.KindOf(errors.New("plain")) != queue.KindStore {
		t.Fatal("unclassified errors are store failures")
	}
}

func TestParseWireNames(t *testing.T) {
	if p, ok := queue.ParsePlacement(" ATEND "); !ok || p != queue.PlaceAtEnd {
		t.Fatalf("ParsePlacement = %q, %v", p, ok)
	}
	if _, ok := queue.ParsePlacement("middle"); ok {
		t.Fatal("unknown placement accepted")
	}
	if m, ok := queue.ParseMoveMethod("afterItem"); !ok || m != queue.MoveAfterItem {
		t.Fatalf("ParseMoveMethod = %q, %v", m, ok)
	}
	if _, ok := queue.ParseMoveMethod("sideways"); ok {
		t.Fatal("unknown move method accepted")
	}
}
