package queue

import (
	"errors"
	"strconv"
	"strings"
)

// Kind classifies queue failures for transport mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
)

// Sentinels matched through errors.Is against any *Error of the same kind.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("position conflict")
	ErrStore      = errors.New("store failure")
)

// Machine readable codes carried on *Error.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNoItem     = "NO_ITEM_AT_POSITION"
	CodeNoSong     = "NO_SONG_FOUND"
	CodeConflict   = "POSITION_CONFLICT"
	CodeStore      = "STORE_ERROR"
)

// ErrorClassifier lets errors declare their classification.
type ErrorClassifier interface {
	ErrorKind() string
}

// Error is the typed failure returned by the engine and the stores.
type Error struct {
	Kind        Kind
	Op          string
	QueueID     string
	Position    float64
	HasPosition bool
	Code        string
	Message     string
	Err         error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("queue")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	if e.QueueID != "" {
		b.WriteString(" ")
		b.WriteString(e.QueueID)
	}
	if e.HasPosition {
		b.WriteString(" @")
		b.WriteString(strconv.FormatFloat(e.Position, 'g', -1, 64))
	}
	b.WriteString(": ")
	switch {
	case e.Message != "" && e.Err != nil:
		b.WriteString(e.Message)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(string(e.Kind))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.Kind.sentinel()
}

// ErrorKind implements ErrorClassifier.
func (e *Error) ErrorKind() string { return string(e.Kind) }

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindStore:
		return ErrStore
	default:
		return nil
	}
}

// KindOf reports the kind of a queue error, or KindStore for anything else.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) && qe.Kind != "" {
		return qe.Kind
	}
	return KindStore
}

// CodeOf reports the machine readable code of a queue error.
func CodeOf(err error) string {
	var qe *Error
	if errors.As(err, &qe) && qe.Code != "" {
		return qe.Code
	}
	switch KindOf(err) {
	case KindValidation:
		return CodeValidation
	case KindNotFound:
		return CodeNoItem
	case KindConflict:
		return CodeConflict
	default:
		return CodeStore
	}
}

func validationError(op, queueID, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, QueueID: queueID, Code: CodeValidation, Message: message}
}

func notFoundAt(op, queueID string, position float64) *Error {
	return &Error{
		Kind:        KindNotFound,
		Op:          op,
		QueueID:     queueID,
		Position:    position,
		HasPosition: true,
		Code:        CodeNoItem,
		Message:     "no item at position",
	}
}

func conflictAt(op, queueID string, position float64, err error) *Error {
	return &Error{
		Kind:        KindConflict,
		Op:          op,
		QueueID:     queueID,
		Position:    position,
		HasPosition: true,
		Code:        CodeConflict,
		Message:     "position already taken",
		Err:         err,
	}
}

// SongNotFound reports a song id the catalog does not know.
func SongNotFound(songID int64, err error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Op:      "lookup_song",
		Code:    CodeNoSong,
		Message: "no song with id " + strconv.FormatInt(songID, 10),
		Err:     err,
	}
}

func storeError(op, queueID string, err error) *Error {
	return &Error{Kind: KindStore, Op: op, QueueID: queueID, Code: CodeStore, Err: err}
}

// wrap passes typed errors through, filling in missing context, and
// classifies everything else as a store failure.
func wrap(op, queueID string, err error) error {
	if err == nil {
		return nil
	}
	var qe *Error
	if errors.As(err, &qe) {
		if qe.QueueID == "" {
			qe.QueueID = queueID
		}
		return err
	}
	return storeError(op, queueID, err)
}
