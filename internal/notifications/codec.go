package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec selects the payload encoding of broker messages.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// ParseCodec accepts "json" (default for empty input) and "msgpack".
func ParseCodec(value string) (Codec, error) {
	switch Codec(strings.ToLower(strings.TrimSpace(value))) {
	case "", CodecJSON:
		return CodecJSON, nil
	case CodecMsgpack:
		return CodecMsgpack, nil
	default:
		return "", fmt.Errorf("notifications: unsupported encoding %q", value)
	}
}

// ContentType returns the MIME type of encoded payloads.
func (c Codec) ContentType() string {
	if c == CodecMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

// Encode serializes event. msgpack reuses the json field names so both
// encodings carry the same keys.
func (c Codec) Encode(event Event) ([]byte, error) {
	if c != CodecMsgpack {
		return json.Marshal(event)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	if err := enc.Encode(event); err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode, for subscribers written in Go.
func (c Codec) Decode(data []byte) (Event, error) {
	var event Event
	if c != CodecMsgpack {
		err := json.Unmarshal(data, &event)
		return event, err
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&event); err != nil {
		return Event{}, fmt.Errorf("msgpack decode: %w", err)
	}
	return event, nil
}
