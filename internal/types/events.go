package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// EventKind is the slskd event discriminator carried in the "type" field of
// every webhook payload.
type EventKind string

const (
	KindRoomMessage       EventKind = "RoomMessageReceived"
	KindPrivateMessage    EventKind = "PrivateMessageReceived"
	KindUploadComplete    EventKind = "UploadFileComplete"
	KindDownloadComplete  EventKind = "DownloadFileComplete"
	KindDirectoryComplete EventKind = "DownloadDirectoryComplete"

	// KindUnknown is substituted when the payload carries no usable "type".
	KindUnknown EventKind = "Unknown"
)

// Fallback values substituted for absent or malformed fields. Decoding never
// rejects a structurally incomplete event; it substitutes these instead.
const (
	DefaultUsername = "Unknown User"
	DefaultFilename = "Unknown File"
	DefaultRoomName = "Unknown Room"
	DefaultUnknown  = "Unknown"
)

// Event is the closed set of inbound slskd events. Every concrete type lives
// in this file; the unexported marker keeps the set closed so consumers can
// type-switch over it with a single default arm for UnrecognizedEvent.
type Event interface {
	// Kind returns the discriminator value the event was decoded from.
	Kind() EventKind
	// OccurredAt returns the ISO-8601 timestamp to stamp on outbound messages,
	// or "" when the payload carried none.
	OccurredAt() string

	isEvent()
}

// ChatMessage is the nested "message" object of room and private message events.
type ChatMessage struct {
	Username    string
	RoomName    string
	Body        string
	WasReplayed bool
	Timestamp   string
}

// RoomMessageEvent is emitted when a message is posted in a joined room.
type RoomMessageEvent struct {
	Timestamp string
	Message   ChatMessage
}

func (RoomMessageEvent) Kind() EventKind      { return KindRoomMessage }
func (e RoomMessageEvent) OccurredAt() string { return e.Message.Timestamp }
func (RoomMessageEvent) isEvent()             {}

// PrivateMessageEvent is emitted when another user sends a private message.
type PrivateMessageEvent struct {
	Timestamp string
	Message   ChatMessage
}

func (PrivateMessageEvent) Kind() EventKind      { return KindPrivateMessage }
func (e PrivateMessageEvent) OccurredAt() string { return e.Message.Timestamp }
func (PrivateMessageEvent) isEvent()             {}

// TransferDirection distinguishes uploads from downloads for the shared
// transfer-complete event shape.
type TransferDirection string

const (
	DirectionUpload   TransferDirection = "upload"
	DirectionDownload TransferDirection = "download"
)

// Transfer is the nested "transfer" object of file-complete events.
type Transfer struct {
	Username     string
	Size         int64   // bytes
	AverageSpeed float64 // bytes per second
	ElapsedTime  string  // HH:MM:SS[.fraction]
	State        string
	RequestedAt  string // ISO-8601
}

// TransferCompleteEvent covers both UploadFileComplete and DownloadFileComplete.
type TransferCompleteEvent struct {
	Direction     TransferDirection
	Timestamp     string
	LocalFilename string
	Transfer      Transfer
}

// Kind derives the discriminator from the transfer direction.
func (e TransferCompleteEvent) Kind() EventKind {
	if e.Direction == DirectionUpload {
		return KindUploadComplete
	}
	return KindDownloadComplete
}

func (e TransferCompleteEvent) OccurredAt() string { return e.Timestamp }
func (TransferCompleteEvent) isEvent()             {}

// DirectoryCompleteEvent is emitted when every file of a directory download
// has finished.
type DirectoryCompleteEvent struct {
	Timestamp           string
	Username            string
	LocalDirectoryName  string
	RemoteDirectoryName string
}

func (DirectoryCompleteEvent) Kind() EventKind      { return KindDirectoryComplete }
func (e DirectoryCompleteEvent) OccurredAt() string { return e.Timestamp }
func (DirectoryCompleteEvent) isEvent()             {}

// UnrecognizedEvent retains the original payload of any kind the relay has no
// dedicated rendering for, so it can be passed through verbatim.
type UnrecognizedEvent struct {
	RawKind   string
	Timestamp string
	Raw       json.RawMessage
}

func (e UnrecognizedEvent) Kind() EventKind    { return EventKind(e.RawKind) }
func (e UnrecognizedEvent) OccurredAt() string { return e.Timestamp }
func (UnrecognizedEvent) isEvent()             {}

// Compile-time assertions that every variant implements Event.
var (
	_ Event = RoomMessageEvent{}
	_ Event = PrivateMessageEvent{}
	_ Event = TransferCompleteEvent{}
	_ Event = DirectoryCompleteEvent{}
	_ Event = UnrecognizedEvent{}
)

// DecodeEvent parses a raw slskd webhook body into an Event.
//
// The body must be exactly one JSON object; anything else is rejected with a
// validation_invalid_json AppError. Field extraction past that boundary is
// lenient: absent, null or wrongly-typed fields degrade to the Default*
// values (or zero) rather than failing the decode.
func DecodeEvent(raw []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, mapDecodeError(err)
	}
	if doc == nil {
		return nil, NewAppError(ErrCodeValidationInvalidJSON, "request body must be a JSON object", nil)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewAppError(ErrCodeValidationInvalidJSON, "request body must contain a single JSON object", err)
	}

	kind := nonEmptyField(doc, "type", string(KindUnknown))
	timestamp := stringField(doc, "timestamp", "")

	switch EventKind(kind) {
	case KindRoomMessage:
		return RoomMessageEvent{Timestamp: timestamp, Message: decodeChatMessage(objectField(doc, "message"))}, nil

	case KindPrivateMessage:
		return PrivateMessageEvent{Timestamp: timestamp, Message: decodeChatMessage(objectField(doc, "message"))}, nil

	case KindUploadComplete:
		return decodeTransferComplete(doc, DirectionUpload, timestamp), nil

	case KindDownloadComplete:
		return decodeTransferComplete(doc, DirectionDownload, timestamp), nil

	case KindDirectoryComplete:
		return DirectoryCompleteEvent{
			Timestamp:           timestamp,
			Username:            nonEmptyField(doc, "username", DefaultUsername),
			LocalDirectoryName:  stringField(doc, "localDirectoryName", ""),
			RemoteDirectoryName: stringField(doc, "remoteDirectoryName", ""),
		}, nil

	default:
		return UnrecognizedEvent{
			RawKind:   kind,
			Timestamp: timestamp,
			Raw:       json.RawMessage(bytes.TrimSpace(bytes.Clone(raw))),
		}, nil
	}
}

func decodeChatMessage(m map[string]any) ChatMessage {
	return ChatMessage{
		Username:    nonEmptyField(m, "username", DefaultUsername),
		RoomName:    nonEmptyField(m, "roomName", DefaultRoomName),
		Body:        stringField(m, "message", ""),
		WasReplayed: boolField(m, "wasReplayed"),
		Timestamp:   stringField(m, "timestamp", ""),
	}
}

func decodeTransferComplete(doc map[string]any, dir TransferDirection, timestamp string) TransferCompleteEvent {
	t := objectField(doc, "transfer")
	return TransferCompleteEvent{
		Direction:     dir,
		Timestamp:     timestamp,
		LocalFilename: nonEmptyField(doc, "localFilename", DefaultFilename),
		Transfer: Transfer{
			Username:     nonEmptyField(t, "username", DefaultUsername),
			Size:         intField(t, "size"),
			AverageSpeed: floatField(t, "averageSpeed"),
			ElapsedTime:  nonEmptyField(t, "elapsedTime", DefaultUnknown),
			State:        nonEmptyField(t, "state", DefaultUnknown),
			RequestedAt:  stringField(t, "requestedAt", ""),
		},
	}
}

// mapDecodeError translates a json.Decoder error into a structured AppError.
func mapDecodeError(err error) *AppError {
	if errors.Is(err, io.EOF) {
		return NewAppError(ErrCodeValidationInvalidJSON, "request body must not be empty", err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return NewAppErrorWithDetails(ErrCodeValidationInvalidJSON, "malformed JSON in request body", err,
			map[string]any{"offset": syntaxErr.Offset})
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return NewAppErrorWithDetails(ErrCodeValidationInvalidJSON, "request body must be a JSON object", err,
			map[string]any{"got": typeErr.Value})
	}

	return NewAppError(ErrCodeValidationInvalidJSON, "invalid JSON in request body", err)
}

// --- lenient field accessors ---

func objectField(m map[string]any, key string) map[string]any {
	if obj, ok := m[key].(map[string]any); ok {
		return obj
	}
	return map[string]any{}
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

// nonEmptyField is stringField that also treats "" as absent. Used for
// identity fields where an empty value would render as a blank author.
func nonEmptyField(m map[string]any, key, fallback string) string {
	if s := stringField(m, key, ""); s != "" {
		return s
	}
	return fallback
}

func boolField(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// intField reads a non-negative integer. Fractional values are truncated;
// negative, NaN and out-of-range values fall back to 0.
func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return max(n, 0)
		}
		if f, err := v.Float64(); err == nil {
			return truncateNonNegative(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return max(n, 0)
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return truncateNonNegative(f)
		}
	}
	return 0
}

func truncateNonNegative(f float64) int64 {
	if !(f >= 0 && f < math.MaxInt64) {
		return 0
	}
	return int64(f)
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
