package translate

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slskdrelay/internal/types"
)

func roomEvent() types.RoomMessageEvent {
	return types.RoomMessageEvent{
		Timestamp: "2024-01-15T10:30:00Z",
		Message: types.ChatMessage{
			Username:  "alice",
			RoomName:  "jazz",
			Body:      "anyone got the 1959 pressing?",
			Timestamp: "2024-01-15T10:29:58Z",
		},
	}
}

func downloadEvent() types.TransferCompleteEvent {
	return types.TransferCompleteEvent{
		Direction:     types.DirectionDownload,
		Timestamp:     "2024-01-15T10:31:00Z",
		LocalFilename: "/music/song.mp3",
		Transfer: types.Transfer{
			Username:     "bob",
			Size:         2048,
			AverageSpeed: 512,
			ElapsedTime:  "00:00:04",
			State:        "Completed, Succeeded",
			RequestedAt:  "2024-01-15T10:30:00Z",
		},
	}
}

func mustTranslate(t *testing.T, tr *Translator, ev types.Event) types.Message {
	t.Helper()
	msg, ok := tr.Translate(ev).Get()
	require.True(t, ok, "expected a message")
	require.Len(t, msg.Embeds, 1)
	return msg
}

// --- Envelope ---

func TestNew_Defaults(t *testing.T) {
	tr := New(Options{SourceBaseURL: "http://localhost:5030/"})

	assert.Equal(t, DefaultUsername, tr.opts.Username)
	assert.Equal(t, "http://localhost:5030", tr.opts.SourceBaseURL)
	assert.NotEmpty(t, tr.opts.DatetimeLayout)
}

func TestTranslate_EnvelopeIdentity(t *testing.T) {
	tr := New(Options{Username: "relay", AvatarURL: "https://example.com/a.png"})

	msg := mustTranslate(t, tr, downloadEvent())

	assert.Equal(t, "relay", msg.Username)
	assert.Equal(t, "https://example.com/a.png", msg.AvatarURL)
}

// --- Chat ---

func TestTranslate_RoomMessage(t *testing.T) {
	tr := New(Options{SourceBaseURL: "http://slskd.local"})

	msg := mustTranslate(t, tr, roomEvent())
	embed := msg.Embeds[0]

	assert.Equal(t, contentRoomMessage, msg.Content)
	assert.Equal(t, colorRoomMessage, embed.Color)
	assert.Equal(t, "anyone got the 1959 pressing?", embed.Description)
	require.NotNil(t, embed.Author)
	assert.Equal(t, "alice", embed.Author.Name)
	assert.Equal(t, "http://slskd.local/chat", embed.Author.URL)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "in jazz", embed.Footer.Text)
	assert.Equal(t, "2024-01-15T10:29:58Z", embed.Timestamp)
}

func TestTranslate_PrivateMessage(t *testing.T) {
	tr := New(Options{})
	ev := types.PrivateMessageEvent{Message: types.ChatMessage{Username: "carol", Body: "hi"}}

	msg := mustTranslate(t, tr, ev)
	embed := msg.Embeds[0]

	assert.Equal(t, contentPrivateMessage, msg.Content)
	assert.Equal(t, colorPrivateMessage, embed.Color)
	assert.Equal(t, "Private Message", embed.Footer.Text)
	assert.Empty(t, embed.Author.URL, "no author link without a source URL")
}

func TestTranslate_ChatMention(t *testing.T) {
	tr := New(Options{MentionUserID: "123456789"})

	room := mustTranslate(t, tr, roomEvent())
	assert.Equal(t, "<@123456789> "+contentRoomMessage, room.Content)

	private := mustTranslate(t, tr, types.PrivateMessageEvent{Message: types.ChatMessage{Username: "x"}})
	assert.True(t, strings.HasPrefix(private.Content, "<@123456789> "))
}

func TestTranslate_MentionOnlyOnChat(t *testing.T) {
	tr := New(Options{MentionUserID: "123456789"})

	events := []types.Event{
		downloadEvent(),
		types.DirectoryCompleteEvent{Username: "bob", LocalDirectoryName: "/music/album"},
		types.UnrecognizedEvent{RawKind: "Noise", Raw: json.RawMessage(`{"type":"Noise"}`)},
	}
	for _, ev := range events {
		msg := mustTranslate(t, tr, ev)
		assert.NotContains(t, msg.Content, "<@", "kind %s should not ping", ev.Kind())
	}
}

func TestTranslate_ReplayedChatSuppressed(t *testing.T) {
	tr := New(Options{MentionUserID: "1"})

	room := roomEvent()
	room.Message.WasReplayed = true
	assert.True(t, tr.Translate(room).IsAbsent())

	private := types.PrivateMessageEvent{Message: types.ChatMessage{WasReplayed: true}}
	assert.True(t, tr.Translate(private).IsAbsent())
}

// --- Transfers ---

func TestTranslate_DownloadComplete(t *testing.T) {
	tr := New(Options{})

	msg := mustTranslate(t, tr, downloadEvent())
	embed := msg.Embeds[0]

	assert.Equal(t, "⬇️ Download completed successfully!", msg.Content)
	assert.Equal(t, colorDownloadComplete, embed.Color)
	assert.Equal(t, "bob", embed.Author.Name)
	assert.Equal(t, "Requested at 15/01/2024 10:30", embed.Footer.Text)
	assert.Equal(t, "2024-01-15T10:31:00Z", embed.Timestamp)

	assert.Contains(t, embed.Description, "**song.mp3**")
	assert.NotContains(t, embed.Description, "**/music/song.mp3**")
	assert.Contains(t, embed.Description, "📂 *~~/music~~*")
	assert.Contains(t, embed.Description, "2.0 KB")
	assert.Contains(t, embed.Description, "512 B/s")
	assert.Contains(t, embed.Description, "4s")
	assert.Contains(t, embed.Description, "✅ Status: Completed, Succeeded")
}

func TestTranslate_UploadComplete(t *testing.T) {
	tr := New(Options{})
	ev := downloadEvent()
	ev.Direction = types.DirectionUpload

	msg := mustTranslate(t, tr, ev)

	assert.Equal(t, "⬆️ Upload completed successfully!", msg.Content)
	assert.Equal(t, colorUploadComplete, msg.Embeds[0].Color)
}

func TestTranslate_TransferDescriptionLines(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     []string
	}{
		{
			name:     "unix path",
			filename: "/music/Artist/01 - Track.flac",
			want:     []string{"**01 - Track.flac**", "📂 *~~/music/Artist~~*"},
		},
		{
			name:     "windows path",
			filename: `C:\Downloads\Album\track.mp3`,
			want:     []string{"**track.mp3**", `📂 *~~C:\Downloads\Album~~*`},
		},
		{
			name:     "bare filename has no directory line",
			filename: "track.mp3",
			want:     []string{"**track.mp3**"},
		},
	}

	tr := New(Options{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := downloadEvent()
			ev.LocalFilename = tc.filename

			desc := mustTranslate(t, tr, ev).Embeds[0].Description
			for _, w := range tc.want {
				assert.Contains(t, desc, w)
			}
			if len(tc.want) == 1 {
				assert.NotContains(t, desc, "📂")
			}
		})
	}
}

func TestTranslate_TransferDegradedFields(t *testing.T) {
	tr := New(Options{})
	ev := types.TransferCompleteEvent{
		Direction:     types.DirectionDownload,
		LocalFilename: types.DefaultFilename,
		Transfer: types.Transfer{
			Username:    types.DefaultUsername,
			ElapsedTime: types.DefaultUnknown,
			State:       types.DefaultUnknown,
			RequestedAt: "not a date",
		},
	}

	embed := mustTranslate(t, tr, ev).Embeds[0]

	assert.Contains(t, embed.Description, "**Unknown File**")
	assert.Contains(t, embed.Description, "0 B")
	assert.Contains(t, embed.Description, "⏱️ Duration: Unknown")
	assert.Equal(t, "Requested at not a date", embed.Footer.Text)
	assert.Empty(t, embed.Timestamp)
}

func TestTranslate_OversizedTransferSizeRendersZero(t *testing.T) {
	ev, err := types.DecodeEvent([]byte(`{"type":"UploadFileComplete","transfer":{"size":1e30}}`))
	require.NoError(t, err)

	embed := mustTranslate(t, New(Options{}), ev).Embeds[0]

	assert.Contains(t, embed.Description, "📁 Size: 0 B\n")
	assert.NotContains(t, embed.Description, "-")
}

// --- Directory ---

func TestTranslate_DirectoryComplete(t *testing.T) {
	tr := New(Options{})
	ev := types.DirectoryCompleteEvent{
		Timestamp:           "2024-01-15T11:00:00Z",
		Username:            "dave",
		LocalDirectoryName:  "/downloads/Kind of Blue",
		RemoteDirectoryName: `@@music\Miles Davis\Kind of Blue`,
	}

	msg := mustTranslate(t, tr, ev)
	embed := msg.Embeds[0]

	assert.Equal(t, contentDirectoryComplete, msg.Content)
	assert.Equal(t, colorDirectoryComplete, embed.Color)
	assert.Equal(t, "dave", embed.Author.Name)
	assert.Contains(t, embed.Description, "The directory **Kind of Blue** has been downloaded.")
	assert.Contains(t, embed.Description, `📂 *@@music\Miles Davis\Kind of Blue*`)
	assert.Nil(t, embed.Footer)
}

func TestTranslate_DirectoryCompleteNameFallbacks(t *testing.T) {
	tr := New(Options{})

	remoteOnly := mustTranslate(t, tr, types.DirectoryCompleteEvent{RemoteDirectoryName: `share\Album`})
	assert.Contains(t, remoteOnly.Embeds[0].Description, "**Album**")

	neither := mustTranslate(t, tr, types.DirectoryCompleteEvent{})
	assert.Equal(t, "The directory **Unknown** has been downloaded.", neither.Embeds[0].Description)
}

// --- Fallback ---

func TestTranslate_Unrecognized(t *testing.T) {
	tr := New(Options{})
	raw := json.RawMessage(`{"type":"SearchRequested","query":"coltrane","count":3}`)
	ev := types.UnrecognizedEvent{RawKind: "SearchRequested", Timestamp: "2024-01-15T12:00:00Z", Raw: raw}

	msg := mustTranslate(t, tr, ev)
	embed := msg.Embeds[0]

	assert.Equal(t, "📢 Slskd Notification: SearchRequested", msg.Content)
	assert.Equal(t, "SearchRequested", embed.Title)
	assert.Equal(t, colorUnrecognized, embed.Color)
	assert.Equal(t, "Raw notification data", embed.Footer.Text)
	assert.Equal(t, "2024-01-15T12:00:00Z", embed.Timestamp)

	want := "```json\n{\n  \"type\": \"SearchRequested\",\n  \"query\": \"coltrane\",\n  \"count\": 3\n}\n```"
	assert.Equal(t, want, embed.Description)
}

func TestTranslate_UnknownKindTitle(t *testing.T) {
	tr := New(Options{})

	msg := mustTranslate(t, tr, types.UnrecognizedEvent{RawKind: "Unknown", Raw: json.RawMessage(`{}`)})
	assert.Equal(t, "Unknown", msg.Embeds[0].Title)

	nilEvent := mustTranslate(t, tr, nil)
	assert.Equal(t, "Unknown", nilEvent.Embeds[0].Title)
	assert.Equal(t, "```json\n{}\n```", nilEvent.Embeds[0].Description)
}

func TestTranslate_UnrecognizedTruncated(t *testing.T) {
	tr := New(Options{})
	raw, err := json.Marshal(map[string]string{"type": "Big", "blob": strings.Repeat("é", 10000)})
	require.NoError(t, err)

	desc := mustTranslate(t, tr, types.UnrecognizedEvent{RawKind: "Big", Raw: raw}).Embeds[0].Description

	assert.Equal(t, maxDescriptionRunes, utf8.RuneCountInString(desc))
	assert.True(t, strings.HasPrefix(desc, "```json\n"))
	assert.True(t, strings.HasSuffix(desc, "\n…\n```"))
}
