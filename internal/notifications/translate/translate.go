// Package translate maps inbound slskd events onto outbound chat messages.
//
// Translation is pure: a Translator holds only the options injected at
// construction and produces a fresh types.Message per call. It never fails;
// absent fields were already defaulted by types.DecodeEvent, and the
// formatting helpers degrade softly. The only "no output" case is a replayed
// chat message, expressed as mo.None.
package translate

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"slskdrelay/internal/notifications/format"
	"slskdrelay/internal/types"
)

// DefaultUsername is the display name messages are posted under.
const DefaultUsername = "Slskd"

// Embed palette (decimal RGB). Each kind gets its own color.
const (
	colorRoomMessage       = 0x5865F2 // Blurple
	colorPrivateMessage    = 0x3498DB // Blue
	colorUploadComplete    = 0x2ECC71 // Green
	colorDownloadComplete  = 0x206694 // Dark blue
	colorDirectoryComplete = 0x9B59B6 // Purple
	colorUnrecognized      = 0x95A5A6 // Gray
)

// Lead lines shown as the message content above the embed.
const (
	contentRoomMessage       = "💬 You've received a room message"
	contentPrivateMessage    = "📩 You've received a private message"
	contentUploadComplete    = "⬆️ Upload completed successfully!"
	contentDownloadComplete  = "⬇️ Download completed successfully!"
	contentDirectoryComplete = "📁 Directory download completed!"
	contentUnrecognized      = "📢 Slskd Notification: %s"
)

// Options configures a Translator. The glue layer reads these from the
// environment once at startup; this package never does.
type Options struct {
	// MentionUserID, when set, prefixes chat notifications with a user ping.
	MentionUserID string
	// SourceBaseURL, when set, links chat authors to the slskd web UI.
	SourceBaseURL string
	// Username overrides DefaultUsername.
	Username string
	// AvatarURL is passed through on every message; optional.
	AvatarURL string
	// DatetimeLayout renders transfer request times; defaults to
	// format.DefaultDatetimeLayout.
	DatetimeLayout string
}

// Translator converts slskd events into outbound messages.
type Translator struct {
	opts Options
}

// New creates a Translator with the given options, filling defaults.
func New(opts Options) *Translator {
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.DatetimeLayout == "" {
		opts.DatetimeLayout = format.DefaultDatetimeLayout
	}
	opts.SourceBaseURL = strings.TrimRight(opts.SourceBaseURL, "/")
	return &Translator{opts: opts}
}

// Translate maps one event to zero or one message. Kinds without a dedicated
// renderer (including a nil event) fall through to the raw passthrough
// renderer, so only suppressed chat replays yield mo.None.
func (t *Translator) Translate(ev types.Event) mo.Option[types.Message] {
	switch e := ev.(type) {
	case types.RoomMessageEvent:
		return t.roomMessage(e)
	case types.PrivateMessageEvent:
		return t.privateMessage(e)
	case types.TransferCompleteEvent:
		return mo.Some(t.transferComplete(e))
	case types.DirectoryCompleteEvent:
		return mo.Some(t.directoryComplete(e))
	default:
		return mo.Some(t.unrecognized(ev))
	}
}

// newMessage builds the envelope shared by every kind.
func (t *Translator) newMessage(content string, embed types.Embed) types.Message {
	return types.Message{
		Username:  t.opts.Username,
		AvatarURL: t.opts.AvatarURL,
		Content:   content,
		Embeds:    []types.Embed{embed},
	}
}

// withMention prepends the configured user ping to content.
func (t *Translator) withMention(content string) string {
	if t.opts.MentionUserID == "" {
		return content
	}
	return fmt.Sprintf("<@%s> %s", t.opts.MentionUserID, content)
}
