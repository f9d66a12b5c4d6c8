package types

// Message is the platform-neutral outbound notification produced by the
// translator. The Discord sink maps it onto the webhook wire format; nothing
// upstream of the sink knows about that format.
type Message struct {
	Username  string // display name the message is posted under
	AvatarURL string
	Content   string // plain text line above the embeds; may carry a mention
	Embeds    []Embed
}

// Embed is a rich content block within a Message.
type Embed struct {
	Color       int // decimal RGB
	Title       string
	Author      *EmbedAuthor
	Description string
	Footer      *EmbedFooter
	Timestamp   string // ISO-8601 passthrough; "" means none
}

// EmbedAuthor is the author line of an embed. URL is optional.
type EmbedAuthor struct {
	Name string
	URL  string
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string
}
