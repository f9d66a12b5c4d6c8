package translate

import (
	"github.com/samber/mo"

	"slskdrelay/internal/types"
)

const privateMessageFooter = "Private Message"

func (t *Translator) roomMessage(e types.RoomMessageEvent) mo.Option[types.Message] {
	if e.Message.WasReplayed {
		return mo.None[types.Message]()
	}
	embed := t.chatEmbed(e.Message, colorRoomMessage, "in "+e.Message.RoomName)
	return mo.Some(t.newMessage(t.withMention(contentRoomMessage), embed))
}

func (t *Translator) privateMessage(e types.PrivateMessageEvent) mo.Option[types.Message] {
	if e.Message.WasReplayed {
		return mo.None[types.Message]()
	}
	embed := t.chatEmbed(e.Message, colorPrivateMessage, privateMessageFooter)
	return mo.Some(t.newMessage(t.withMention(contentPrivateMessage), embed))
}

// chatEmbed renders a chat message body verbatim, attributed to its sender.
func (t *Translator) chatEmbed(m types.ChatMessage, color int, footer string) types.Embed {
	author := &types.EmbedAuthor{Name: m.Username}
	if t.opts.SourceBaseURL != "" {
		author.URL = t.opts.SourceBaseURL + "/chat"
	}

	return types.Embed{
		Color:       color,
		Author:      author,
		Description: m.Body,
		Footer:      &types.EmbedFooter{Text: footer},
		Timestamp:   m.Timestamp,
	}
}
