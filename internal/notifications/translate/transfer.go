package translate

import (
	"fmt"
	"strings"

	"slskdrelay/internal/notifications/format"
	"slskdrelay/internal/types"
)

// transferComplete renders upload and download completions. The two differ
// only in color and lead line; transfers never ping.
func (t *Translator) transferComplete(e types.TransferCompleteEvent) types.Message {
	color, content := colorDownloadComplete, contentDownloadComplete
	if e.Direction == types.DirectionUpload {
		color, content = colorUploadComplete, contentUploadComplete
	}

	embed := types.Embed{
		Color:       color,
		Author:      &types.EmbedAuthor{Name: e.Transfer.Username},
		Description: transferDescription(e),
		Footer: &types.EmbedFooter{
			Text: "Requested at " + format.Datetime(e.Transfer.RequestedAt, t.opts.DatetimeLayout),
		},
		Timestamp: e.Timestamp,
	}

	return t.newMessage(content, embed)
}

func transferDescription(e types.TransferCompleteEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s**\n", format.BaseName(e.LocalFilename))
	if dir := format.DirName(e.LocalFilename); dir != "" {
		fmt.Fprintf(&b, "📂 *~~%s~~*\n", dir)
	}
	fmt.Fprintf(&b, "📁 Size: %s\n", format.Bytes(e.Transfer.Size))
	fmt.Fprintf(&b, "⚡ Speed: %s\n", format.Speed(e.Transfer.AverageSpeed))
	fmt.Fprintf(&b, "⏱️ Duration: %s\n", format.Duration(e.Transfer.ElapsedTime))
	fmt.Fprintf(&b, "✅ Status: %s", e.Transfer.State)

	return b.String()
}
