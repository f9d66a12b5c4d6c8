package translate

import (
	"fmt"

	"slskdrelay/internal/notifications/format"
	"slskdrelay/internal/types"
)

func (t *Translator) directoryComplete(e types.DirectoryCompleteEvent) types.Message {
	name := format.BaseName(e.LocalDirectoryName)
	if name == "" {
		name = format.BaseName(e.RemoteDirectoryName)
	}
	if name == "" {
		name = types.DefaultUnknown
	}

	description := fmt.Sprintf("The directory **%s** has been downloaded.", name)
	if e.RemoteDirectoryName != "" {
		description += fmt.Sprintf("\n📂 *%s*", e.RemoteDirectoryName)
	}

	embed := types.Embed{
		Color:       colorDirectoryComplete,
		Author:      &types.EmbedAuthor{Name: e.Username},
		Description: description,
		Timestamp:   e.Timestamp,
	}

	return t.newMessage(contentDirectoryComplete, embed)
}
