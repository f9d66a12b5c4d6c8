package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"slskdrelay/internal/types"
)

const unrecognizedFooter = "Raw notification data"

// maxDescriptionRunes is Discord's embed description limit.
const maxDescriptionRunes = 4096

const (
	codeFenceOpen  = "```json\n"
	codeFenceClose = "\n```"
	truncatedMark  = "\n…"
)

// unrecognized renders any event without a dedicated layout as its raw,
// indented JSON so nothing slskd sends is silently dropped.
func (t *Translator) unrecognized(ev types.Event) types.Message {
	u, _ := ev.(types.UnrecognizedEvent)
	kind := u.RawKind
	if kind == "" {
		kind = string(types.KindUnknown)
	}

	embed := types.Embed{
		Color:       colorUnrecognized,
		Title:       kind,
		Description: rawBlock(u.Raw),
		Footer:      &types.EmbedFooter{Text: unrecognizedFooter},
		Timestamp:   u.Timestamp,
	}

	return t.newMessage(fmt.Sprintf(contentUnrecognized, kind), embed)
}

// rawBlock indents raw JSON by two spaces, keeping the sender's key order,
// and fences it. Bodies that would exceed the description limit are cut and
// marked with an ellipsis inside the fence.
func rawBlock(raw json.RawMessage) string {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var buf bytes.Buffer
	body := string(raw)
	if err := json.Indent(&buf, raw, "", "  "); err == nil {
		body = buf.String()
	}

	budget := maxDescriptionRunes - utf8.RuneCountInString(codeFenceOpen) - utf8.RuneCountInString(codeFenceClose)
	if utf8.RuneCountInString(body) > budget {
		keep := budget - utf8.RuneCountInString(truncatedMark)
		body = string([]rune(body)[:keep]) + truncatedMark
	}

	return codeFenceOpen + body + codeFenceClose
}
