package webhook

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slskdrelay/internal/types"
)

func TestToWebhookParams_Envelope(t *testing.T) {
	msg := testMessage()
	msg.AvatarURL = "https://example.com/a.png"

	params := ToWebhookParams(msg)

	assert.Equal(t, "Slskd", params.Username)
	assert.Equal(t, "https://example.com/a.png", params.AvatarURL)
	assert.Equal(t, msg.Content, params.Content)
	require.NotNil(t, params.AllowedMentions)
	assert.Equal(t, []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers}, params.AllowedMentions.Parse)
}

func TestToWebhookParams_Embed(t *testing.T) {
	params := ToWebhookParams(types.Message{
		Embeds: []types.Embed{{
			Color:       0x5865F2,
			Title:       "RoomMessageReceived",
			Author:      &types.EmbedAuthor{Name: "alice", URL: "http://slskd.local/chat"},
			Description: "hello",
			Footer:      &types.EmbedFooter{Text: "in jazz"},
			Timestamp:   "2024-01-15T10:30:00Z",
		}},
	})

	require.Len(t, params.Embeds, 1)
	e := params.Embeds[0]
	assert.Equal(t, discordgo.EmbedTypeRich, e.Type)
	assert.Equal(t, 0x5865F2, e.Color)
	assert.Equal(t, "RoomMessageReceived", e.Title)
	assert.Equal(t, "hello", e.Description)
	assert.Equal(t, "2024-01-15T10:30:00Z", e.Timestamp)
	require.NotNil(t, e.Author)
	assert.Equal(t, "alice", e.Author.Name)
	assert.Equal(t, "http://slskd.local/chat", e.Author.URL)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "in jazz", e.Footer.Text)
}

func TestToWebhookParams_OmitsEmptyFields(t *testing.T) {
	params := ToWebhookParams(types.Message{
		Username: "Slskd",
		Content:  "📁 Directory download completed!",
		Embeds:   []types.Embed{{Color: 0x9B59B6, Description: "x"}},
	})

	data, err := json.Marshal(params)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.NotContains(t, wire, "avatar_url")

	embed := wire["embeds"].([]any)[0].(map[string]any)
	assert.NotContains(t, embed, "footer")
	assert.NotContains(t, embed, "author")
	assert.NotContains(t, embed, "timestamp")
	assert.NotContains(t, embed, "title")
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"204 no content", 204, "", ""},
		{"200 with body", 200, `{"id":"1"}`, ""},
		{"discord error with code", 404, `{"message": "Unknown Webhook", "code": 10015}`, "discord: API error 10015: Unknown Webhook"},
		{"discord error without code", 429, `{"message": "You are being rate limited."}`, "discord: API error: You are being rate limited."},
		{"plain text body", 502, "Bad Gateway", "discord: unexpected status 502: Bad Gateway"},
		{"empty body", 500, "", "discord: unexpected status 500: "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateResponse(tc.status, []byte(tc.body))
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}

func TestTruncateBody(t *testing.T) {
	assert.Equal(t, "short", truncateBody([]byte("short")))

	long := strings.Repeat("a", 500)
	got := truncateBody([]byte(long))
	assert.Len(t, got, maxErrorBodyLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
