package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"slskdrelay/internal/types"
)

// maxErrorBodyLen caps how much of a response body ends up in errors and logs.
const maxErrorBodyLen = 200

// ToWebhookParams converts a Message into Discord's execute-webhook body.
// Only user mentions are parsed, so the configured ping works while text
// relayed from other peers can never trigger @everyone or role pings.
func ToWebhookParams(msg types.Message) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content:   msg.Content,
		Username:  msg.Username,
		AvatarURL: msg.AvatarURL,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}

	for _, e := range msg.Embeds {
		params.Embeds = append(params.Embeds, toMessageEmbed(e))
	}

	return params
}

func toMessageEmbed(e types.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
		Timestamp:   e.Timestamp,
	}
	if e.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: e.Author.Name, URL: e.Author.URL}
	}
	if e.Footer != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text}
	}
	return embed
}

// ValidateResponse checks the Discord webhook response. Discord returns 204
// No Content on success for webhook messages and a JSON body with a
// "message" field on failure.
func ValidateResponse(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var resp struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		if resp.Code != 0 {
			return fmt.Errorf("discord: API error %d: %s", resp.Code, resp.Message)
		}
		return fmt.Errorf("discord: API error: %s", resp.Message)
	}

	return fmt.Errorf("discord: unexpected status %d: %s", statusCode, truncateBody(body))
}

// truncateBody shortens a response body for inclusion in errors and logs.
func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyLen {
		return string(body[:maxErrorBodyLen]) + "..."
	}
	return string(body)
}
