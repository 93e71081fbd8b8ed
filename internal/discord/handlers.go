package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own messages
	if m.Author.ID == s.State.User.ID {
		return
	}

	// Only respond to DMs or when mentioned
	isDM := m.GuildID == ""
	isMentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			isMentioned = true
			break
		}
	}
	if !isDM && !isMentioned {
		return
	}

	if isDM {
		b.mu.Lock()
		b.dmChannel = m.ChannelID
		b.mu.Unlock()
	}

	content := strings.TrimSpace(stripMention(m.Content, s.State.User.ID))
	if content == "" {
		return
	}

	s.ChannelTyping(m.ChannelID)

	reply, err := b.dispatch(context.Background(), content)
	if err != nil {
		log.Printf("handling %q: %v", content, err)
		s.ChannelMessageSend(m.ChannelID, "Something went wrong. Try again?")
		return
	}

	// Discord has a 2000 char limit; split if needed
	for _, chunk := range splitMessage(reply, 2000) {
		s.ChannelMessageSend(m.ChannelID, chunk)
	}
}

// dispatch maps a handful of keywords onto workout actions; anything
// else is a freeform message. No language understanding beyond this.
func (b *Bot) dispatch(ctx context.Context, content string) (string, error) {
	switch strings.ToLower(content) {
	case "done", "did it", "completed":
		return b.app.Complete(ctx, "", "")
	case "skip", "skipped", "skipping":
		return b.app.Skip(ctx)
	case "missed":
		return b.app.Miss(ctx)
	case "status", "streak":
		return b.statusReply()
	default:
		return b.app.Say(ctx, content)
	}
}

func (b *Bot) statusReply() (string, error) {
	state, band, err := b.app.State()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Streak: %d day(s) (%s). Next workout: %s",
		state.Current, band, b.app.NextWorkout()), nil
}

func stripMention(s, userID string) string {
	s = strings.ReplaceAll(s, "<@"+userID+">", "")
	s = strings.ReplaceAll(s, "<@!"+userID+">", "")
	return s
}

func splitMessage(s string, maxLen int) []string {
	if len(s) <= maxLen {
		return []string{s}
	}
	var chunks []string
	for len(s) > 0 {
		end := maxLen
		if end > len(s) {
			end = len(s)
		}
		// Try to split at a newline
		if idx := strings.LastIndex(s[:end], "\n"); idx > 0 {
			end = idx + 1
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}
