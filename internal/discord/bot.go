package discord

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/kerri/buddy/internal/session"
)

type Bot struct {
	dg  *discordgo.Session
	app *session.Session

	mu        sync.Mutex
	dmChannel string // last DM channel, used for reminder delivery
}

func NewBot(token string, app *session.Session) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating Discord session: %w", err)
	}

	bot := &Bot{dg: dg, app: app}
	dg.AddHandler(bot.onMessage)
	dg.Identify.Intents = discordgo.IntentsDirectMessages | discordgo.IntentsGuildMessages

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("opening Discord connection: %w", err)
	}

	log.Printf("Discord bot connected as %s", dg.State.User.Username)
	return bot, nil
}

func (b *Bot) Close() {
	b.dg.Close()
}

// Send delivers content to the most recent DM channel. Returns an
// error until the user has messaged the bot at least once.
func (b *Bot) Send(content string) error {
	b.mu.Lock()
	channel := b.dmChannel
	b.mu.Unlock()
	if channel == "" {
		return fmt.Errorf("no DM channel yet")
	}
	for _, chunk := range splitMessage(content, 2000) {
		if _, err := b.dg.ChannelMessageSend(channel, chunk); err != nil {
			return fmt.Errorf("sending DM: %w", err)
		}
	}
	return nil
}
