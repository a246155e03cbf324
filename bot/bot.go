package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"contractor-lookup-go/config"
	"contractor-lookup-go/lookup"
)

type Bot struct {
	cfg     *config.Config
	log     *logrus.Logger
	session *discordgo.Session
	search  *lookup.Service
	tracker *lookup.Tracker
}

func New(cfg *config.Config, log *logrus.Logger, search *lookup.Service, tracker *lookup.Tracker) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("bot: discordgo session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds

	return &Bot{
		cfg:     cfg,
		log:     log,
		session: session,
		search:  search,
		tracker: tracker,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("bot: open session: %w", err)
	}

	b.log.Infof("Bot online as %s", b.session.State.User.Username)

	// Register slash commands
	b.registerCommands()

	// Wait for context cancellation (SIGINT/SIGTERM)
	<-ctx.Done()
	b.log.Info("Shutting down bot...")
	return b.session.Close()
}

// handleInteraction routes all Discord interactions by type.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	switch i.ApplicationCommandData().Name {
	case "license":
		b.handleLicense(s, i)
	}
}

func (b *Bot) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.log.WithError(err).Warn("Follow-up failed")
	}
}
