package bot

import (
	"context"
	"fmt"

	"contractor-lookup-go/alert"
)

// DriftChannel returns an alert channel posting to the configured log
// channel, or nil when none is set.
func (b *Bot) DriftChannel() alert.Channel {
	if b == nil || b.cfg.DiscordLogChannelID == "" {
		return nil
	}
	return &driftChannel{bot: b}
}

type driftChannel struct {
	bot *Bot
}

func (c *driftChannel) Name() string { return "discord" }

func (c *driftChannel) Notify(ctx context.Context, d alert.Drift) error {
	_, err := c.bot.session.ChannelMessageSendEmbed(c.bot.cfg.DiscordLogChannelID, buildDriftEmbed(d))
	if err != nil {
		return fmt.Errorf("bot: post drift alert: %w", err)
	}
	return nil
}
