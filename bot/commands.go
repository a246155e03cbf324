package bot

import (
	"github.com/bwmarrin/discordgo"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "license",
		Description: "Look up a contractor license by number or name",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "License number or contractor/business name", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "state", Description: "2-letter state code (default CA; only CA is checked live)", Required: false},
		},
	},
}

// registerCommands registers all slash commands with Discord. An empty
// guild ID registers them globally.
func (b *Bot) registerCommands() {
	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.DiscordGuildID, cmd)
		if err != nil {
			b.log.WithError(err).Errorf("Cannot register command %s", cmd.Name)
		}
	}

	b.log.WithField("guild", b.cfg.DiscordGuildID).Info("Slash commands registered")
}
