package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

// searchTimeout covers a fetch and a submit through the proxy plus the local query.
const searchTimeout = 3 * time.Minute

type licenseOptions struct {
	Query string
	State string
}

func parseLicenseOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) licenseOptions {
	var lo licenseOptions
	for _, opt := range opts {
		switch opt.Name {
		case "query":
			lo.Query = opt.StringValue()
		case "state":
			lo.State = opt.StringValue()
		}
	}
	lo.State = scrapers.NormalizeState(lo.State)
	if lo.State == "" {
		lo.State = scrapers.CSLBStateCode
	}
	return lo
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleLicense(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Step 1: Defer (ephemeral)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.WithError(err).Warn("Defer failed on /license")
		return
	}

	// Step 2: Extract options
	opts := parseLicenseOptions(i.ApplicationCommandData().Options)
	if len(opts.State) != 2 {
		b.followUp(s, i, "Please provide a 2-letter state code.\nExample: `/license query:123456 state:CA`")
		return
	}

	userID := interactionUserID(i)
	b.log.WithFields(logrus.Fields{"user": userID, "state": opts.State}).Info("/license lookup")

	// Step 3: Search, tracked per user so an older search can't answer last
	gen := b.tracker.Begin(userID, opts.Query)

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	res := b.search.Search(ctx, lookup.Request{
		Query:    opts.Query,
		State:    opts.State,
		ClientIP: "discord:" + userID,
	})

	if !b.tracker.Complete(userID, gen, res) {
		b.followUp(s, i, "A newer `/license` search replaced this one.")
		return
	}

	// Step 4: Reply
	if res.Status == lookup.StatusError {
		if errors.Is(res.Err, scrapers.ErrEmptyQuery) {
			b.followUp(s, i, "Please enter a license number or contractor name.")
			return
		}
		b.followUp(s, i, fmt.Sprintf("The %s license lookup is temporarily unavailable. Please try again later.", opts.State))
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: buildResultEmbeds(res, b.manualLookupURL(res.State)),
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.log.WithError(err).Warn("Follow-up (license) failed")
	}
}

func (b *Bot) manualLookupURL(state string) string {
	if state == scrapers.CSLBStateCode {
		return b.cfg.CSLBURL
	}
	return ""
}
