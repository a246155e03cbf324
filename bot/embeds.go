package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"contractor-lookup-go/alert"
	"contractor-lookup-go/lookup"
)

const (
	colorFound    = 0x2ECC71
	colorExpired  = 0xE74C3C
	colorNotFound = 0x95A5A6
	colorDrift    = 0xE67E22

	// Discord allows ten embeds per message.
	maxEmbeds = 10
)

// buildResultEmbeds renders a search result: one embed per record, or a
// single "no license found" embed.
func buildResultEmbeds(res lookup.Result, manualURL string) []*discordgo.MessageEmbed {
	if res.Status == lookup.StatusNotFound || len(res.Records) == 0 {
		desc := fmt.Sprintf("No license found for **%s** in %s.", res.Query, res.State)
		if manualURL != "" {
			desc += fmt.Sprintf("\n\nManual lookup: %s", manualURL)
		}
		return []*discordgo.MessageEmbed{{
			Title:       "No License Found",
			Description: desc,
			Color:       colorNotFound,
		}}
	}

	source := "Local records"
	if res.Source == lookup.SourceLiveScrape {
		source = "Live from the state board"
	}

	var embeds []*discordgo.MessageEmbed
	for idx, m := range res.Records {
		if idx == maxEmbeds {
			break
		}
		embeds = append(embeds, buildRecordEmbed(m, source))
	}
	return embeds
}

func buildRecordEmbed(m lookup.Match, source string) *discordgo.MessageEmbed {
	color := colorFound
	if m.Derived.ExpirationStatus == lookup.ExpirationExpired {
		color = colorExpired
	}

	years := "N/A"
	if m.Derived.YearsActive != nil {
		years = strconv.Itoa(*m.Derived.YearsActive)
	}

	history := "None on record"
	if len(m.Derived.DisciplinaryHistory) > 0 {
		history = strings.Join(m.Derived.DisciplinaryHistory, "\n")
		if len(history) > 1000 {
			history = history[:1000] + "..."
		}
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "License #", Value: nvl(m.LicenseNumber, "N/A"), Inline: true},
		{Name: "Status", Value: titleCase(nvl(m.Status, "unknown")), Inline: true},
		{Name: "State", Value: nvl(m.State, "N/A"), Inline: true},
		{Name: "Type", Value: nvl(m.LicenseType, "N/A"), Inline: false},
		{Name: "Issued", Value: nvl(m.IssueDate, "N/A"), Inline: true},
		{Name: "Expires", Value: nvl(m.ExpirationDate, "N/A"), Inline: true},
		{Name: "Years Active", Value: years, Inline: true},
		{Name: "Disciplinary History", Value: history, Inline: false},
	}
	if m.Address != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Address", Value: m.Address, Inline: false})
	}
	if m.Phone != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Phone", Value: m.Phone, Inline: true})
	}

	title := m.ContractorName
	if m.BusinessName != "" && m.BusinessName != m.ContractorName {
		title += " (" + m.BusinessName + ")"
	}

	return &discordgo.MessageEmbed{
		Title:  title,
		URL:    m.LicenseURL,
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: source},
	}
}

func buildDriftEmbed(d alert.Drift) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "CSLB search page changed",
		Description: fmt.Sprintf(
			"A live lookup fetched a page without the search form. Searches are falling back to local records.\n\n"+
				"**Page:** %s\n**Reason:** %s",
			d.TargetURL, d.Reason,
		),
		Color:     colorDrift,
		Timestamp: d.At.Format(time.RFC3339),
	}
}

func nvl(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for idx, w := range words {
		words[idx] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
