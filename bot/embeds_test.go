package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractor-lookup-go/alert"
	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

func TestParseLicenseOptions(t *testing.T) {
	opts := parseLicenseOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "Acme Builders"},
		{Name: "state", Type: discordgo.ApplicationCommandOptionString, Value: " nv "},
	})
	assert.Equal(t, licenseOptions{Query: "Acme Builders", State: "NV"}, opts)

	opts = parseLicenseOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "123456"},
	})
	assert.Equal(t, "CA", opts.State, "state defaults to CA")
}

func TestInteractionUserID(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "guild-user"}},
	}}
	assert.Equal(t, "guild-user", interactionUserID(i))

	i = &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "dm-user"}}}
	assert.Equal(t, "dm-user", interactionUserID(i))
}

func TestBuildResultEmbedsNotFound(t *testing.T) {
	embeds := buildResultEmbeds(lookup.Result{Status: lookup.StatusNotFound, Query: "Nobody", State: "CA"}, "https://cslb.example")
	require.Len(t, embeds, 1)
	assert.Equal(t, "No License Found", embeds[0].Title)
	assert.Contains(t, embeds[0].Description, "**Nobody**")
	assert.Contains(t, embeds[0].Description, "https://cslb.example")

	embeds = buildResultEmbeds(lookup.Result{Status: lookup.StatusNotFound, Query: "x", State: "TX"}, "")
	assert.NotContains(t, embeds[0].Description, "Manual lookup")
}

func TestBuildResultEmbedsRecords(t *testing.T) {
	years := 22
	res := lookup.Result{
		Status: lookup.StatusFound,
		Source: lookup.SourceLiveScrape,
		Records: []lookup.Match{{
			LicenseRecord: scrapers.LicenseRecord{
				ContractorName: "JOHN Q SAMPLE",
				BusinessName:   "SAMPLE BUILDERS INC",
				LicenseNumber:  "123456",
				Status:         "expired",
				State:          "CA",
			},
			Derived: lookup.Derived{
				YearsActive:         &years,
				ExpirationStatus:    lookup.ExpirationExpired,
				DisciplinaryHistory: []string{"citation 2019"},
			},
		}},
	}

	embeds := buildResultEmbeds(res, "")
	require.Len(t, embeds, 1)
	e := embeds[0]
	assert.Equal(t, "JOHN Q SAMPLE (SAMPLE BUILDERS INC)", e.Title)
	assert.Equal(t, colorExpired, e.Color)
	assert.Equal(t, "Live from the state board", e.Footer.Text)

	values := map[string]string{}
	for _, f := range e.Fields {
		assert.NotEmpty(t, f.Value, "Discord rejects empty field %s", f.Name)
		values[f.Name] = f.Value
	}
	assert.Equal(t, "Expired", values["Status"])
	assert.Equal(t, "22", values["Years Active"])
	assert.Equal(t, "citation 2019", values["Disciplinary History"])
	assert.Equal(t, "N/A", values["Issued"])
}

func TestBuildResultEmbedsCapsAtTen(t *testing.T) {
	var matches []lookup.Match
	for i := 0; i < 12; i++ {
		matches = append(matches, lookup.Match{LicenseRecord: scrapers.LicenseRecord{ContractorName: "A"}})
	}
	embeds := buildResultEmbeds(lookup.Result{Status: lookup.StatusFound, Source: lookup.SourceLocalDatabase, Records: matches}, "")
	assert.Len(t, embeds, maxEmbeds)
	assert.Equal(t, "Local records", embeds[0].Footer.Text)
}

func TestBuildDriftEmbed(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	e := buildDriftEmbed(alert.Drift{TargetURL: "https://cslb.example", Reason: "marker missing", At: at})
	assert.Contains(t, e.Description, "https://cslb.example")
	assert.Contains(t, e.Description, "marker missing")
	assert.Equal(t, "2026-10-19T08:00:00Z", e.Timestamp)
}

func TestTitleCaseAndNvl(t *testing.T) {
	assert.Equal(t, "Active", titleCase("active"))
	assert.Equal(t, "Work Comp Suspended", titleCase("WORK  comp suspended"))
	assert.Equal(t, "N/A", nvl("  ", "N/A"))
}

func TestDriftChannelRequiresLogChannel(t *testing.T) {
	var b *Bot
	assert.Nil(t, b.DriftChannel())
}
