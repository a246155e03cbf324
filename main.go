package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"contractor-lookup-go/alert"
	"contractor-lookup-go/api"
	"contractor-lookup-go/api/websocket"
	"contractor-lookup-go/bot"
	"contractor-lookup-go/config"
	"contractor-lookup-go/db"
	"contractor-lookup-go/email"
	"contractor-lookup-go/logger"
	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
	"contractor-lookup-go/scrapers/render"
	"contractor-lookup-go/sms"
	"contractor-lookup-go/tlsclient"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("Starting contractor license lookup...")

	database, err := db.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Database init failed")
	}
	defer database.Close()

	tlsClient := tlsclient.New(cfg.RenderTimeoutSecs)
	renderer := render.NewClient(cfg.ScrapingBeeAPIKey, cfg.ScrapingBeeBaseURL, tlsClient.NewSession)
	if !renderer.Configured() {
		log.Warn("SCRAPINGBEE_API_KEY not set, live search disabled (local database only)")
	}

	// Drift alerts: email and SMS now, Discord once the bot exists
	mailer := email.NewClient(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName, log)
	if mailer != nil {
		log.Info("Resend email client configured")
	}
	texter := sms.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, log)
	if texter != nil {
		log.Info("Twilio SMS client configured")
	}
	drift := alert.NewDriftNotifier(alert.DefaultInterval, log,
		alert.NewEmailChannel(mailer, cfg.AlertEmail),
		alert.NewSMSChannel(texter, cfg.AlertSMSTo),
	)

	cslb := scrapers.NewCSLBScraper(renderer, cfg.CSLBURL, render.Options{
		RenderJS:     true,
		Wait:         cfg.RenderWait(),
		PremiumProxy: cfg.PremiumProxy,
		UserAgent:    cfg.RenderUserAgent,
	}, drift, log)
	registry := scrapers.NewRegistry(cslb)

	audit := lookup.NewAuditQueue(database, cfg.AuditQueueSize, log)
	search := lookup.NewService(registry, database, audit, cfg.SearchLimit, log)

	// Create WebSocket hub for the live search feed
	hub := websocket.NewHub(log)
	search.SetObserver(websocket.NewSearchFeed(hub))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	var wg sync.WaitGroup
	if cfg.DiscordToken != "" {
		b, err := bot.New(cfg, log, search, lookup.NewTracker())
		if err != nil {
			log.WithError(err).Fatal("Bot init failed")
		}
		drift.AddChannel(b.DriftChannel())

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Run(ctx); err != nil {
				log.WithError(err).Error("Bot error")
			}
		}()
	}

	apiServer := api.NewServer(cfg, log, database, search, hub)
	apiServer.Start(ctx)

	wg.Wait()
	audit.Close()
	drift.Wait()
	log.WithField("proxy_calls", renderer.CallsIssued()).Info("Shutdown complete")
}
