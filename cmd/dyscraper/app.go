package main

import (
	"fmt"
	"io"
	"os"

	"dyscraper/pkg/archive"
	"dyscraper/pkg/auth"
	"dyscraper/pkg/config"
	"dyscraper/pkg/database"
	"dyscraper/pkg/douyin"
	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/models"
	"dyscraper/pkg/ratelimit"
	"dyscraper/pkg/scraper"
	"dyscraper/pkg/ui"
)

// loadRunConfig loads configuration and fills the cookie from the
// credential stores when none is configured
func loadRunConfig(flags map[string]interface{}, account string) (*config.Config, error) {
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if cfg.Douyin.Cookie == "" {
		applyStoredAccount(cfg, account)
	}
	if err := cfg.RequireCookie(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyStoredAccount(cfg *config.Config, name string) {
	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Debug("Credential stores unavailable")
		return
	}

	var acc *auth.Account
	if name != "" {
		acc, err = manager.Retrieve(name)
	} else {
		acc, err = manager.RetrieveDefault()
	}
	if err != nil {
		logger.WithError(err).Debug("No stored account")
		return
	}

	cfg.Douyin.Cookie = acc.Cookie
	if acc.UserAgent != "" && cfg.Douyin.UserAgent == config.DefaultUserAgent {
		cfg.Douyin.UserAgent = acc.UserAgent
	}
}

// worklist converts configured creators, failing on an empty list
func worklist(cfg *config.Config) ([]models.Creator, error) {
	if len(cfg.Creators) == 0 {
		return nil, errs.New(errs.ErrorTypeInvalidInput,
			"no creators configured; add a creators: list to the config or pass --creator name=url")
	}
	creators := make([]models.Creator, 0, len(cfg.Creators))
	for _, c := range cfg.Creators {
		creators = append(creators, models.Creator{Name: c.Name, ProfileURL: c.URL})
	}
	return creators, nil
}

// app holds the resources of one run
type app struct {
	scraper *scraper.Scraper
	close   func()
}

// newApp wires every stage the phase needs. Scanning needs the signing
// service; downloading needs the archive backend.
func newApp(cfg *config.Config, phase scraper.Phase, log logger.Logger) (*app, error) {
	if phase != scraper.PhaseDownload && cfg.Douyin.SignerURL == "" {
		return nil, errs.New(errs.ErrorTypePrecondition,
			"no signing service configured; set douyin.signer_url or DYSCRAPER_SIGNER_URL")
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePrecondition, "database unavailable", err)
	}
	repo := database.NewRepository(db)

	var arch archive.Archiver
	if phase != scraper.PhaseScan {
		arch, err = archive.New(cfg.Archive)
		if err != nil {
			_ = database.Close(db)
			return nil, errs.Wrap(errs.ErrorTypePrecondition, "archive backend unavailable", err)
		}
	}

	client := douyin.NewClient(douyin.ClientOptions{
		Cookie:    cfg.Douyin.Cookie,
		UserAgent: cfg.Douyin.UserAgent,
	}, log)
	builder := douyin.NewRequestBuilder(douyin.NewRemoteSigner(cfg.Douyin.SignerURL), client.UserAgent())
	layout := archive.LayoutFromConfig(cfg.Archive)

	walker := scraper.NewWalker(client, builder,
		ratelimit.NewRandomDelay(cfg.Crawl.MinDelay, cfg.Crawl.MaxDelay),
		scraper.WalkerOptions{
			BaseURL:  cfg.Douyin.BaseURL,
			PageSize: cfg.Crawl.PageSize,
			Layout:   layout,
		}, log)

	var progress io.Writer = os.Stderr
	if quiet {
		progress = nil
	}
	fetcher := scraper.NewFetcher(client, arch, repo, scraper.FetcherOptions{
		Layout:   layout,
		Limiter:  ratelimit.ForDownloads(cfg.Download.RequestsPerSecond),
		Progress: progress,
	}, log)

	s := scraper.New(douyin.NewResolver(client), walker, scraper.NewRecorder(repo, log), repo, fetcher, scraper.Options{
		OutputDir:   cfg.Download.OutputDir,
		Concurrency: cfg.Crawl.Concurrency,
		Images:      cfg.Download.Images,
	}, log)

	return &app{
		scraper: s,
		close: func() {
			if err := database.Close(db); err != nil {
				log.WithError(err).Warn("Failed to close database")
			}
		},
	}, nil
}

// printReport writes the per-creator summary table
func printReport(report *scraper.RunReport) {
	fmt.Fprintln(ui.Out)
	for _, r := range report.Creators {
		s := r.Summary()
		if r.Err != nil {
			ui.PrintError(fmt.Sprintf("✗ %s", r.Creator.Name), r.Err)
			continue
		}
		line := fmt.Sprintf("✓ %s", r.Creator.Name)
		switch report.Phase {
		case scraper.PhaseScan:
			line += fmt.Sprintf("  new %d  known %d  failed %d", s.Inserted, s.Duplicates, s.Failed)
		case scraper.PhaseDownload:
			line += fmt.Sprintf("  archived %d  skipped %d", s.Downloaded, s.Skipped)
		default:
			line += fmt.Sprintf("  new %d  known %d  archived %d  skipped %d  pictures %d",
				s.Inserted, s.Duplicates, s.Downloaded, s.Skipped, s.Pictures)
		}
		ui.PrintSuccess(line)
	}
	ui.PrintInfo("Elapsed", ui.FormatDuration(report.Duration))
}
