package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dyscraper/pkg/logger"
	"dyscraper/pkg/scraper"
	"dyscraper/pkg/ui"
)

var (
	// Run flags
	creatorFlags []string
	cookie       string
	signerURL    string
	dbDSN        string
	outputDir    string
	concurrency  int
	noImages     bool
	accountName  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan every creator and archive their pending videos",
	Long: `Scan the listing of every configured creator, record new videos as
pending, then download and archive everything still pending.

Creators come from the creators: list of the config file or from repeated
--creator flags, which replace the configured list.`,
	Example: `  # Use the worklist from .dyscraper.yaml
  dyscraper run

  # Ad-hoc creators
  dyscraper run --creator 'someone=https://www.douyin.com/user/MS4wLjABAAAA...'

  # Share links are resolved too
  dyscraper run --creator 'someone=https://v.douyin.com/iRNBho6u/'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(scraper.PhaseAll)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Only record new videos without downloading",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(scraper.PhaseScan)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Only archive videos recorded by earlier scans",
	Long: `Download and archive every pending video of the configured creators.
No listing requests are made, so pending posts are looked up by the
creator names of the worklist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(scraper.PhaseDownload)
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, scanCmd, downloadCmd} {
		rootCmd.AddCommand(c)
		f := c.Flags()
		f.StringArrayVar(&creatorFlags, "creator", nil, "creator as name=url; repeatable, replaces the configured list")
		f.StringVar(&cookie, "cookie", "", "Douyin web cookie (default: config, DYSCRAPER_COOKIE or stored account)")
		f.StringVarP(&accountName, "account", "a", "", "use a specific stored account")
		f.StringVar(&dbDSN, "db-dsn", "", "database DSN")
		f.IntVar(&concurrency, "concurrency", 0, "creators processed in parallel")
	}
	for _, c := range []*cobra.Command{runCmd, scanCmd} {
		c.Flags().StringVar(&signerURL, "signer-url", "", "URL of the request signing service")
	}
	for _, c := range []*cobra.Command{runCmd, downloadCmd} {
		c.Flags().StringVarP(&outputDir, "output", "o", "", "working directory for downloads")
	}
	runCmd.Flags().BoolVar(&noImages, "no-images", false, "skip pictures of image posts")
}

func runFlags() map[string]interface{} {
	return map[string]interface{}{
		"cookie":      cookie,
		"signer-url":  signerURL,
		"db-dsn":      dbDSN,
		"output":      outputDir,
		"concurrency": concurrency,
		"no-images":   noImages,
		"creators":    creatorFlags,
	}
}

func runPhase(phase scraper.Phase) error {
	cfg, err := loadRunConfig(runFlags(), accountName)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	creators, err := worklist(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, phase, log)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoWithFields("Run starting", map[string]interface{}{
		"version":     version,
		"phase":       phase.String(),
		"creators":    len(creators),
		"concurrency": cfg.Crawl.Concurrency,
	})
	if !quiet {
		ui.PrintInfo("Creators", fmt.Sprintf("%d", len(creators)))
		ui.PrintInfo("Phase", phase.String())
	}

	report, err := a.scraper.Run(ctx, creators, phase)
	printReport(report)
	if err != nil {
		ui.PrintWarning("Interrupted; pending posts will be picked up by the next run")
		return err
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d creators failed", len(failed), len(report.Creators))
	}
	log.Info("Run finished")
	return nil
}
