package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/ui"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "dyscraper",
	Short: "Archive Douyin creators' videos into object storage",
	Long: `dyscraper walks the post listings of a worklist of Douyin creators,
records every video in a relational table and archives the video files
into object storage (Aliyun OSS or S3).

Each run is resumable: a post is only marked done after its upload
succeeded, so running again picks up whatever is still pending.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !quiet && cmd.Name() != "help" && cmd.Name() != "version" {
			ui.PrintBanner()
		}
	},
}

// Execute runs the root command. Precondition failures exit with 2,
// everything else with 1.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if errs.IsFatal(err) {
		ui.PrintError("Cannot start", err)
		os.Exit(2)
	}
	ui.PrintError("Error", err)
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.dyscraper.yaml or ~/.config/dyscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the banner and progress output")

	rootCmd.SetVersionTemplate(`dyscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
