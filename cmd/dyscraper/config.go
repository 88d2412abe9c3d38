package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dyscraper/pkg/config"
	"dyscraper/pkg/ui"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage dyscraper configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - DYSCRAPER_* environment variables
  - .env and ~/.dyscraper.env
  - Configuration file
  - Default values`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

func exampleConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Douyin.SignerURL = "http://127.0.0.1:8787/sign"
	cfg.Database.DSN = "user:password@tcp(127.0.0.1:3306)/media?charset=utf8mb4&parseTime=True"
	cfg.Archive.Endpoint = "oss-cn-hangzhou.aliyuncs.com"
	cfg.Creators = []config.CreatorConfig{
		{Name: "example", URL: "https://www.douyin.com/user/MS4wLjABAAAA-example"},
	}
	return cfg
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".dyscraper.yaml"
	}
	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}
	if err := exampleConfig().Save(path); err != nil {
		return err
	}
	ui.PrintSuccess("Wrote " + path)
	ui.PrintInfo("Next", "set douyin.cookie (or run 'dyscraper auth login') and the archive credentials")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, map[string]interface{}{})
	if err != nil {
		return err
	}
	masked := *cfg
	masked.Douyin.Cookie = mask(cfg.Douyin.Cookie)
	masked.Archive.AccessKeySecret = mask(cfg.Archive.AccessKeySecret)
	masked.Database.DSN = mask(cfg.Database.DSN)

	out, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(ui.Out, string(out))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, map[string]interface{}{})
	if err != nil {
		return err
	}
	if err := cfg.RequireCookie(); err != nil {
		ui.PrintWarning(err.Error())
	}
	ui.PrintSuccess(fmt.Sprintf("Configuration is valid (%d creators)", len(cfg.Creators)))
	return nil
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "********"
	default:
		return s[:4] + "..." + s[len(s)-4:]
	}
}
