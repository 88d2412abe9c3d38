package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dyscraper/pkg/auth"
	"dyscraper/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Douyin session",
	Long: `Manage stored Douyin web sessions.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - DYSCRAPER_COOKIE (read-only)

A cookie configured in the config file or DYSCRAPER_COOKIE takes precedence
over stored sessions.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a session cookie",
	Example: `  # Store the default session
  dyscraper auth login

  # Store a second account
  dyscraper auth login backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored sessions",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, statusCmd, logoutCmd)
}

func accountArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return auth.DefaultAccount
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	name := accountArg(args)
	reader := bufio.NewReader(os.Stdin)

	auth.ShowCookieExtractionGuide(ui.Out)

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Fprintf(ui.Out, "Account '%s' already exists. Replace it? (y/N): ", name)
		answer, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			return nil
		}
	}

	fmt.Fprint(ui.Out, "Cookie (hidden): ")
	cookie, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read cookie: %w", err)
	}
	fmt.Fprintln(ui.Out)
	if !strings.Contains(cookie, "=") {
		ui.PrintWarning("That does not look like a cookie header; expected name=value pairs")
	}

	fmt.Fprint(ui.Out, "User agent (Enter for default): ")
	ua, _ := reader.ReadString('\n')

	account := &auth.Account{
		Name:      name,
		Cookie:    cookie,
		UserAgent: strings.TrimSpace(ua),
	}
	if err := manager.Store(account); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Session '%s' stored", name))
	return nil
}

// readSecret reads without echo from a terminal, or a plain line otherwise
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return auth.NormalizeCookie(string(b)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return auth.NormalizeCookie(line), nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	accounts, err := manager.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored sessions. Run 'dyscraper auth login'.")
		return nil
	}
	for _, acc := range accounts {
		s := auth.SanitizeAccount(acc)
		ui.PrintInfo(s.Name, s.Cookie)
		if s.UserAgent != "" {
			fmt.Fprintf(ui.Out, "  user agent: %s\n", s.UserAgent)
		}
		fmt.Fprintf(ui.Out, "  updated:    %s\n", s.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	name := accountArg(args)
	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Session '%s' removed", name))
	return nil
}
