package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/logger"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the server credentials, polling, display and notification
settings stored in the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a single setting",
	Long: `Stores one setting. Run "wallapocket settings show" for the list of keys.
When the value of server.password or server.client_secret is omitted it is
read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Configure the server and verify the credentials",
	Long: `Prompts for the server URL, API client ID and secret, username and password,
saves them and checks they work by loading the article list.

Create the API client in wallabag under "API clients management".`,
	Args: cobra.NoArgs,
	RunE: runSettingsLogin,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsLoginCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rows := settingsRows(settings)
	for i, row := range rows {
		if settingsService.IsSecret(row[0]) {
			rows[i][1] = maskSecret(row[1])
		}
	}
	return renderKeyValues(cmd.OutOrStdout(), []string{"Key", "Value"}, rows)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case settingsService.IsSecret(key):
		cmd.Printf("%s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidInput, key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if settingsService.IsSecret(key) {
		shown = maskSecret(value)
	}
	newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).Success("%s = %s", key, shown)
	return nil
}

func runSettingsLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || syncEngine == nil {
		return errNotConfigured("settings")
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)
	creds := current.Credentials

	cmd.Println("wallabag Login")
	cmd.Println("==============")
	creds.ServerURL = prompt(cmd, reader, "Server URL", creds.ServerURL)
	creds.ClientID = prompt(cmd, reader, "Client ID", creds.ClientID)
	creds.ClientSecret = promptSecret(cmd, reader, in, "Client secret", creds.ClientSecret)
	creds.Username = prompt(cmd, reader, "Username", creds.Username)
	creds.Password = promptSecret(cmd, reader, in, "Password", creds.Password)

	creds = creds.Normalized()
	logger.Redact(creds.Password, creds.ClientSecret)
	if err := creds.Validate(); err != nil {
		return err
	}
	if err := settingsService.SetCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	current.Credentials = creds
	syncEngine.Reconfigure(current)

	result, err := syncEngine.Refresh(cmd.Context(), true)
	if err != nil {
		return fmt.Errorf("credentials saved but the server rejected them: %w", err)
	}

	newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).Success("Logged in as %s (%d recent articles)", creds.Username, len(result.Added))
	return nil
}

// settingsRows lists every setting as key/value strings.
func settingsRows(s domain.Settings) [][]string {
	minutes := func(d time.Duration) string { return strconv.Itoa(int(d / time.Minute)) }
	seconds := func(d time.Duration) string { return strconv.Itoa(int(d / time.Second)) }

	return [][]string{
		{"server.url", s.Credentials.ServerURL},
		{"server.client_id", s.Credentials.ClientID},
		{"server.client_secret", s.Credentials.ClientSecret},
		{"server.username", s.Credentials.Username},
		{"server.password", s.Credentials.Password},
		{"sync.refresh_interval", minutes(s.RefreshInterval)},
		{"sync.fetch_limit", strconv.Itoa(s.FetchLimit)},
		{"display.max_articles", strconv.Itoa(s.MaxArticles)},
		{"display.show_archive_button", strconv.FormatBool(s.Buttons.Archive)},
		{"display.show_star_button", strconv.FormatBool(s.Buttons.Star)},
		{"display.show_copy_button", strconv.FormatBool(s.Buttons.Copy)},
		{"display.show_delete_button", strconv.FormatBool(s.Buttons.Delete)},
		{"display.show_edit_title_button", strconv.FormatBool(s.Buttons.EditTitle)},
		{"notifications.show_info", strconv.FormatBool(s.Notifications.ShowInfo)},
		{"notifications.show_new_articles", strconv.FormatBool(s.Notifications.ShowNewArticles)},
		{"save.resave_on_failure", strconv.FormatBool(s.ResaveOnFailure)},
		{"http.requests_per_second", strconv.FormatFloat(s.HTTP.RequestsPerSecond, 'g', -1, 64)},
		{"http.burst", strconv.Itoa(s.HTTP.Burst)},
		{"http.timeout_seconds", seconds(s.HTTP.Timeout)},
	}
}

// prompt reads a line, keeping current when the input is empty.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label, current string) string {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}
	if input := readLine(reader); input != "" {
		return input
	}
	return current
}

// promptSecret reads a secret without echo on a terminal.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, in io.Reader, label, current string) string {
	if current != "" {
		cmd.Printf("%s [keep current]: ", label)
	} else {
		cmd.Printf("%s: ", label)
	}

	var input string
	if isTerminal(in) {
		input = readPassword(in)
		cmd.Println()
	} else {
		input = readLine(reader)
	}
	if input != "" {
		return input
	}
	return current
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n') //nolint:errcheck // EOF yields the partial line
	return strings.TrimSpace(input)
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
