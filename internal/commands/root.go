// Package commands provides the clicktap command-line client.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultChatURL = "http://localhost:8080"

var (
	// Global flags
	urlFlag string

	// Version info (set at build time)
	Version = "0.1.0"
)

// errReplyFailed marks a completed exchange whose reply is an error line.
// The line has already been printed, so Execute only sets the exit code.
var errReplyFailed = errors.New("reply failed")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clicktap",
	Short: "Terminal client for the Clicktap chat proxy",
	Long: `clicktap talks to a Clicktap chat proxy over POST /api/chat. The upstream
service token stays on the server; the client only sends the message text.

Examples:
  clicktap chat                              Start an interactive chat
  clicktap chat --variant kb --sources       Knowledge-base chat with sources
  clicktap ask "Where is the VPN guide?"     Send a single question
  clicktap ask "hi" --url https://chat.internal`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReplyFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&urlFlag, "url", "u", "",
		"Chat proxy base URL (default $CLICKTAP_CHAT_URL or "+defaultChatURL+")")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}

// chatURL returns the proxy base URL from the flag, the environment, or the default.
func chatURL() string {
	if u := strings.TrimSpace(urlFlag); u != "" {
		return u
	}
	if u := strings.TrimSpace(os.Getenv("CLICKTAP_CHAT_URL")); u != "" {
		return u
	}
	return defaultChatURL
}
