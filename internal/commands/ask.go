package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"clicktap-chat/internal/conversation"
)

var askSourcesFlag bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Send a single question and print the reply",
	Long: `Send one message to the chat proxy and print the reply.

Exits with status 1 when the reply is an error line
("Error: ..."), so the command can be used in scripts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := conversation.NewClient(chatURL())
		return runAsk(cmd.Context(), client, args[0], askSourcesFlag, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	askCmd.Flags().BoolVarP(&askSourcesFlag, "sources", "s", false, "Print reply sources when present")
}

func runAsk(ctx context.Context, sender conversation.Sender, question string, showSources bool, stdout, stderr io.Writer) error {
	text := strings.TrimSpace(question)
	if text == "" {
		return errors.New("question is empty")
	}

	resp, err := sender.Send(ctx, text)
	reply := conversation.Interpret(resp, err)
	if reply.Failed {
		fmt.Fprintln(stderr, reply.Content)
		return errReplyFailed
	}

	fmt.Fprintln(stdout, reply.Content)
	if showSources && len(reply.Sources) > 0 {
		fmt.Fprintln(stdout, "Sources: "+strings.Join(reply.Sources, ", "))
	}
	return nil
}
