package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clicktap-chat/internal/conversation"
	"clicktap-chat/internal/render"
	"clicktap-chat/internal/tui"
)

var (
	variantFlag string
	sourcesFlag bool
	plainFlag   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the proxy.

A terminal gets the full-screen view. Piped input falls back to a
line-by-line prompt; type 'exit' or 'quit' to end it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := conversation.OptionsFor(variantFlag)
		if err != nil {
			return err
		}
		opts = opts.WithSources(sourcesFlag)

		session := conversation.NewSession(opts)
		client := conversation.NewClient(chatURL())

		if !plainFlag && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
			return tui.Run(session, client)
		}
		return runLineChat(cmd.Context(), session, client, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVar(&variantFlag, "variant", conversation.VariantShell,
		"Chat preset: "+conversation.VariantShell+" or "+conversation.VariantKnowledgeBase)
	chatCmd.Flags().BoolVarP(&sourcesFlag, "sources", "s", false, "Show reply sources")
	chatCmd.Flags().BoolVar(&plainFlag, "plain", false, "Use the line prompt even on a terminal")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runLineChat drives a session from a line reader. Blank lines are ignored
// the same way the full-screen view ignores them.
func runLineChat(ctx context.Context, session *conversation.Session, sender conversation.Sender, in io.Reader, out io.Writer) error {
	opts := session.Options()
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	title := opts.Title
	if opts.Badge != "" {
		title += " [" + opts.Badge + "]"
	}
	fmt.Fprintln(out, boldGreen(title))
	if opts.Subtitle != "" {
		fmt.Fprintln(out, opts.Subtitle)
	}
	if opts.Tip != "" {
		fmt.Fprintln(out, faint(opts.Tip))
	}
	fmt.Fprintln(out)

	for _, msg := range session.Messages() {
		fmt.Fprintf(out, "%s %s\n\n", boldCyan("Assistant:"), msg.Content)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, boldGreen("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		input := scanner.Text()

		switch strings.ToLower(strings.TrimSpace(input)) {
		case "exit", "quit":
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg, sent := session.Send(ctx, sender, input)
		if !sent {
			continue
		}

		content := msg.Content
		if strings.HasPrefix(content, "Error: ") {
			content = red(content)
		} else if !color.NoColor {
			if rendered, err := render.MarkdownWithWidth(content, 80); err == nil {
				content = "\n" + rendered
			}
		}
		fmt.Fprintf(out, "%s %s\n", boldCyan("Assistant:"), content)
		if opts.ShowSources && len(msg.Sources) > 0 {
			fmt.Fprintln(out, faint("Sources: "+strings.Join(msg.Sources, ", ")))
		}
		fmt.Fprintln(out)
	}

	return scanner.Err()
}
