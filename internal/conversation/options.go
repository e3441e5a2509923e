package conversation

import "fmt"

// Options parameterizes one chat view. The presets match the two deployed
// variants; the With* setters adjust a copy.
type Options struct {
	Title       string
	Subtitle    string
	Badge       string
	Greeting    string
	Placeholder string
	Tip         string
	ShowSources bool
}

const (
	VariantShell         = "shell"
	VariantKnowledgeBase = "kb"
)

func ShellOptions() Options {
	return Options{
		Title:       "Clicktap Chat",
		Subtitle:    "Internal assistant — fast answers, clean responses.",
		Greeting:    "Hi — how can I help you today?",
		Placeholder: "Ask something…",
		Tip:         "Tip: Don’t paste secrets. This chat is for internal knowledge and workflows.",
	}
}

func KnowledgeBaseOptions() Options {
	return Options{
		Title:       "Clicktap Chat",
		Badge:       "RAG",
		Greeting:    "Hi! Ask me anything about the company knowledge base.",
		Placeholder: "Type your message…",
		Tip:         "Tip: token is handled server-side via /api/chat (safe for production).",
	}
}

// OptionsFor returns the preset for a variant name.
func OptionsFor(variant string) (Options, error) {
	switch variant {
	case "", VariantShell:
		return ShellOptions(), nil
	case VariantKnowledgeBase:
		return KnowledgeBaseOptions(), nil
	default:
		return Options{}, fmt.Errorf("unknown chat variant %q (want %q or %q)", variant, VariantShell, VariantKnowledgeBase)
	}
}

func (o Options) WithTitle(title string) Options {
	o.Title = title
	return o
}

func (o Options) WithGreeting(greeting string) Options {
	o.Greeting = greeting
	return o
}

func (o Options) WithPlaceholder(placeholder string) Options {
	o.Placeholder = placeholder
	return o
}

func (o Options) WithSources(show bool) Options {
	o.ShowSources = show
	return o
}
