// Package render turns assistant markdown into styled terminal text.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Options configures the markdown renderer.
type Options struct {
	// Width is the word-wrap column.
	Width int
	// Style is a glamour standard style: "dark", "light", "notty" or "ascii".
	Style string
}

func DefaultOptions() Options {
	return Options{Width: 80, Style: "dark"}
}

func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// glamour.TermRenderer is not safe for concurrent Render calls, so renderers
// are pooled per option set instead of shared.
type rendererPool struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}

var globalPool = &rendererPool{pools: make(map[Options]*sync.Pool)}

func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	p.mu.Lock()
	pool, ok := p.pools[opts]
	if !ok {
		pool = &sync.Pool{}
		p.pools[opts] = pool
	}
	p.mu.Unlock()

	if r, ok := pool.Get().(*glamour.TermRenderer); ok {
		return r, nil
	}
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithPreservedNewLines(),
	)
}

func (p *rendererPool) put(opts Options, r *glamour.TermRenderer) {
	p.mu.Lock()
	pool := p.pools[opts]
	p.mu.Unlock()
	if pool != nil && r != nil {
		pool.Put(r)
	}
}

// Markdown renders content, trimming the blank padding glamour adds around
// the document.
func Markdown(content string, opts Options) (string, error) {
	r, err := globalPool.get(opts)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	defer globalPool.put(opts, r)

	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// MarkdownWithWidth renders with default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}
