// Package render writes transcripts as plain terminal text. Rendering a
// resolved citation is what triggers its fact-check: the verdict shown is
// whatever the cache knows at draw time.
package render

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/citetrail/internal/factcheck"
	"github.com/ppiankov/citetrail/internal/model"
)

// Renderer writes a transcript to w. checks may be nil, in which case
// citations render without verdicts.
type Renderer struct {
	w      io.Writer
	checks *factcheck.Cache
}

// NewRenderer creates a renderer.
func NewRenderer(w io.Writer, checks *factcheck.Cache) *Renderer {
	return &Renderer{w: w, checks: checks}
}

// RenderTranscript writes every message in order.
func (r *Renderer) RenderTranscript(ctx context.Context, t *model.Transcript) {
	for _, msg := range t.Messages {
		r.RenderMessage(ctx, msg)
		fmt.Fprintln(r.w)
	}
}

// RenderMessage writes a single turn.
func (r *Renderer) RenderMessage(ctx context.Context, m *model.Message) {
	switch m.Speaker {
	case model.SpeakerUser:
		fmt.Fprintf(r.w, "You: %s\n", m.Raw())
	case model.SpeakerAssistant:
		r.renderAssistant(ctx, m)
	}
}

func (r *Renderer) renderAssistant(ctx context.Context, m *model.Message) {
	fmt.Fprint(r.w, "Assistant: ")
	for _, seg := range m.Segments() {
		switch s := seg.(type) {
		case model.Text:
			fmt.Fprint(r.w, string(s))
		case *model.Citation:
			if s.Resolved() {
				fmt.Fprintf(r.w, "[%d]", s.DisplayNumber)
			} else {
				// Hallucinated reference: keep the slot number but flag it.
				fmt.Fprintf(r.w, "[%d?]", s.DisplayNumber)
			}
		}
	}
	if m.Active {
		fmt.Fprint(r.w, " …")
	}
	fmt.Fprintln(r.w)

	for _, q := range m.Queries {
		if q.Active {
			fmt.Fprintf(r.w, "  searching %q …\n", q.Query)
		} else {
			fmt.Fprintf(r.w, "  searched %q (%d results)\n", q.Query, len(q.Results))
		}
	}

	for _, c := range m.Citations() {
		fmt.Fprintf(r.w, "  [%d] %s\n", c.DisplayNumber, r.citationLine(ctx, c))
	}
}

// citationLine formats one citation's source and latest-known verdict.
func (r *Renderer) citationLine(ctx context.Context, c *model.Citation) string {
	if !c.Resolved() {
		return "unverifiable source"
	}

	line := c.Source.URL
	if r.checks == nil {
		return line
	}

	// Snippets arrive with highlight markup; verify against clean text.
	evidence := CleanSnippet(c.Source.Text)
	r.checks.Ensure(ctx, c.Claim, evidence)

	switch entry := r.checks.Read(c.Claim, evidence); entry.Status {
	case factcheck.StatusVerified:
		return fmt.Sprintf("%s - support %.2f", line, entry.Score)
	default:
		return line + " - checking..."
	}
}
