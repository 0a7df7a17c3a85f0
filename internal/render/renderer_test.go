package render

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/citetrail/internal/factcheck"
	"github.com/ppiankov/citetrail/internal/model"
	"github.com/ppiankov/citetrail/internal/reduce"
)

// instantChecker verifies everything immediately with a fixed score.
type instantChecker struct {
	score float64
}

func (c instantChecker) Check(ctx context.Context, claim, evidence string) (float64, error) {
	return c.score, nil
}

func foldScenario(t *testing.T) *model.Transcript {
	t.Helper()
	r := reduce.New()
	events := []model.Event{
		model.UserSubmitted{Text: "where can I rent a car"},
		model.SearchBegan{Query: "rent car"},
		model.SearchCompleted{Query: "rent car", Results: []model.WebResult{
			{Title: "Car rental", Text: "Rent a <b>car</b> here", URL: "https://a.com", Site: "a.com"},
		}},
		model.AnswerDelta{Text: "You can rent a car[query 1 source 1]. "},
		model.AnswerCompleted{},
	}
	for _, ev := range events {
		r.Apply(ev)
	}
	return r.Transcript()
}

func TestRenderer_Transcript(t *testing.T) {
	tr := foldScenario(t)

	var buf strings.Builder
	NewRenderer(&buf, nil).RenderTranscript(context.Background(), tr)
	out := buf.String()

	want := []string{
		"You: where can I rent a car\n",
		"Assistant: You can rent a car[1]. \n",
		"searched \"rent car\" (1 results)\n",
		"[1] https://a.com\n",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("Output missing %q:\n%s", w, out)
		}
	}
}

func TestRenderer_ActiveMessage(t *testing.T) {
	r := reduce.New()
	r.Apply(model.UserSubmitted{Text: "q"})
	r.Apply(model.SearchBegan{Query: "rent car"})
	r.Apply(model.AnswerDelta{Text: "You can rent a ca"})

	var buf strings.Builder
	NewRenderer(&buf, nil).RenderTranscript(context.Background(), r.Transcript())
	out := buf.String()

	// Pending text shows, with the in-flight markers.
	if !strings.Contains(out, "Assistant: You can rent a ca …") {
		t.Errorf("Expected streaming indicator after pending text:\n%s", out)
	}
	if !strings.Contains(out, "searching \"rent car\" …") {
		t.Errorf("Expected active search line:\n%s", out)
	}
}

func TestRenderer_UnresolvedCitation(t *testing.T) {
	r := reduce.New()
	r.Apply(model.UserSubmitted{Text: "q"})
	r.Apply(model.AnswerDelta{Text: "a bold claim[query 9 source 9]"})
	r.Apply(model.AnswerCompleted{})

	var buf strings.Builder
	NewRenderer(&buf, nil).RenderTranscript(context.Background(), r.Transcript())
	out := buf.String()

	if !strings.Contains(out, "a bold claim[1?]") {
		t.Errorf("Expected flagged inline number for hallucinated reference:\n%s", out)
	}
	if !strings.Contains(out, "[1] unverifiable source") {
		t.Errorf("Expected unverifiable source line:\n%s", out)
	}
}

func TestRenderer_Verdicts(t *testing.T) {
	tr := foldScenario(t)
	checks := factcheck.NewCache(instantChecker{score: 0.87})
	renderer := NewRenderer(io.Discard, checks)
	ctx := context.Background()

	// First draw kicks off the check; the verdict may not be in yet.
	renderer.RenderTranscript(ctx, tr)

	// Wait for the verdict, then redraw onto a fresh buffer.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entry := checks.Read("You can rent a car", "Rent a car here")
		if entry.Status == factcheck.StatusVerified {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var buf strings.Builder
	renderer.w = &buf
	renderer.RenderTranscript(ctx, tr)
	out := buf.String()

	if !strings.Contains(out, "[1] https://a.com - support 0.87") {
		t.Errorf("Expected verdict on the citation line:\n%s", out)
	}
}

func TestRenderer_ChecksDegradeToChecking(t *testing.T) {
	tr := foldScenario(t)

	// A checker that never resolves within the test.
	blocked := make(chan struct{})
	t.Cleanup(func() { close(blocked) })
	checks := factcheck.NewCache(blockedChecker{blocked})

	var buf strings.Builder
	NewRenderer(&buf, checks).RenderTranscript(context.Background(), tr)
	out := buf.String()

	if !strings.Contains(out, "https://a.com - checking...") {
		t.Errorf("Expected pending indicator while the check is in flight:\n%s", out)
	}
}

type blockedChecker struct {
	release <-chan struct{}
}

func (c blockedChecker) Check(ctx context.Context, claim, evidence string) (float64, error) {
	<-c.release
	return 0, ctx.Err()
}
