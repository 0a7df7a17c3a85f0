package session

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/citetrail/internal/model"
)

// scriptedSource replays a fixed event feed, or fails to connect.
type scriptedSource struct {
	events     []model.Event
	connectErr error
}

func (s *scriptedSource) Events(ctx context.Context, question string) (<-chan model.Event, error) {
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	ch := make(chan model.Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func TestSession_Ask(t *testing.T) {
	source := &scriptedSource{events: []model.Event{
		model.SearchBegan{Query: "rent car"},
		model.SearchCompleted{Query: "rent car", Results: []model.WebResult{
			{Title: "Car rental", Text: "Rent here", URL: "https://a.com", Site: "a.com"},
		}},
		model.AnswerDelta{Text: "You can rent a car[query 1 source 1]. "},
		model.AnswerCompleted{},
	}}

	sess := New(source, nil)

	var updates int
	err := sess.Ask(context.Background(), "where can I rent a car", func(_ *model.Transcript) {
		updates++
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	// One notification per fold: the user turn plus every streamed event.
	if updates != 5 {
		t.Errorf("Expected 5 updates, got %d", updates)
	}

	tr := sess.Transcript()
	if len(tr.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(tr.Messages))
	}
	answer := tr.Messages[1]
	if answer.Active {
		t.Error("Answer should be settled")
	}
	if len(answer.Citations()) != 1 {
		t.Errorf("Expected 1 citation, got %d", len(answer.Citations()))
	}
	if sess.Responding() {
		t.Error("Session should not be responding after Ask returns")
	}
}

func TestSession_AskConnectFailure(t *testing.T) {
	source := &scriptedSource{connectErr: errors.New("connection refused")}
	sess := New(source, nil)

	err := sess.Ask(context.Background(), "q", nil)
	if err == nil {
		t.Fatal("Expected a connect error")
	}

	// The user turn stays in the transcript and nothing is left streaming.
	if len(sess.Transcript().Messages) != 1 {
		t.Errorf("Expected only the user message, got %d", len(sess.Transcript().Messages))
	}
	if sess.Responding() {
		t.Error("Session must settle even when the connection fails")
	}
}

func TestSession_AskEarlyClose(t *testing.T) {
	// The feed ends without AnswerCompleted.
	source := &scriptedSource{events: []model.Event{
		model.AnswerDelta{Text: "partial answ"},
	}}
	sess := New(source, nil)

	if err := sess.Ask(context.Background(), "q", nil); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	answer := sess.Transcript().Last()
	if answer.Active {
		t.Error("Answer must be closed when the feed ends early")
	}
	if answer.Raw() != "partial answ" {
		t.Errorf("Partial text must be preserved, got %q", answer.Raw())
	}
	if sess.Responding() {
		t.Error("Session should not be responding")
	}
}
