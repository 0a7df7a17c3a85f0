// Package session ties one conversation together: a reducer folding the
// event feed, and the fact-check cache scoped to the same lifetime.
package session

import (
	"context"

	"github.com/ppiankov/citetrail/internal/factcheck"
	"github.com/ppiankov/citetrail/internal/model"
	"github.com/ppiankov/citetrail/internal/reduce"
	"github.com/ppiankov/citetrail/internal/stream"
)

// Session owns the transcript for one conversation. All folding happens
// on the goroutine that calls Ask, so the reducer never needs locking;
// readers only see the transcript through the onUpdate snapshots.
type Session struct {
	reducer *reduce.Reducer
	source  stream.Source
	checks  *factcheck.Cache
}

// New creates a session. checks may be nil when fact-checking is disabled.
func New(source stream.Source, checks *factcheck.Cache) *Session {
	return &Session{
		reducer: reduce.New(),
		source:  source,
		checks:  checks,
	}
}

// Transcript returns the conversation state. Read-only for callers.
func (s *Session) Transcript() *model.Transcript {
	return s.reducer.Transcript()
}

// Checks returns the session's fact-check cache, or nil if disabled.
func (s *Session) Checks() *factcheck.Cache {
	return s.checks
}

// Responding reports whether an answer is currently streaming.
func (s *Session) Responding() bool {
	return s.reducer.Responding()
}

// Ask submits a question and folds the resulting event feed to
// completion. onUpdate, if non-nil, runs after every fold so callers can
// redraw. Whatever happens to the stream, the active message is closed
// before Ask returns.
func (s *Session) Ask(ctx context.Context, question string, onUpdate func(*model.Transcript)) error {
	notify := func() {
		if onUpdate != nil {
			onUpdate(s.reducer.Transcript())
		}
	}

	s.reducer.Apply(model.UserSubmitted{Text: question})
	notify()

	events, err := s.source.Events(ctx, question)
	if err != nil {
		// The connection never opened; settle the transcript and report.
		s.reducer.Apply(model.AnswerCompleted{})
		notify()
		return err
	}

	for ev := range events {
		s.reducer.Apply(ev)
		notify()
	}

	// The feed should end with AnswerCompleted; guard against sources
	// that close early.
	if s.reducer.Responding() {
		s.reducer.Apply(model.AnswerCompleted{})
		notify()
	}

	return nil
}
