// Package reduce folds answer-stream events into a transcript. The fold
// is synchronous and total: malformed or out-of-order events degrade to
// no-ops, never errors.
package reduce

import (
	"github.com/ppiankov/citetrail/internal/cite"
	"github.com/ppiankov/citetrail/internal/model"
)

// Reducer owns a transcript and applies one event per call, in arrival
// order. It also carries the conversation-scoped state that would
// otherwise be globals: the "assistant responding" flag and the citation
// scanner for the message currently being streamed.
type Reducer struct {
	transcript *model.Transcript
	extractor  *cite.Extractor
	responding bool
}

// New creates a reducer over an empty transcript.
func New() *Reducer {
	return &Reducer{transcript: model.NewTranscript()}
}

// Transcript returns the transcript. Callers must treat it as read-only.
func (r *Reducer) Transcript() *model.Transcript {
	return r.transcript
}

// Responding reports whether an assistant answer is in flight.
func (r *Reducer) Responding() bool {
	return r.responding
}

// Apply folds a single event. It never fails: events that match nothing
// (a completion for an unknown query, a duplicate AnswerCompleted) are
// dropped silently.
func (r *Reducer) Apply(ev model.Event) {
	switch ev := ev.(type) {
	case model.UserSubmitted:
		r.transcript.Append(model.NewUserMessage(ev.Text))
		r.responding = true

	case model.SearchBegan:
		msg := r.ensureAssistant()
		msg.Queries = append(msg.Queries, model.QueryRecord{
			Query:   ev.Query,
			Active:  true,
			Results: []model.WebResult{},
		})

	case model.SearchCompleted:
		msg := r.transcript.ActiveAssistant()
		if msg == nil {
			return
		}
		rec := msg.FindQuery(ev.Query)
		if rec == nil {
			// Late or duplicate completion for a query never announced.
			return
		}
		rec.Active = false
		rec.Results = ev.Results

	case model.AnswerDelta:
		msg := r.ensureAssistant()
		segments, sources := r.extractor.Feed(ev.Text, msg.Queries, msg.Sources)
		r.appendSegments(msg, segments)
		msg.Sources = sources
		msg.Pending = r.extractor.Remainder()

	case model.AnswerCompleted:
		r.responding = false
		msg := r.transcript.ActiveAssistant()
		if msg == nil {
			return
		}
		if r.extractor != nil {
			r.appendSegments(msg, r.extractor.Finish())
		}
		msg.Pending = ""
		msg.Active = false
		r.extractor = nil
	}
}

// ensureAssistant returns the active assistant message, creating one
// lazily. The service announces its first search or first delta before
// any explicit message-open event exists.
func (r *Reducer) ensureAssistant() *model.Message {
	if msg := r.transcript.ActiveAssistant(); msg != nil {
		return msg
	}
	msg := model.NewAssistantMessage()
	r.transcript.Append(msg)
	r.extractor = cite.NewExtractor()
	return msg
}

// appendSegments attaches extracted segments, stamping each citation
// with its final position in the body.
func (r *Reducer) appendSegments(msg *model.Message, segments []model.Segment) {
	for _, seg := range segments {
		if c, ok := seg.(*model.Citation); ok {
			c.BodyPosition = len(msg.Body)
		}
		msg.Body = append(msg.Body, seg)
	}
}
