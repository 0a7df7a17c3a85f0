package model

import (
	"fmt"
	"strings"
)

// Speaker identifies who produced a message
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Segment is one piece of an assistant answer body: either literal prose
// or an inline citation standing where its marker appeared in the stream.
type Segment interface {
	isSegment()
}

// Text is a verbatim run of streamed answer text.
type Text string

// Citation replaces a `[query I source J]` marker in the answer body.
type Citation struct {
	// Claim is the sentence fragment the cited source is asserted to support.
	Claim string `json:"claim"`

	// Source is nil when the marker referenced a query or result index that
	// does not exist (a hallucinated reference). Rendered distinctly, never
	// an error.
	Source *Source `json:"source,omitempty"`

	// DisplayNumber is the 1-based slot in Message.Sources. Assigned once,
	// never renumbered for the lifetime of the message.
	DisplayNumber int `json:"display_number"`

	// BodyPosition is the index of this segment within Message.Body.
	BodyPosition int `json:"body_position"`

	// QueryIndex and ResultIndex are the parsed 1-based marker indices
	// used for resolution.
	QueryIndex  int `json:"query_index"`
	ResultIndex int `json:"result_index"`

	// RawMarker is the marker text exactly as streamed. Reconstruction
	// must be byte-faithful, and parsed indices lose leading zeros.
	RawMarker string `json:"raw_marker"`
}

func (Text) isSegment()      {}
func (*Citation) isSegment() {}

// Marker returns the literal streamed token this citation replaced.
func (c *Citation) Marker() string {
	if c.RawMarker != "" {
		return c.RawMarker
	}
	return fmt.Sprintf("[query %d source %d]", c.QueryIndex, c.ResultIndex)
}

// Resolved reports whether the marker pointed at a known search result.
func (c *Citation) Resolved() bool {
	return c.Source != nil
}

// Source is a cited document. Identity for dedup purposes is URL.
type Source struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// QueryRecord tracks one search the assistant ran while answering.
// Active is true from SearchBegan until the matching SearchCompleted.
type QueryRecord struct {
	Query   string      `json:"query"`
	Active  bool        `json:"active"`
	Results []WebResult `json:"results"`
}

// Message is a single conversation turn. At most one message is active:
// the most recently appended assistant message, until AnswerCompleted.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Active  bool    `json:"active"`

	// Body reproduces the streamed answer text with markers replaced in
	// place. Pending holds streamed text not yet folded into Body; it may
	// end in a partial marker and becomes/extends the trailing text segment.
	Body    []Segment `json:"body"`
	Pending string    `json:"pending,omitempty"`

	// Sources holds the distinct cited sources in first-seen order; entry i
	// backs display number i+1. A nil entry is the slot of an unresolved
	// citation.
	Sources []*Source `json:"sources"`

	Queries []QueryRecord `json:"queries"`
}

// NewUserMessage creates a finished user turn with a single text segment.
func NewUserMessage(text string) *Message {
	return &Message{
		Speaker: SpeakerUser,
		Body:    []Segment{Text(text)},
	}
}

// NewAssistantMessage creates an empty, active assistant turn.
func NewAssistantMessage() *Message {
	return &Message{
		Speaker: SpeakerAssistant,
		Active:  true,
	}
}

// FindQuery returns the first query record with the given query text,
// or nil if the message never announced it.
func (m *Message) FindQuery(query string) *QueryRecord {
	for i := range m.Queries {
		if m.Queries[i].Query == query {
			return &m.Queries[i]
		}
	}
	return nil
}

// Raw reconstructs the text exactly as it was streamed: text segments
// verbatim, citations as their marker literals, plus the pending tail.
func (m *Message) Raw() string {
	var b strings.Builder
	for _, seg := range m.Body {
		switch s := seg.(type) {
		case Text:
			b.WriteString(string(s))
		case *Citation:
			b.WriteString(s.Marker())
		}
	}
	b.WriteString(m.Pending)
	return b.String()
}

// Segments returns the body with the pending tail materialized as the
// trailing text segment, ready for rendering.
func (m *Message) Segments() []Segment {
	if m.Pending == "" {
		return m.Body
	}
	segs := make([]Segment, 0, len(m.Body)+1)
	segs = append(segs, m.Body...)
	return append(segs, Text(m.Pending))
}

// Citations returns the citation segments of the body in order.
func (m *Message) Citations() []*Citation {
	var cits []*Citation
	for _, seg := range m.Body {
		if c, ok := seg.(*Citation); ok {
			cits = append(cits, c)
		}
	}
	return cits
}

// Transcript is the full ordered conversation state. It is exclusively
// mutated by the reducer; everything else only reads it.
type Transcript struct {
	Messages []*Message `json:"messages"`
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(m *Message) {
	t.Messages = append(t.Messages, m)
}

// Last returns the most recent message, or nil if the transcript is empty.
func (t *Transcript) Last() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// ActiveAssistant returns the last message if it is an assistant turn still
// receiving events, or nil.
func (t *Transcript) ActiveAssistant() *Message {
	last := t.Last()
	if last != nil && last.Speaker == SpeakerAssistant && last.Active {
		return last
	}
	return nil
}
