package model

// Event is one entry of the totally ordered feed produced by the answer
// service. Events are folded into the Transcript exactly once, in order.
type Event interface {
	isEvent()
}

// UserSubmitted records the user's question at the moment it was sent.
type UserSubmitted struct {
	Text string
}

// SearchBegan marks the start of a web search the assistant decided to run.
type SearchBegan struct {
	Query string
}

// SearchCompleted carries the result list for a previously announced query.
// Results are passed through verbatim from the search backend.
type SearchCompleted struct {
	Query   string
	Results []WebResult
}

// AnswerDelta is a chunk of freeform answer text. Chunk boundaries are
// arbitrary and may split a citation marker.
type AnswerDelta struct {
	Text string
}

// AnswerCompleted closes the active assistant message. The stream adapter
// also synthesizes one when the connection drops mid-answer.
type AnswerCompleted struct{}

func (UserSubmitted) isEvent()   {}
func (SearchBegan) isEvent()     {}
func (SearchCompleted) isEvent() {}
func (AnswerDelta) isEvent()     {}
func (AnswerCompleted) isEvent() {}

// WebResult is a single search hit as delivered by the backend
type WebResult struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Site  string `json:"site"`
}
