// Package cite scans streamed answer text for citation markers of the
// form `[query I source J]` and turns them into citation segments with
// stable, deduplicated source numbering.
package cite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/citetrail/internal/model"
)

// markerPattern matches a complete citation marker. Indices are 1-based
// with at least one digit; zero still parses and must fail resolution.
var markerPattern = regexp.MustCompile(`\[query (\d+) source (\d+)\]`)

// Extractor is the per-message scanner state. Text that may still turn
// into a marker stays buffered between Feed calls, which makes the scan
// safe against markers split across streaming-chunk boundaries.
type Extractor struct {
	buf      string
	sentence string // consumed prose since the last '.', feeds Citation.Claim
}

// NewExtractor creates an extractor for a fresh assistant message.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Feed appends a streamed chunk and extracts every complete marker.
// It returns the new segments (prose up to and including the last
// complete marker) and the updated source list. Resolution uses only the
// queries and results present at call time; a marker that points outside
// them yields a citation with a nil source and is never retried.
func (e *Extractor) Feed(chunk string, queries []model.QueryRecord, sources []*model.Source) ([]model.Segment, []*model.Source) {
	e.buf += chunk

	var segments []model.Segment
	for {
		loc := markerPattern.FindStringSubmatchIndex(e.buf)
		if loc == nil {
			break
		}

		if prefix := e.buf[:loc[0]]; prefix != "" {
			segments = append(segments, model.Text(prefix))
			e.trackSentence(prefix)
		}

		// The pattern guarantees these parse.
		queryIdx, _ := strconv.Atoi(e.buf[loc[2]:loc[3]])
		resultIdx, _ := strconv.Atoi(e.buf[loc[4]:loc[5]])

		source := resolve(queries, queryIdx, resultIdx)

		var slot int
		sources, slot, _ = Assign(sources, source)

		segments = append(segments, &model.Citation{
			Claim:         strings.TrimSpace(e.sentence),
			Source:        source,
			DisplayNumber: slot + 1,
			QueryIndex:    queryIdx,
			ResultIndex:   resultIdx,
			RawMarker:     e.buf[loc[0]:loc[1]],
		})

		e.buf = e.buf[loc[1]:]
	}

	return segments, sources
}

// Remainder returns the unconsumed tail of the buffer. It may hold a
// partial marker and is surfaced as the message's pending trailing text.
func (e *Extractor) Remainder() string {
	return e.buf
}

// Finish flushes whatever is still buffered as a final text segment.
// Called when the answer completes; no marker can complete after that.
func (e *Extractor) Finish() []model.Segment {
	if e.buf == "" {
		return nil
	}
	seg := model.Text(e.buf)
	e.trackSentence(e.buf)
	e.buf = ""
	return []model.Segment{seg}
}

// trackSentence advances the claim fragment over consumed prose. The
// claim for a marker is the trimmed text since the last sentence
// terminator, so any period resets the fragment, including one folded
// in right after a marker.
func (e *Extractor) trackSentence(text string) {
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		e.sentence = text[i+1:]
		return
	}
	e.sentence += text
}

// resolve maps 1-based marker indices onto the queries announced so far.
// Out-of-range indices, zero included, are a hallucinated reference: the
// citation simply carries no source.
func resolve(queries []model.QueryRecord, queryIdx, resultIdx int) *model.Source {
	if queryIdx < 1 || queryIdx > len(queries) {
		return nil
	}
	results := queries[queryIdx-1].Results
	if resultIdx < 1 || resultIdx > len(results) {
		return nil
	}
	res := results[resultIdx-1]
	return &model.Source{URL: res.URL, Text: res.Text}
}
