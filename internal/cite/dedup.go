package cite

import "github.com/ppiankov/citetrail/internal/model"

// Assign finds or creates the source slot for a candidate within a
// message's running source list. It returns the (possibly grown) list,
// the 0-based slot index, and whether a new slot was appended. The
// exposed display number is index+1 and is stable for the lifetime of
// the message: repeated references to the same URL reuse their slot.
//
// A nil candidate (an unresolved marker) always occupies a fresh slot;
// there is no URL to deduplicate by.
func Assign(sources []*model.Source, candidate *model.Source) ([]*model.Source, int, bool) {
	if candidate != nil {
		for i, src := range sources {
			if src != nil && src.URL == candidate.URL {
				return sources, i, false
			}
		}
	}
	sources = append(sources, candidate)
	return sources, len(sources) - 1, true
}
