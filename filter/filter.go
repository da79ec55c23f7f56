package filter

import (
	"bytes"

	"github.com/blevesearch/bleve/v2/analysis"

	"github.com/c360/dynsynonym/synonym"
)

// SynonymFilter is a bleve token filter that injects synonym tokens from
// the currently served map. It loads the map once per token stream with a
// single atomic read; the per-token work is one map lookup, so the filter
// is safe on the indexing and query hot paths.
type SynonymFilter struct {
	handle       *synonym.Handle
	registration *Registration
}

// NewSynonymFilter creates a filter reading from the given handle. The
// registration may be nil when the consumer is not tracked.
func NewSynonymFilter(handle *synonym.Handle, registration *Registration) *SynonymFilter {
	return &SynonymFilter{handle: handle, registration: registration}
}

// Filter implements analysis.TokenFilter. Synonym tokens are emitted at
// the same position and offsets as the token that produced them.
func (f *SynonymFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	m := f.handle.Get()
	if m.Terms() == 0 {
		return input
	}

	rv := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		rv = append(rv, token)

		expansions := m.Lookup(string(bytes.ToLower(token.Term)))
		for _, syn := range expansions {
			rv = append(rv, &analysis.Token{
				Term:     []byte(syn),
				Position: token.Position,
				Start:    token.Start,
				End:      token.End,
				Type:     token.Type,
			})
		}
	}
	return rv
}

// Close removes this filter from the consumer registry. Idempotent; the
// host calls it when the owning analyzer is torn down.
func (f *SynonymFilter) Close() error {
	if f.registration != nil {
		return f.registration.Close()
	}
	return nil
}
