package domain

// SearchOptions bounds a single search call. A nil Threshold means no
// score filtering.
type SearchOptions struct {
	NumResults int
	Threshold  *float32
}

// NewSearchOptions validates and constructs SearchOptions. numResults
// must be positive; the orchestrator rejects anything else before it
// ever reaches a search engine.
func NewSearchOptions(numResults int, threshold *float32) (SearchOptions, error) {
	if numResults <= 0 {
		return SearchOptions{}, Invalid("numResults must be >= 1")
	}
	return SearchOptions{NumResults: numResults, Threshold: threshold}, nil
}

// WithNumResults returns a copy of o with NumResults replaced.
func (o SearchOptions) WithNumResults(n int) SearchOptions {
	o.NumResults = n
	return o
}

// WithThreshold returns a copy of o with Threshold replaced.
func (o SearchOptions) WithThreshold(t *float32) SearchOptions {
	o.Threshold = t
	return o
}

// ClearThreshold returns a copy of o with no threshold set.
func (o SearchOptions) ClearThreshold() SearchOptions {
	o.Threshold = nil
	return o
}
