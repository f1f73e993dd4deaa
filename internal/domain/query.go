package domain

type SearchQuery struct {
	Text  string
	Limit int
}

// NewSearchQuery applies the tool defaults. A nil limit means the caller omitted it.
func NewSearchQuery(text string, limit *int, defaultLimit int) SearchQuery {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	q := SearchQuery{Text: text, Limit: defaultLimit}
	if limit != nil {
		q.Limit = *limit
	}
	return q
}

// Validate only flags what the pipeline can't serve sensibly; callers log it and carry on.
func (q SearchQuery) Validate() error {
	if q.Limit < 0 {
		return ErrNegativeLimit
	}
	return nil
}
