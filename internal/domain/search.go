package domain

// SearchResult is the shape returned by collection reads.
// Total is the raw count before permission filtering; Length == len(Data).
type SearchResult[T any] struct {
	Data   []T
	Length int
	Total  int
}
