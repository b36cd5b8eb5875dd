package domain

// PageResult is one page of a listing together with the total number of entries.
type PageResult[T any] struct {
	Total   uint64 `json:"total"`
	Records []T    `json:"records"`
}
