package httpapi

// SearchResponse is the body returned by GET /search
type SearchResponse struct {
	Items []ItemDTO `json:"items"`
	Total *int      `json:"total,omitempty"` // omitted means len(items)
}

// ItemDTO is one entry in a search response
type ItemDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count,omitempty"`
}

// ErrorResponse is the optional body of a non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
