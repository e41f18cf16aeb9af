package jmap

// GetResponse is the generic */get response shape (RFC 8620 Section 5.1).
type GetResponse[T any] struct {
	AccountID string   `json:"accountId"`
	State     string   `json:"state"`
	List      []T      `json:"list"`
	NotFound  []string `json:"notFound"`
}

// QueryResponse is the generic */query response shape (RFC 8620
// Section 5.5).
type QueryResponse struct {
	AccountID  string   `json:"accountId"`
	QueryState string   `json:"queryState"`
	Position   int      `json:"position"`
	IDs        []string `json:"ids"`
	Total      int      `json:"total"`
}
