package domain

// Record is one source record, carried unchanged to the sink. ExternalID
// is the unique key; records are never mutated after fetching.
type Record struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Value      int    `json:"value"`
}
