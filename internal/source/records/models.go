package records

import "record_syncer/internal/domain"

// pageResponse is the source list endpoint's wire shape. A nil NextPage
// means the cursor is absent and pagination is complete.
type pageResponse struct {
	Items    []domain.Record `json:"items"`
	NextPage *int            `json:"next_page"`
}
