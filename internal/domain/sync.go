package domain

import "time"

// RunContext identifies one invocation. It is created once per run and
// threaded through logging and the dry-run report for correlation.
type RunContext struct {
	RunID   string
	BaseURL string
}

// UpsertStatus is the sink's verdict for a single write.
type UpsertStatus string

const (
	StatusCreated UpsertStatus = "created"
	StatusUpdated UpsertStatus = "updated"
)

// SyncOutcome holds statistics about a sync run. Created + Updated +
// Failed always equals the number of records presented for reconciliation.
type SyncOutcome struct {
	Fetched  int
	Created  int
	Updated  int
	Failed   int
	Duration time.Duration
}
