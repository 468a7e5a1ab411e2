package depot

import "time"

// Run is the audit summary of one validation run. The engine itself stays
// stateless; recording runs is the service's concern.
type Run struct {
	Id        int
	StartedAt time.Time
	Subject   string
	Valid     bool
	Errors    int
	Warnings  int
}

type Depot interface {
	InsertRun(r *Run) error
	GetRuns(limit int) ([]Run, error)
}
