package crawler

import "github.com/williampepple1/catalog-crawler/pkg/models"

// State is a phase of one crawl run.
type State int

const (
	StateInit State = iota
	StateCategoryLoop
	StatePaginationLoop
	StateProductLoop
	StateErrorRecovery
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCategoryLoop:
		return "category_loop"
	case StatePaginationLoop:
		return "pagination_loop"
	case StateProductLoop:
		return "product_loop"
	case StateErrorRecovery:
		return "error_recovery"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// CrawlState is owned by a single run and discarded once drained into a
// Result.
type CrawlState struct {
	State    State
	Category int
	Page     int
	Records  []models.RawRecord
	Errors   []ItemError
}
