package model

import "time"

// Counters holds the process-wide accumulators for one crawl run.
// They are reset at run start and read at run end for the summary.
type Counters struct {
	// Succeeded is the number of pages fetched and extracted.
	Succeeded int `json:"succeeded"`

	// Failed is the number of URLs whose fetch or extraction failed.
	Failed int `json:"failed"`

	// Blocked is the number of URLs rejected by the admission filter.
	Blocked int `json:"blocked"`
}

// Add accumulates another set of counters into c.
func (c *Counters) Add(other Counters) {
	c.Succeeded += other.Succeeded
	c.Failed += other.Failed
	c.Blocked += other.Blocked
}

// Total returns the number of URLs that reached a terminal outcome.
func (c Counters) Total() int {
	return c.Succeeded + c.Failed + c.Blocked
}

// SeedStatus is the lifecycle state of a single seed's crawl.
type SeedStatus string

// Seed states. A seed moves Pending -> Running -> Done; seeds whose URL
// cannot be normalized end up Invalid without ever running, and a seed
// interrupted by shutdown ends up Cancelled.
const (
	SeedPending   SeedStatus = "pending"
	SeedRunning   SeedStatus = "running"
	SeedDone      SeedStatus = "done"
	SeedInvalid   SeedStatus = "invalid"
	SeedCancelled SeedStatus = "cancelled"
)

// SeedResult summarizes the crawl of one seed URL.
type SeedResult struct {
	// Seed is the seed URL as supplied by the user.
	Seed string `json:"seed"`

	// Status is the terminal state the seed reached.
	Status SeedStatus `json:"status"`

	// Counters holds the per-seed outcome counts.
	Counters Counters `json:"counters"`
}

// Summary is the final result of a crawl run across all seeds.
type Summary struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed or was cancelled.
	FinishedAt time.Time `json:"finished_at"`

	// Seeds holds the per-seed results in input order.
	Seeds []SeedResult `json:"seeds"`

	// Counters holds the global counts across all seeds.
	Counters Counters `json:"counters"`

	// Visited is the final size of the global visited set.
	Visited int `json:"visited"`
}

// Duration returns the wall-clock duration of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
