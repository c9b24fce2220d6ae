package model

import "time"

// CheckpointVersion marks the current checkpoint schema. Files carrying any
// other version are discarded and the fetch starts fresh.
const CheckpointVersion = 2

// FeedFetchState enumerates per-feed fetch progress inside a checkpoint.
type FeedFetchState string

const (
	FeedPending    FeedFetchState = "pending"
	FeedInProgress FeedFetchState = "in_progress"
	FeedCompleted  FeedFetchState = "completed"
)

// FeedProgress records how far a single feed has been fetched.
type FeedProgress struct {
	State      FeedFetchState `json:"state"`
	LastPage   int            `json:"last_page"`   // last successfully fetched page
	TotalPages int            `json:"total_pages"` // as reported by the feed, 0 until known
	Pages      int            `json:"pages"`       // pages fetched so far, for the run summary
}

// Checkpoint is the persisted state of the fetch stage. It lives across
// interrupted runs and is marked complete at the end of a successful fetch.
type Checkpoint struct {
	Version     int                     `json:"version"`
	StartedAt   time.Time               `json:"started_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Feeds       map[string]FeedProgress `json:"feeds"`
	Records     []RawFeedRecord         `json:"records"`
}

// NewCheckpoint creates an empty checkpoint for the given feed names.
func NewCheckpoint(feedNames []string, now time.Time) *Checkpoint {
	feeds := make(map[string]FeedProgress, len(feedNames))
	for _, name := range feedNames {
		feeds[name] = FeedProgress{State: FeedPending}
	}
	return &Checkpoint{
		Version:   CheckpointVersion,
		StartedAt: now,
		Feeds:     feeds,
	}
}

// Complete reports whether every feed finished and the run was sealed.
func (c *Checkpoint) Complete() bool {
	return c != nil && c.CompletedAt != nil
}

// Progress returns the recorded progress for a feed, defaulting to pending.
func (c *Checkpoint) Progress(feed string) FeedProgress {
	if c == nil || c.Feeds == nil {
		return FeedProgress{State: FeedPending}
	}
	if p, ok := c.Feeds[feed]; ok {
		return p
	}
	return FeedProgress{State: FeedPending}
}

// HasRecord reports whether a record with the given feed+external id key is
// already in the accumulated set.
func (c *Checkpoint) HasRecord(key string) bool {
	for _, r := range c.Records {
		if r.Key() == key {
			return true
		}
	}
	return false
}
