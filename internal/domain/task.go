package domain

// TaskStatus represents the download state of a task.
type TaskStatus string

const (
	StatusPending  TaskStatus = "pending"
	StatusFetching TaskStatus = "fetching"
	StatusWritten  TaskStatus = "written"
	StatusFailed   TaskStatus = "failed"
	StatusDeclined TaskStatus = "declined"
)

// Candidate is a resolved image URL discovered on the page, paired with
// its extension class (lowercased extension without the dot).
type Candidate struct {
	URL   string
	Class string
}

// DownloadTask pairs a candidate URL with its ordinal position in the
// deduplicated, sorted candidate sequence. Ordinals are assigned once,
// before dispatch, and never change.
type DownloadTask struct {
	Ordinal  int
	URL      string
	Class    string
	Filename string
}

// Batch groups the tasks of one extension class. Confirmation is granted
// or declined per batch.
type Batch struct {
	Class string
	Tasks []DownloadTask
}

// Failure records one task that did not complete.
type Failure struct {
	URL    string
	Reason string
}

// Summary aggregates the outcome of one or more batches.
type Summary struct {
	Succeeded int
	Declined  int
	Failed    []Failure
}

// Merge folds another summary into this one.
func (s *Summary) Merge(other Summary) {
	s.Succeeded += other.Succeeded
	s.Declined += other.Declined
	s.Failed = append(s.Failed, other.Failed...)
}
