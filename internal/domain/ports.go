package domain

import "context"

// Fetcher is the driven port for HTTP retrieval. Implementations follow
// redirects and send the configured User-Agent on every request.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RunLog is the driven port for the append-only run log. Append must be
// safe for concurrent use and each line must reach the file before the
// call returns.
type RunLog interface {
	Append(message string)
}

// HistoryStore is the driven port for persistent download history.
type HistoryStore interface {
	BeginRun(ctx context.Context, pageURL string) (int64, error)
	Record(ctx context.Context, runID int64, task DownloadTask, status TaskStatus, reason string) error
}
