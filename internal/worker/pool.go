package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/cwygoda/imgcatcher/internal/domain"
)

// Pool downloads the tasks of confirmed batches with bounded
// concurrency. Ordinals and filenames are fixed before dispatch, so
// concurrency only changes completion order, never which ordinal maps to
// which URL.
type Pool struct {
	fetcher   domain.Fetcher
	log       domain.RunLog
	outputDir string
	workers   int

	history domain.HistoryStore
	runID   int64
}

// New creates a pool writing into outputDir with the given number of
// concurrent workers.
func New(fetcher domain.Fetcher, log domain.RunLog, outputDir string, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		fetcher:   fetcher,
		log:       log,
		outputDir: outputDir,
		workers:   workers,
	}
}

// WithHistory makes the pool record every task outcome under runID.
func (p *Pool) WithHistory(store domain.HistoryStore, runID int64) *Pool {
	p.history = store
	p.runID = runID
	return p
}

// Run downloads one confirmed batch. A failed task is logged and counted
// but never aborts the rest of the batch. A cancelled context stops
// dispatch of new tasks; in-flight tasks finish under a detached context
// so cancellation never truncates a download midway.
func (p *Pool) Run(ctx context.Context, batch domain.Batch) domain.Summary {
	sem := semaphore.NewWeighted(int64(p.workers))

	// Only dispatch gating honors ctx. A dispatched task is bounded by
	// the fetcher's own timeout, not by the cancellation signal.
	detached := context.WithoutCancel(ctx)

	var mu sync.Mutex
	var summary domain.Summary

	for i, task := range batch.Tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			p.log.Append(fmt.Sprintf("batch %s cancelled, %d task(s) not dispatched",
				batch.Class, len(batch.Tasks)-i))
			break
		}
		go func(t domain.DownloadTask) {
			defer sem.Release(1)
			err := p.runTask(detached, t)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed = append(summary.Failed, domain.Failure{URL: t.URL, Reason: err.Error()})
			} else {
				summary.Succeeded++
			}
		}(task)
	}

	// Drain with a fresh context so in-flight tasks finish after cancel.
	_ = sem.Acquire(context.Background(), int64(p.workers))

	p.log.Append(fmt.Sprintf("batch %s done: %d written, %d failed",
		batch.Class, summary.Succeeded, len(summary.Failed)))
	return summary
}

// Decline records a declined batch without fetching anything.
func (p *Pool) Decline(ctx context.Context, batch domain.Batch) domain.Summary {
	for _, task := range batch.Tasks {
		p.record(ctx, task, domain.StatusDeclined, "")
	}
	p.log.Append(fmt.Sprintf("batch %s declined, %d task(s) skipped", batch.Class, len(batch.Tasks)))
	return domain.Summary{Declined: len(batch.Tasks)}
}

func (p *Pool) runTask(ctx context.Context, task domain.DownloadTask) error {
	p.log.Append(fmt.Sprintf("fetching %s -> %s", task.URL, task.Filename))

	body, err := p.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		p.log.Append(fmt.Sprintf("failed %s: %v", task.URL, err))
		p.record(ctx, task, domain.StatusFailed, err.Error())
		return err
	}

	path := filepath.Join(p.outputDir, task.Filename)
	if err := writeFileAtomic(path, body); err != nil {
		p.log.Append(fmt.Sprintf("failed %s: %v", task.URL, err))
		p.record(ctx, task, domain.StatusFailed, err.Error())
		return err
	}

	p.log.Append(fmt.Sprintf("written %s (%d bytes)", task.Filename, len(body)))
	p.record(ctx, task, domain.StatusWritten, "")
	return nil
}

func (p *Pool) record(ctx context.Context, task domain.DownloadTask, status domain.TaskStatus, reason string) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(ctx, p.runID, task, status, reason); err != nil {
		p.log.Append(fmt.Sprintf("history record for %s failed: %v", task.Filename, err))
	}
}

// writeFileAtomic writes to a temporary file and renames it into place,
// so a failed write never leaves a partial output file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
