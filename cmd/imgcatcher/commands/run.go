package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cwygoda/imgcatcher/internal/adapter/extract"
	"github.com/cwygoda/imgcatcher/internal/adapter/fetch"
	"github.com/cwygoda/imgcatcher/internal/adapter/runlog"
	"github.com/cwygoda/imgcatcher/internal/adapter/sqlite"
	"github.com/cwygoda/imgcatcher/internal/config"
	"github.com/cwygoda/imgcatcher/internal/domain"
	"github.com/cwygoda/imgcatcher/internal/worker"
)

const (
	logFileName  = "download.log"
	listFileName = "candidates.txt"
)

// run drives the whole pipeline: page fetch, extraction, confirmation,
// download, summary. The page URL is already validated at this point.
func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// No auditable trail, no run: a log that cannot open aborts before
	// any network activity.
	var echo func(string)
	if cfg.Verbose {
		echo = func(msg string) { slog.Info(msg) }
	}
	log, err := runlog.Open(filepath.Join(cfg.OutputDir, logFileName), cfg.PageURL, echo)
	if err != nil {
		return err
	}
	defer log.Close()

	client := fetch.New(cfg.UserAgent, cfg.Timeout)

	slog.Debug("fetching page", "url", cfg.PageURL)
	markup, err := client.FetchPage(ctx, cfg.PageURL)
	if err != nil {
		log.Append(fmt.Sprintf("page fetch failed: %v", err))
		return fmt.Errorf("fetch page: %w", err)
	}

	candidates, err := extract.New(cfg.Extensions, cfg.UseRegex).Extract(markup, cfg.PageURL)
	if err != nil {
		log.Append(fmt.Sprintf("extraction failed: %v", err))
		return fmt.Errorf("extract: %w", err)
	}

	plan, err := domain.BuildPlan(cfg.PageURL, candidates, cfg.Pad, cfg.Prefix)
	if err != nil {
		log.Append("no images found")
		return err
	}
	log.Append(fmt.Sprintf("found %d candidate image(s)", plan.Count()))

	if cfg.KeepList {
		if err := writeCandidateList(filepath.Join(cfg.OutputDir, listFileName), plan); err != nil {
			slog.Warn("could not write candidate list", "error", err)
		}
	}

	renderPlan(out, plan)

	pool := worker.New(client, log, cfg.OutputDir, cfg.Workers)
	if cfg.HistoryDB != "" {
		store, err := sqlite.New(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer store.Close()

		runID, err := store.BeginRun(ctx, cfg.PageURL)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		pool = pool.WithHistory(store, runID)
	}

	total := downloadBatches(ctx, pool, plan, cfg.AssumeYes, bufio.NewReader(in), out)

	log.Append(fmt.Sprintf("run finished: %d written, %d failed, %d declined",
		total.Succeeded, len(total.Failed), total.Declined))
	renderSummary(out, total, ctx.Err() != nil)
	return nil
}

// downloadBatches confirms and runs each batch in turn. Once the context
// is cancelled no further prompt is issued; whatever already completed
// stays in the summary.
func downloadBatches(ctx context.Context, pool *worker.Pool, plan *domain.Plan, assumeYes bool, reader *bufio.Reader, out io.Writer) domain.Summary {
	var total domain.Summary
	for _, batch := range plan.Batches {
		if ctx.Err() != nil {
			break
		}
		confirmed := assumeYes ||
			confirm(reader, out, fmt.Sprintf("Download %d %s image(s)? [y/N] ", len(batch.Tasks), batch.Class))
		if !confirmed {
			total.Merge(pool.Decline(ctx, batch))
			continue
		}
		total.Merge(pool.Run(ctx, batch))
	}
	return total
}

// confirm asks a yes/no question. Anything but an explicit yes declines.
func confirm(reader *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func writeCandidateList(path string, plan *domain.Plan) error {
	var b strings.Builder
	for _, task := range plan.Tasks() {
		fmt.Fprintf(&b, "%s\n", task.URL)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func renderPlan(out io.Writer, plan *domain.Plan) {
	fmt.Fprintln(out, text.FgCyan.Sprintf("%d image(s) found on %s", plan.Count(), plan.PageURL))

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Class", "URL", "File"})
	for _, task := range plan.Tasks() {
		t.AppendRow(table.Row{task.Ordinal, task.Class, task.URL, task.Filename})
	}
	t.Render()
}

func renderSummary(out io.Writer, summary domain.Summary, cancelled bool) {
	if cancelled {
		fmt.Fprintln(out, text.FgYellow.Sprint("interrupted, partial results follow"))
	}
	fmt.Fprintln(out, text.FgGreen.Sprintf("downloaded %d image(s)", summary.Succeeded))
	if summary.Declined > 0 {
		fmt.Fprintln(out, text.FgYellow.Sprintf("declined %d image(s)", summary.Declined))
	}
	for _, failure := range summary.Failed {
		fmt.Fprintln(out, text.FgRed.Sprintf("failed %s: %s", failure.URL, failure.Reason))
	}
}
