package domain

import (
	"errors"
	"net/url"
	"sort"
)

var (
	ErrInvalidURL = errors.New("invalid URL")
	ErrNoImages   = errors.New("no images found")
)

// ValidatePageURL rejects anything that is not an http or https URL.
// It runs before any directory, log file, or network activity.
func ValidatePageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// Plan is the confirmed-downloadable view of one page: every deduplicated
// candidate with its ordinal and output name, grouped into per-class
// batches. Once built, a plan is read-only.
type Plan struct {
	PageURL string
	Batches []Batch
}

// Tasks returns all tasks across batches in ordinal order.
func (p *Plan) Tasks() []DownloadTask {
	var tasks []DownloadTask
	for _, b := range p.Batches {
		tasks = append(tasks, b.Tasks...)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Ordinal < tasks[j].Ordinal })
	return tasks
}

// Count returns the total number of tasks in the plan.
func (p *Plan) Count() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Tasks)
	}
	return n
}

// BuildPlan assigns ordinals over the sorted, deduplicated candidate
// sequence and groups the resulting tasks by extension class. Ordinals
// are global, so declining one class never renumbers another. Returns
// ErrNoImages when no candidate survived extraction.
func BuildPlan(pageURL string, candidates []Candidate, pad int, staticPrefix string) (*Plan, error) {
	if len(candidates) == 0 {
		return nil, ErrNoImages
	}

	seen := make(map[string]bool, len(candidates))
	unique := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		unique = append(unique, c)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].URL < unique[j].URL })

	byClass := make(map[string][]DownloadTask)
	var classes []string
	for i, c := range unique {
		ordinal := i + 1
		task := DownloadTask{
			Ordinal:  ordinal,
			URL:      c.URL,
			Class:    c.Class,
			Filename: Filename(ordinal, pad, staticPrefix, c.URL),
		}
		if _, ok := byClass[c.Class]; !ok {
			classes = append(classes, c.Class)
		}
		byClass[c.Class] = append(byClass[c.Class], task)
	}
	sort.Strings(classes)

	plan := &Plan{PageURL: pageURL}
	for _, class := range classes {
		plan.Batches = append(plan.Batches, Batch{Class: class, Tasks: byClass[class]})
	}
	return plan, nil
}
