package service

import (
	"sort"
	"sync"

	"redditimport/internal/services/importer/domain"
)

const recentCap = 50

// board tracks live progress for the status endpoint
type board struct {
	mu      sync.Mutex
	runID   string
	root    string
	running bool
	active  map[string]domain.FileReport
	recent  []domain.FileReport
	summary domain.Summary
}

func newBoard() *board {
	return &board{active: map[string]domain.FileReport{}}
}

func (b *board) begin(runID, root string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runID, b.root, b.running = runID, root, true
	b.summary = domain.Summary{RunID: runID}
	b.recent = b.recent[:0]
}

func (b *board) start(path string, r domain.FileReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active[path] = r
}

func (b *board) update(path string, r domain.FileReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.active[path]; ok {
		b.active[path] = r
	}
}

// finish moves path to the recent list with its final report
func (b *board) finish(path string, r domain.FileReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, path)
	b.recent = append(b.recent, r)
	if len(b.recent) > recentCap {
		b.recent = b.recent[len(b.recent)-recentCap:]
	}
}

func (b *board) end(sum domain.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	b.summary = sum
}

func (b *board) snapshot() domain.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	active := make([]domain.FileReport, 0, len(b.active))
	for _, r := range b.active {
		active = append(active, r)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Path < active[j].Path })
	return domain.Status{
		RunID:   b.runID,
		Running: b.running,
		Root:    b.root,
		Active:  active,
		Recent:  append([]domain.FileReport(nil), b.recent...),
		Summary: b.summary,
	}
}
