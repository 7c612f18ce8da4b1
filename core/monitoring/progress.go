package monitoring

import (
	"fmt"
	"log"
	"sync"

	"furniture-editor/core/models"
)

// Progress is the share of a processing run that has settled
type Progress struct {
	Settled  int
	Total    int
	Fraction float64 // 0.0 - 1.0
}

// NewProgress builds a Progress, treating an empty run as done
func NewProgress(settled, total int) Progress {
	p := Progress{Settled: settled, Total: total, Fraction: 1.0}
	if total > 0 {
		p.Fraction = float64(settled) / float64(total)
	}
	return p
}

// Percent returns the fraction rounded to a whole percentage
func (p Progress) Percent() int {
	return int(p.Fraction*100 + 0.5)
}

// Reporter receives progress after each job settles
type Reporter interface {
	Report(Progress)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(Progress)

// Report calls f(p)
func (f ReporterFunc) Report(p Progress) { f(p) }

// ProgressMonitor keeps the latest progress and logs each update
type ProgressMonitor struct {
	mu      sync.Mutex
	latest  Progress
	history []Progress
	quiet   bool
}

// NewProgressMonitor creates a monitor that logs every update
func NewProgressMonitor() *ProgressMonitor {
	return &ProgressMonitor{}
}

// NewQuietProgressMonitor creates a monitor that only records updates
func NewQuietProgressMonitor() *ProgressMonitor {
	return &ProgressMonitor{quiet: true}
}

// Report records p
func (m *ProgressMonitor) Report(p Progress) {
	m.mu.Lock()
	m.latest = p
	m.history = append(m.history, p)
	m.mu.Unlock()

	if !m.quiet {
		log.Printf("Processing images... %d%% (%d/%d)", p.Percent(), p.Settled, p.Total)
	}
}

// Latest returns the most recent progress
func (m *ProgressMonitor) Latest() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

// History returns every progress update in order
func (m *ProgressMonitor) History() []Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Progress, len(m.history))
	copy(out, m.history)
	return out
}

// Summary renders a one-line status breakdown such as "2 of 3 processed, 1 failed"
func Summary(counts map[models.JobStatus]int) string {
	total := 0
	for _, n := range counts {
		total += n
	}

	s := fmt.Sprintf("%d of %d processed", counts[models.JobStatusCompleted], total)
	if failed := counts[models.JobStatusError]; failed > 0 {
		s += fmt.Sprintf(", %d failed", failed)
	}
	return s
}
