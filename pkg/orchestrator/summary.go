package orchestrator

import (
	"log/slog"

	"github.com/nebari-dev/cfzones/pkg/processor"
)

// Summary is the outcome of a run.
type Summary struct {
	Total     int
	Succeeded int

	// FailedDomains lists zones whose processing failed, in zone map order.
	FailedDomains []string

	CAACreated int
	CAASkipped int
	CAAFailed  int

	// StepFailures counts failed setting steps across all zones, by setting name.
	StepFailures map[string]int
}

// Failed returns the number of failed zones.
func (s *Summary) Failed() int {
	return len(s.FailedDomains)
}

type zoneResult struct {
	domain string
	report processor.ZoneReport
	err    error
}

func summarize(results []zoneResult) *Summary {
	s := &Summary{
		Total:        len(results),
		StepFailures: make(map[string]int),
	}

	for _, r := range results {
		s.CAACreated += r.report.CAACreated
		s.CAASkipped += r.report.CAASkipped
		s.CAAFailed += r.report.CAAFailed
		for _, step := range r.report.FailedSteps {
			s.StepFailures[step]++
		}

		if r.err != nil {
			s.FailedDomains = append(s.FailedDomains, r.domain)
			continue
		}
		s.Succeeded++
	}

	return s
}

func (s *Summary) log() {
	attrs := []any{
		"total", s.Total,
		"succeeded", s.Succeeded,
		"failed", s.Failed(),
		"caa_created", s.CAACreated,
		"caa_skipped", s.CAASkipped,
		"caa_failed", s.CAAFailed,
	}
	if len(s.StepFailures) > 0 {
		attrs = append(attrs, "step_failures", s.StepFailures)
	}

	if s.Failed() > 0 {
		attrs = append(attrs, "failed_domains", s.FailedDomains)
		slog.Warn("Summary", attrs...)
		return
	}
	slog.Info("Summary", attrs...)
}
