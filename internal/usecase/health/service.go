// Package health aggregates dependency probes into one report.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the aggregated state of the service.
type Status string

// Statuses.
const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one probe.
type CheckResult string

// Probe outcomes.
const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultProbeTimeout bounds every probe of a Check.
const DefaultProbeTimeout = 2 * time.Second

// Report is the result of Check.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Probe is one named dependency check. A failing critical probe makes the
// service unhealthy, any other failure only degrades it.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// Service runs probes concurrently.
type Service struct {
	probes  []Probe
	timeout time.Duration
}

// New creates a Service probing the database (critical) and, when non-nil,
// the event broker.
func New(db Pinger, events Checker) *Service {
	s := &Service{timeout: DefaultProbeTimeout}
	s.probes = append(s.probes, Probe{Name: "database", Critical: true, Check: db.Ping})
	if events != nil {
		s.probes = append(s.probes, Probe{Name: "events", Check: events.HealthCheck})
	}
	return s
}

// WithProbe adds a probe.
func (s *Service) WithProbe(p Probe) *Service {
	s.probes = append(s.probes, p)
	return s
}

// WithTimeout sets the per-probe deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every probe and folds the results into a Report.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		g      errgroup.Group
		report = Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes))}
	)
	for _, p := range s.probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			err := p.Check(pctx)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				report.Checks[p.Name] = CheckOK
				return nil
			}
			report.Checks[p.Name] = CheckError
			switch {
			case p.Critical:
				report.Status = Unhealthy
			case report.Status == Healthy:
				report.Status = Degraded
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}
