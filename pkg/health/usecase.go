// Package health reports whether the engine can serve: its storage mirror
// answers and, as information, whether a wallet is reachable.
package health

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Advisory is implemented by checkers whose failure is reported but does not
// make the engine unready.
type Advisory interface {
	Advisory() bool
}

// CheckResult is the outcome of one checker.
type CheckResult struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Advisory bool   `json:"advisory,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report lists every check in registration order.
type Report struct {
	Ready  bool          `json:"ready"`
	Checks []CheckResult `json:"checks"`
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) Report
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. Nil checkers are skipped so
// callers can pass optional backends unconditionally.
func NewService(checkers ...Checker) ReadinessUseCase {
	s := &service{}
	for _, ch := range checkers {
		if ch != nil {
			s.checkers = append(s.checkers, ch)
		}
	}
	return s
}

// Ready runs every checker concurrently; one failure does not cancel the
// others.
func (s *service) Ready(ctx context.Context) Report {
	results := make([]CheckResult, len(s.checkers))
	var g errgroup.Group
	for i, ch := range s.checkers {
		g.Go(func() error {
			r := CheckResult{Name: ch.Name(), OK: true}
			if a, ok := ch.(Advisory); ok {
				r.Advisory = a.Advisory()
			}
			if err := ch.Check(ctx); err != nil {
				r.OK, r.Error = false, err.Error()
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Ready: true, Checks: results}
	for _, r := range results {
		if !r.OK && !r.Advisory {
			rep.Ready = false
		}
	}
	return rep
}
