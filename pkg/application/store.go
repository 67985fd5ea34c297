package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/idgen"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
)

type persisted struct {
	State struct {
		Applications []Application `json:"applications"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store owns the ordered application collection and the shortlist workflow.
// Mutations targeting an unknown id are silent no-ops.
type Store struct {
	mu   sync.RWMutex
	kv   kv.Store
	ids  *idgen.Generator
	now  func() time.Time
	apps []Application
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(ctx context.Context, mirror kv.Store, seed []Application, opts ...Option) (*Store, error) {
	s := &Store{kv: mirror, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = idgen.New("app", s.now)

	raw, err := mirror.Get(ctx, kv.KeyApplications)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.apps = cloneAll(seed)
	case err != nil:
		return nil, fmt.Errorf("load applications: %w", err)
	default:
		var doc persisted
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("level=warn msg=\"discarding unreadable application mirror\" err=%v", err)
			s.apps = cloneAll(seed)
		} else {
			s.apps = doc.State.Applications
		}
	}
	return s, nil
}

// AddApplication appends a pending application and returns it.
func (s *Store) AddApplication(ctx context.Context, f Fields) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Application{
		ID:          s.ids.Next(s.exists),
		JobID:       f.JobID,
		Job:         f.Job,
		Candidate:   f.Candidate,
		Application: f.Application,
		Resume:      f.Resume,
		Date:        s.now().Format(job.DateLayout),
		Status:      StatusPending,
	}
	a = a.clone()
	next := append(cloneAll(s.apps), a)
	if err := s.persist(ctx, next); err != nil {
		return Application{}, err
	}
	s.apps = next
	return a.clone(), nil
}

// ShortlistCandidate moves a pending application to shortlisted.
func (s *Store) ShortlistCandidate(ctx context.Context, applicationID string) error {
	return s.setStatus(ctx, applicationID, StatusShortlisted, StatusPending, StatusShortlisted)
}

// RejectCandidate moves the application to rejected. Rejected is terminal.
func (s *Store) RejectCandidate(ctx context.Context, applicationID string) error {
	return s.setStatus(ctx, applicationID, StatusRejected, StatusPending, StatusShortlisted, StatusRejected)
}

// RemoveFromShortlist puts a shortlisted application back into the pending
// pool; the record itself is kept.
func (s *Store) RemoveFromShortlist(ctx context.Context, applicationID string) error {
	return s.setStatus(ctx, applicationID, StatusPending, StatusShortlisted, StatusPending)
}

// UpdateResumeForApplication sets resume metadata on exactly one record.
func (s *Store) UpdateResumeForApplication(ctx context.Context, applicationID string, meta *resume.Meta) error {
	return s.update(ctx, func(a Application) bool { return a.ID == applicationID }, func(a *Application) {
		a.Resume = copyMeta(meta)
	})
}

// UpdateResumeForCandidate sets resume metadata on every application of
// candidateID. This is how a profile-level resume reaches applications that
// were already submitted.
func (s *Store) UpdateResumeForCandidate(ctx context.Context, candidateID string, meta *resume.Meta) error {
	return s.update(ctx, func(a Application) bool { return a.Candidate.ID == candidateID }, func(a *Application) {
		a.Resume = copyMeta(meta)
	})
}

// CandidateResume returns the resume on the candidate's first application,
// or nil when there is none.
func (s *Store) CandidateResume(candidateID string) *resume.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.apps {
		if a.Candidate.ID == candidateID {
			return copyMeta(a.Resume)
		}
	}
	return nil
}

func (s *Store) Applications() []Application {
	return s.filter(func(Application) bool { return true })
}

func (s *Store) ShortlistedApplications() []Application {
	return s.filter(func(a Application) bool { return a.Status == StatusShortlisted })
}

func (s *Store) ApplicationsByJob(jobID string) []Application {
	return s.filter(func(a Application) bool { return a.JobID == jobID })
}

func (s *Store) ApplicationsByCandidate(candidateID string) []Application {
	return s.filter(func(a Application) bool { return a.Candidate.ID == candidateID })
}

func (s *Store) Get(applicationID string) (Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.apps {
		if a.ID == applicationID {
			return a.clone(), true
		}
	}
	return Application{}, false
}

// setStatus moves applicationID to status when its current status is one of
// from; anything else is a no-op.
func (s *Store) setStatus(ctx context.Context, applicationID string, status Status, from ...Status) error {
	match := func(a Application) bool {
		if a.ID != applicationID {
			return false
		}
		for _, f := range from {
			if a.Status == f {
				return true
			}
		}
		return false
	}
	return s.update(ctx, match, func(a *Application) { a.Status = status })
}

// update applies mutate to every matching record and persists once. Nothing
// is written when no record matches.
func (s *Store) update(ctx context.Context, match func(Application) bool, mutate func(*Application)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneAll(s.apps)
	changed := false
	for i := range next {
		if match(next[i]) {
			mutate(&next[i])
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.apps = next
	return nil
}

func (s *Store) filter(keep func(Application) bool) []Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Application, 0, len(s.apps))
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, a.clone())
		}
	}
	return out
}

func (s *Store) exists(id string) bool {
	for _, a := range s.apps {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) persist(ctx context.Context, apps []Application) error {
	var doc persisted
	doc.State.Applications = apps
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, kv.KeyApplications, b); err != nil {
		return fmt.Errorf("persist applications: %w", err)
	}
	return nil
}

func cloneAll(in []Application) []Application {
	out := make([]Application, len(in))
	for i, a := range in {
		out[i] = a.clone()
	}
	return out
}

func copyMeta(m *resume.Meta) *resume.Meta {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
