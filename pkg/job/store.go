package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/idgen"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

// DateLayout is the display format stamped on new records ("Apr 15, 2023").
const DateLayout = "Jan 2, 2006"

// persisted mirrors the document layout kept under kv.KeyJobs.
type persisted struct {
	State struct {
		Jobs []Job `json:"jobs"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store owns the ordered job collection. Every mutation is written through to
// the kv mirror before it returns.
type Store struct {
	mu   sync.RWMutex
	kv   kv.Store
	ids  *idgen.Generator
	now  func() time.Time
	jobs []Job
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore hydrates the collection from kv, falling back to seed when the
// mirror is empty or unreadable.
func NewStore(ctx context.Context, mirror kv.Store, seed []Job, opts ...Option) (*Store, error) {
	s := &Store{kv: mirror, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = idgen.New("job", s.now)

	raw, err := mirror.Get(ctx, kv.KeyJobs)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.jobs = cloneAll(seed)
	case err != nil:
		return nil, fmt.Errorf("load jobs: %w", err)
	default:
		var doc persisted
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("level=warn msg=\"discarding unreadable job mirror\" err=%v", err)
			s.jobs = cloneAll(seed)
		} else {
			s.jobs = doc.State.Jobs
		}
	}
	return s, nil
}

// AddJob appends a new active posting and returns it.
func (s *Store) AddJob(ctx context.Context, f Fields) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := Job{
		ID:          s.ids.Next(s.exists),
		Title:       f.Title,
		Company:     f.Company,
		Description: f.Description,
		Budget:      f.Budget,
		Location:    f.Location,
		Skills:      cleanSkills(f.Skills),
		Date:        s.now().Format(DateLayout),
		RecruiterID: f.RecruiterID,
		Status:      StatusActive,
	}
	next := append(cloneAll(s.jobs), j)
	if err := s.persist(ctx, next); err != nil {
		return Job{}, err
	}
	s.jobs = next
	return j.clone(), nil
}

// UpdateJobStatus sets the status of jobID. Unknown ids are a silent no-op.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(jobID)
	if idx < 0 {
		return nil
	}
	next := cloneAll(s.jobs)
	next[idx].Status = status
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.jobs = next
	return nil
}

// Jobs returns the whole collection in insertion order.
func (s *Store) Jobs() []Job {
	return s.filter(func(Job) bool { return true })
}

// ActiveJobs returns the active postings in insertion order.
func (s *Store) ActiveJobs() []Job {
	return s.filter(func(j Job) bool { return j.Status == StatusActive })
}

// RecruiterJobs returns every posting of recruiterID regardless of status.
func (s *Store) RecruiterJobs(recruiterID string) []Job {
	return s.filter(func(j Job) bool { return j.RecruiterID == recruiterID })
}

// Get looks a posting up by id.
func (s *Store) Get(jobID string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(jobID); idx >= 0 {
		return s.jobs[idx].clone(), true
	}
	return Job{}, false
}

func (s *Store) filter(keep func(Job) bool) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j.clone())
		}
	}
	return out
}

func (s *Store) indexOf(jobID string) int {
	for i := range s.jobs {
		if s.jobs[i].ID == jobID {
			return i
		}
	}
	return -1
}

func (s *Store) exists(id string) bool { return s.indexOf(id) >= 0 }

func (s *Store) persist(ctx context.Context, jobs []Job) error {
	var doc persisted
	doc.State.Jobs = jobs
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, kv.KeyJobs, b); err != nil {
		return fmt.Errorf("persist jobs: %w", err)
	}
	return nil
}

func cloneAll(in []Job) []Job {
	out := make([]Job, len(in))
	for i, j := range in {
		out[i] = j.clone()
	}
	return out
}
